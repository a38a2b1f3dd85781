package ringdataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.viam.com/rdk/logging"

	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

// Renderer produces an image for an accepted camera pose. Implementations
// must create the file at outputPath (creating parent directories as needed)
// and return the path actually written.
type Renderer interface {
	Render(ctx context.Context, outputPath string, pose ringpose.CameraPose, icfg ringpose.ImageConfig) (string, error)
}

// NopRenderer accepts every pose without producing a file.
type NopRenderer struct{}

// Render implements Renderer.
func (NopRenderer) Render(_ context.Context, outputPath string, _ ringpose.CameraPose, _ ringpose.ImageConfig) (string, error) {
	return outputPath, nil
}

// BlenderRenderer shells out to a headless Blender process per frame. The
// scene file and driver script are rendered once per pose; the pose is
// handed to the script as a JSON payload after the "--" separator.
type BlenderRenderer struct {
	// BlenderPath overrides executable discovery when non-empty.
	BlenderPath string
	// ScenePath is the .blend file opened for each render.
	ScenePath string
	// ScriptPath is the Python driver executed inside Blender.
	ScriptPath string
	// Timeout bounds a single render. Zero means no per-render bound beyond
	// the caller's context.
	Timeout time.Duration

	logger logging.Logger
}

// NewBlenderRenderer resolves the Blender executable and returns a renderer
// bound to the given scene and driver script.
func NewBlenderRenderer(blenderPath, scenePath, scriptPath string, logger logging.Logger) (*BlenderRenderer, error) {
	resolved, err := findBlender(blenderPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(scenePath); err != nil {
		return nil, fmt.Errorf("blender scene %s: %w", scenePath, err)
	}
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("blender script %s: %w", scriptPath, err)
	}
	logger.Infof("Using blender executable at %s", resolved)
	return &BlenderRenderer{
		BlenderPath: resolved,
		ScenePath:   scenePath,
		ScriptPath:  scriptPath,
		Timeout:     5 * time.Minute,
		logger:      logger,
	}, nil
}

// findBlender resolves the Blender executable, preferring an explicit path,
// then $BLENDER_PATH, then the PATH, then well-known install locations.
func findBlender(explicit string) (string, error) {
	candidates := []string{explicit, os.Getenv("BLENDER_PATH")}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	if path, err := exec.LookPath("blender"); err == nil {
		return path, nil
	}
	wellKnown := []string{
		"/usr/bin/blender",
		"/usr/local/bin/blender",
		"/Applications/Blender.app/Contents/MacOS/Blender",
		"/snap/bin/blender",
	}
	for _, c := range wellKnown {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", ErrBlenderNotFound
}

// renderPayload is the contract between this process and the Blender driver
// script. Field names are part of that contract.
type renderPayload struct {
	OutputPath  string        `json:"output_path"`
	Position    [3]float64    `json:"position"`
	LookAt      [3]float64    `json:"look_at"`
	MatrixWorld [4][4]float64 `json:"matrix_world"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Format      string        `json:"format"`
	SensorWidth float64       `json:"sensor_width_mm"`
	FocalLength float64       `json:"focal_length_mm"`
}

func newRenderPayload(outputPath string, pose ringpose.CameraPose, icfg ringpose.ImageConfig) renderPayload {
	payload := renderPayload{
		OutputPath:  outputPath,
		Position:    [3]float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
		LookAt:      [3]float64{pose.LookAt.X, pose.LookAt.Y, pose.LookAt.Z},
		Width:       icfg.Width,
		Height:      icfg.Height,
		Format:      icfg.Format,
		SensorWidth: icfg.SensorWidthMm,
		FocalLength: icfg.FocalLengthMm,
	}
	rot := pose.RotationMatrix()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			payload.MatrixWorld[i][j] = rot.At(i, j)
		}
	}
	payload.MatrixWorld[0][3] = pose.Position.X
	payload.MatrixWorld[1][3] = pose.Position.Y
	payload.MatrixWorld[2][3] = pose.Position.Z
	payload.MatrixWorld[3][3] = 1.0
	return payload
}

// Render implements Renderer.
func (r *BlenderRenderer) Render(ctx context.Context, outputPath string, pose ringpose.CameraPose, icfg ringpose.ImageConfig) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create render dir: %w", err)
	}

	payloadJSON, err := json.Marshal(newRenderPayload(outputPath, pose, icfg))
	if err != nil {
		return "", fmt.Errorf("encoding render payload: %w", err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.BlenderPath,
		"-b", r.ScenePath,
		"-P", r.ScriptPath,
		"--", string(payloadJSON),
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.logger.Debugf("blender output:\n%s", out)
		return "", fmt.Errorf("blender render failed: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("blender exited cleanly but %s was not written: %w", outputPath, err)
	}
	return outputPath, nil
}
