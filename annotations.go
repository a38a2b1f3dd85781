package ringdataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"

	"go.viam.com/rdk/spatialmath"

	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

// Annotator receives the ordered stream of accepted samples and is
// responsible for durable serialization.
type Annotator interface {
	WriteAll(samples []AcceptedSample, radius float64) error
}

// JSONLAnnotator writes one JSON record per accepted sample to a .jsonl
// file.
type JSONLAnnotator struct {
	Path  string
	Image ringpose.ImageConfig
}

type vec3Record struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type annotationRecord struct {
	ImagePath  string `json:"image_path"`
	Extrinsics struct {
		MatrixWorld [4][4]float64   `json:"matrix_world"`
		Position    vec3Record      `json:"position"`
		LookAt      vec3Record      `json:"look_at"`
		Pose        json.RawMessage `json:"pose"`
	} `json:"camera_extrinsics"`
	Intrinsics struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	} `json:"camera_intrinsics"`
	Sampled struct {
		YawDeg             float64    `json:"yaw"`
		PitchDeg           float64    `json:"pitch"`
		Distance           float64    `json:"distance"`
		DistanceMultiplier float64    `json:"distance_multiplier"`
		LookAtJitter       vec3Record `json:"look_at_jitter"`
	} `json:"sampled_parameters"`
	Visibility struct {
		MarginUsed    *float64  `json:"margin_used"`
		ProjectedSize *float64  `json:"projected_size_fraction"`
		ProjectedBBox []float64 `json:"projected_bbox"`
	} `json:"visibility_metrics"`
	SampleIndex int `json:"sample_index"`
	Attempts    int `json:"attempts"`
}

func vec3(x, y, z float64) vec3Record { return vec3Record{X: x, Y: y, Z: z} }

func newAnnotationRecord(sample AcceptedSample, icfg ringpose.ImageConfig, radius float64) (annotationRecord, error) {
	var rec annotationRecord
	rec.ImagePath = sample.ImagePath
	rec.SampleIndex = sample.Index
	rec.Attempts = sample.Attempts

	rot := sample.Pose.RotationMatrix()
	pos := sample.Pose.Position
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rec.Extrinsics.MatrixWorld[i][j] = rot.At(i, j)
		}
	}
	rec.Extrinsics.MatrixWorld[0][3] = pos.X
	rec.Extrinsics.MatrixWorld[1][3] = pos.Y
	rec.Extrinsics.MatrixWorld[2][3] = pos.Z
	rec.Extrinsics.MatrixWorld[3][3] = 1.0

	rec.Extrinsics.Position = vec3(pos.X, pos.Y, pos.Z)
	rec.Extrinsics.LookAt = vec3(sample.Pose.LookAt.X, sample.Pose.LookAt.Y, sample.Pose.LookAt.Z)

	poseJSON, err := protojson.Marshal(spatialmath.PoseToProtobuf(sample.Pose.Pose()))
	if err != nil {
		return rec, fmt.Errorf("encoding pose: %w", err)
	}
	rec.Extrinsics.Pose = poseJSON

	rec.Intrinsics.Width = icfg.Width
	rec.Intrinsics.Height = icfg.Height
	rec.Intrinsics.Format = icfg.Format

	rec.Sampled.YawDeg = sample.Params.YawDeg
	rec.Sampled.PitchDeg = sample.Params.PitchDeg
	rec.Sampled.Distance = sample.Params.Distance
	rec.Sampled.DistanceMultiplier = sample.Params.DistanceMultiplier(radius)
	rec.Sampled.LookAtJitter = vec3(sample.Params.LookAtJitter.X, sample.Params.LookAtJitter.Y, sample.Params.LookAtJitter.Z)

	rec.Visibility.MarginUsed = sample.Result.MarginUsed
	rec.Visibility.ProjectedSize = sample.Result.ProjectedSize
	if b := sample.Result.BBox; b != nil {
		rec.Visibility.ProjectedBBox = []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
	}

	return rec, nil
}

// WriteAll implements Annotator.
func (a *JSONLAnnotator) WriteAll(samples []AcceptedSample, radius float64) error {
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("create annotations dir: %w", err)
	}
	f, err := os.Create(a.Path)
	if err != nil {
		return fmt.Errorf("create annotations file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, sample := range samples {
		rec, err := newAnnotationRecord(sample, a.Image, radius)
		if err != nil {
			return err
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding annotation for sample %d: %w", sample.Index, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing annotation for sample %d: %w", sample.Index, err)
		}
	}
	return w.Flush()
}
