package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"go.viam.com/rdk/logging"

	ringdataset "github.com/alonzanbar/ring-dataset-gen"
	"github.com/alonzanbar/ring-dataset-gen/internal/runcfg"
	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

const validModes = "render, validate"

func main() {
	configPath := flag.String("config", "", "path to run configuration JSON file (optional)")
	mode := flag.String("mode", "render", "run mode: "+validModes)
	outDir := flag.String("out", "", "output directory for images and annotations")
	numImages := flag.Int("num-images", 0, "number of images to generate")
	seed := flag.Int64("seed", -1, "base random seed; -1 means time-based")
	objectName := flag.String("object", "", "scene object to frame")
	pcdPath := flag.String("pcd", "", "PCD file providing the object geometry (optional)")
	blenderPath := flag.String("blender", "", "path to the blender executable (optional)")
	scenePath := flag.String("blender-scene", "scene.blend", "blender scene file")
	scriptPath := flag.String("blender-script", "render_frame.py", "blender driver script")

	pitchMin := flag.Float64("pitch-min", 0, "minimum camera pitch in degrees")
	pitchMax := flag.Float64("pitch-max", 0, "maximum camera pitch in degrees")
	distMin := flag.Float64("dist-min", 0, "minimum camera distance as a multiple of object radius")
	distMax := flag.Float64("dist-max", 0, "maximum camera distance as a multiple of object radius")
	flag.Parse()

	logger := logging.NewLogger("ring-dataset-gen")

	if *mode != "render" && *mode != "validate" {
		logger.Fatalf("unknown mode %q; valid modes: %s", *mode, validModes)
	}

	cfg := ringdataset.DefaultDatasetConfig()
	if *configPath != "" {
		var err error
		cfg, err = runcfg.Load(*configPath)
		if err != nil {
			logger.Fatal(err)
		}
	}

	// Flags set explicitly on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.OutputDir = *outDir
		case "num-images":
			cfg.NumImages = *numImages
		case "seed":
			if *seed >= 0 {
				cfg.Seed = seed
			}
		case "object":
			cfg.ObjectName = *objectName
		case "pitch-min":
			cfg.Camera.PitchMinDeg = *pitchMin
		case "pitch-max":
			cfg.Camera.PitchMaxDeg = *pitchMax
		case "dist-min":
			cfg.Camera.DistanceMinMultiplier = *distMin
		case "dist-max":
			cfg.Camera.DistanceMaxMultiplier = *distMax
		}
	})
	cfg.ValidateOnly = *mode == "validate"

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	geometry, err := buildGeometry(cfg, *pcdPath, logger)
	if err != nil {
		logger.Fatal(err)
	}

	var renderer ringdataset.Renderer
	if !cfg.ValidateOnly {
		renderer, err = ringdataset.NewBlenderRenderer(*blenderPath, *scenePath, *scriptPath, logger)
		if err != nil {
			logger.Fatal(err)
		}
	}

	annotator := &ringdataset.JSONLAnnotator{
		Path:  filepath.Join(cfg.OutputDir, "annotations.jsonl"),
		Image: cfg.Image,
	}

	pipeline, err := ringdataset.NewPipeline(cfg, geometry, renderer, annotator, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := runcfg.Write(cfg.OutputDir, cfg); err != nil {
		logger.Fatal(err)
	}

	summary, err := pipeline.Generate(ctx)
	if err != nil && !errors.Is(err, ringdataset.ErrAttemptBudgetExhausted) {
		logger.Fatal(err)
	}

	printSummary(summary, logger)
	if err != nil {
		logger.Warn(err)
		os.Exit(1)
	}
}

// buildGeometry selects the geometry source: a point cloud file when given,
// otherwise a unit ring descriptor at the origin.
func buildGeometry(cfg ringdataset.DatasetConfig, pcdPath string, logger logging.Logger) (ringdataset.GeometryProvider, error) {
	if pcdPath != "" {
		clouds := ringdataset.NewCloudGeometry(logger)
		if err := clouds.AddPCDFile(cfg.ObjectName, pcdPath); err != nil {
			return nil, err
		}
		return clouds, nil
	}
	return ringdataset.StaticGeometry{
		cfg.ObjectName: ringpose.UnitRing(),
	}, nil
}

func printSummary(summary *ringdataset.RunSummary, logger logging.Logger) {
	logger.Infof("=== Run summary ===")
	logger.Infof("Accepted: %d/%d", len(summary.Accepted), summary.Requested)
	logger.Infof("Total attempts: %d (success rate %.2f%%)", summary.TotalAttempts, summary.SuccessRate()*100)

	type reasonCount struct {
		reason ringpose.RejectionReason
		count  int
	}
	var counts []reasonCount
	for i := 0; i < ringpose.NumRejectionReasons; i++ {
		r := ringpose.RejectionReason(i)
		if n := summary.Rejections[r]; n > 0 {
			counts = append(counts, reasonCount{r, n})
		}
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	for _, rc := range counts {
		logger.Infof("  %s: %d", rc.reason, rc.count)
	}
	if summary.Aborted {
		logger.Warnf("Run aborted before reaching the requested sample count")
	}
}
