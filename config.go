package ringdataset

import ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"

// DatasetConfig is the top-level run configuration: which object to frame,
// how many images to produce, where to put them, and the core's sampling and
// framing parameters. Loaded once per run; the core does not validate range
// ordering.
type DatasetConfig struct {
	ObjectName   string `json:"object_name"`
	OutputDir    string `json:"output_dir"`
	NumImages    int    `json:"num_images"`
	Seed         *int64 `json:"seed"`
	ValidateOnly bool   `json:"validate_only"`

	Camera     ringpose.CameraConfig     `json:"camera"`
	Visibility ringpose.VisibilityConfig `json:"visibility"`
	Sampling   ringpose.SamplingConfig   `json:"sampling"`
	Image      ringpose.ImageConfig      `json:"image_output"`
}

// DefaultDatasetConfig returns a DatasetConfig with the core defaults and
// standard output layout.
func DefaultDatasetConfig() DatasetConfig {
	core := ringpose.DefaultConfig()
	return DatasetConfig{
		ObjectName: "ring",
		OutputDir:  "output/dataset",
		NumImages:  100,
		Camera:     core.Camera,
		Visibility: core.Visibility,
		Sampling:   core.Sampling,
		Image:      core.Image,
	}
}
