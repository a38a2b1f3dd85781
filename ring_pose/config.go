package ringpose

// Config holds all configuration consumed by the pose sampling, visibility,
// and correction core. Ranges are inclusive; callers are responsible for
// ensuring min <= max.
type Config struct {
	Camera     CameraConfig     `json:"camera"`
	Visibility VisibilityConfig `json:"visibility"`
	Sampling   SamplingConfig   `json:"sampling"`
	Image      ImageConfig      `json:"image_output"`
}

// CameraConfig holds the sampling ranges for camera pose draws.
type CameraConfig struct {
	YawMinDeg   float64 `json:"yaw_min"` // azimuth, degrees
	YawMaxDeg   float64 `json:"yaw_max"`
	PitchMinDeg float64 `json:"pitch_min"` // elevation from horizontal, degrees
	PitchMaxDeg float64 `json:"pitch_max"`

	// Distance is sampled as a multiplier of the bounding-sphere radius R.
	DistanceMinMultiplier float64 `json:"distance_min_multiplier"`
	DistanceMaxMultiplier float64 `json:"distance_max_multiplier"`

	// Look-at jitter per axis, as a fraction of R.
	LookAtJitterMaxFraction float64 `json:"look_at_jitter_max_fraction"`
}

// VisibilityConfig holds the framing constraints.
type VisibilityConfig struct {
	EdgeMarginFraction       float64 `json:"edge_margin_fraction"`
	MinProjectedSizeFraction float64 `json:"min_projected_size_fraction"`
	MaxProjectedSizeFraction float64 `json:"max_projected_size_fraction"`
}

// SamplingConfig holds the retry budgets.
type SamplingConfig struct {
	MaxAttemptsPerSample  int `json:"max_attempts_per_sample"`
	MaxCorrectionAttempts int `json:"max_correction_attempts"`

	// PerSampleSeeds derives an independent generator per sample index
	// instead of one shared sequential stream.
	PerSampleSeeds bool `json:"per_sample_seeds"`
}

// ImageConfig holds the output image dimensions and the intrinsics used for
// projection.
type ImageConfig struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`

	SensorWidthMm float64 `json:"sensor_width_mm"`
	FocalLengthMm float64 `json:"focal_length_mm"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Camera: CameraConfig{
			YawMinDeg:               0.0,
			YawMaxDeg:               360.0,
			PitchMinDeg:             25.0,
			PitchMaxDeg:             75.0,
			DistanceMinMultiplier:   10.0,
			DistanceMaxMultiplier:   35.0,
			LookAtJitterMaxFraction: 0.1,
		},
		Visibility: VisibilityConfig{
			EdgeMarginFraction:       0.07,
			MinProjectedSizeFraction: 0.20,
			MaxProjectedSizeFraction: 0.35,
		},
		Sampling: SamplingConfig{
			MaxAttemptsPerSample:  50,
			MaxCorrectionAttempts: 5,
		},
		Image: ImageConfig{
			Width:         1920,
			Height:        1080,
			Format:        "PNG",
			SensorWidthMm: 36.0,
			FocalLengthMm: 50.0,
		},
	}
}
