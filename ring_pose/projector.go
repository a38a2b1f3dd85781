package ringpose

import "github.com/golang/geo/r3"

// Projector maps a world-space point through a camera pose to normalized
// image coordinates in [0,1]^2, with (0,0) the bottom-left corner. ok is
// false when the point lies on or behind the camera plane. Implementations
// must be pure functions of their inputs.
type Projector interface {
	Project(point r3.Vector, pose CameraPose, imageWidth, imageHeight int) (x, y float64, ok bool)
}

// PinholeProjector is an ideal pinhole camera with a horizontal-fit sensor.
// The defaults (36mm sensor, 50mm focal length) match the render pipeline's
// camera settings.
type PinholeProjector struct {
	SensorWidthMm float64
	FocalLengthMm float64
}

// NewPinholeProjector builds a projector from the image configuration's
// intrinsics.
func NewPinholeProjector(cfg ImageConfig) PinholeProjector {
	return PinholeProjector{
		SensorWidthMm: cfg.SensorWidthMm,
		FocalLengthMm: cfg.FocalLengthMm,
	}
}

// Project implements Projector.
func (p PinholeProjector) Project(point r3.Vector, pose CameraPose, imageWidth, imageHeight int) (float64, float64, bool) {
	rel := point.Sub(pose.Position)

	depth := rel.Dot(pose.Forward)
	if depth <= 0 {
		return 0, 0, false
	}

	tanHalf := (p.SensorWidthMm / 2.0) / p.FocalLengthMm
	aspect := float64(imageHeight) / float64(imageWidth)

	// Camera-frame coordinates via the orthonormal basis, then perspective
	// divide onto the sensor plane.
	xc := rel.Dot(pose.Right)
	yc := rel.Dot(pose.Up)

	x := 0.5 + xc/(2.0*depth*tanHalf)
	y := 0.5 + yc/(2.0*depth*tanHalf*aspect)
	return x, y, true
}
