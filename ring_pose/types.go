package ringpose

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/spatialmath"
)

// GeometryDescriptor holds the world-space geometry of the subject, produced
// once by scene introspection before sampling begins.
type GeometryDescriptor struct {
	Center       r3.Vector
	Radius       float64 // bounding-sphere radius (half the bbox diagonal)
	BoundsMin    r3.Vector
	BoundsMax    r3.Vector
	GroundPlaneZ float64 // min Z of the bounding box
}

// Corners returns the 8 corners of the world-space bounding box.
func (g GeometryDescriptor) Corners() [8]r3.Vector {
	lo, hi := g.BoundsMin, g.BoundsMax
	return [8]r3.Vector{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
	}
}

// UnitRing returns the descriptor for a canonical torus at the origin with
// major radius 1 and tube radius 0.1, lying flat in the XY plane. Used when
// no scene geometry source is configured.
func UnitRing() GeometryDescriptor {
	lo := r3.Vector{X: -1.1, Y: -1.1, Z: -0.1}
	hi := r3.Vector{X: 1.1, Y: 1.1, Z: 0.1}
	return GeometryDescriptor{
		Center:       r3.Vector{},
		Radius:       hi.Sub(lo).Norm() / 2.0,
		BoundsMin:    lo,
		BoundsMax:    hi,
		GroundPlaneZ: lo.Z,
	}
}

// SampledParameters are the raw draws that produced a camera pose. Distance
// is absolute (world units); the multiplier is derived, never stored.
type SampledParameters struct {
	YawDeg       float64
	PitchDeg     float64
	Distance     float64
	LookAtJitter r3.Vector
}

// DistanceMultiplier returns the sampled distance expressed in units of the
// subject's bounding-sphere radius.
func (p SampledParameters) DistanceMultiplier(radius float64) float64 {
	return p.Distance / radius
}

// CameraPose is a camera position plus an orthonormal basis in world space.
// Forward points from Position toward LookAt; Up is re-orthogonalized world
// up, never raw world up.
type CameraPose struct {
	Position r3.Vector
	Right    r3.Vector
	Up       r3.Vector
	Forward  r3.Vector
	LookAt   r3.Vector
}

// RotationMatrix returns the 3x3 camera-to-world rotation with columns
// (right, up, -forward), the Blender camera convention where the camera
// looks down its local -Z axis.
func (c CameraPose) RotationMatrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		c.Right.X, c.Up.X, -c.Forward.X,
		c.Right.Y, c.Up.Y, -c.Forward.Y,
		c.Right.Z, c.Up.Z, -c.Forward.Z,
	})
}

// Pose converts to a spatialmath pose, orienting along the forward axis.
func (c CameraPose) Pose() spatialmath.Pose {
	ov := &spatialmath.OrientationVector{
		OX: c.Forward.X,
		OY: c.Forward.Y,
		OZ: c.Forward.Z,
	}
	return spatialmath.NewPose(c.Position, ov)
}

func (c CameraPose) String() string {
	return fmt.Sprintf("CameraPose(position=(%.4f, %.4f, %.4f), look_at=(%.4f, %.4f, %.4f))",
		c.Position.X, c.Position.Y, c.Position.Z, c.LookAt.X, c.LookAt.Y, c.LookAt.Z)
}

// RejectionReason classifies why a candidate pose was rejected.
type RejectionReason int

const (
	ReasonCropped RejectionReason = iota
	ReasonTooSmall
	ReasonTooLarge
	ReasonBelowGroundPlane
	ReasonInvalidProjection
	ReasonValid

	// NumRejectionReasons is the size of the closed reason set.
	NumRejectionReasons = int(ReasonValid) + 1
)

func (r RejectionReason) String() string {
	switch r {
	case ReasonCropped:
		return "cropped"
	case ReasonTooSmall:
		return "too_small"
	case ReasonTooLarge:
		return "too_large"
	case ReasonBelowGroundPlane:
		return "below_ground_plane"
	case ReasonInvalidProjection:
		return "invalid_projection"
	case ReasonValid:
		return "valid"
	default:
		return "unknown"
	}
}

// RejectionTally counts rejections per reason. The fixed size keeps the
// reason set closed and makes merging a plain element-wise addition.
type RejectionTally [NumRejectionReasons]int

// Add increments the count for the given reason.
func (t *RejectionTally) Add(r RejectionReason) {
	if r >= 0 && int(r) < NumRejectionReasons {
		t[r]++
	}
}

// Merge adds another tally into this one.
func (t *RejectionTally) Merge(other RejectionTally) {
	for i := range t {
		t[i] += other[i]
	}
}

// Total returns the sum of all counts.
func (t RejectionTally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// ProjectedBBox is an axis-aligned rectangle in normalized image space,
// where (0,0) is the bottom-left corner and (1,1) the top-right.
type ProjectedBBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the horizontal extent as a fraction of the image width.
func (b ProjectedBBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent as a fraction of the image height.
func (b ProjectedBBox) Height() float64 { return b.MaxY - b.MinY }

// VisibilityResult is the outcome of checking one pose against the framing
// constraints. MarginUsed and ProjectedSize are nil when the corresponding
// metric could not be evaluated: both for BelowGroundPlane and
// InvalidProjection, and ProjectedSize additionally for Cropped.
type VisibilityResult struct {
	Valid         bool
	Reason        RejectionReason
	MarginUsed    *float64
	ProjectedSize *float64
	BBox          *ProjectedBBox
}

func (v VisibilityResult) String() string {
	if v.Valid {
		return fmt.Sprintf("VisibilityResult(valid, margin=%.4f, size=%.4f)", *v.MarginUsed, *v.ProjectedSize)
	}
	return fmt.Sprintf("VisibilityResult(rejected: %s)", v.Reason)
}
