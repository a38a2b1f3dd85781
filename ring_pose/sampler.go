package ringpose

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

var worldUp = r3.Vector{Z: 1}

// SamplePose draws a candidate camera pose on the hemisphere above the
// ground plane, centered on the subject. Pitch is elevation from the
// horizontal plane, yaw is azimuth. The sampler never rejects; all
// accept/reject decisions live in CheckVisibility.
//
// The draw order (yaw, pitch, distance multiplier, jitter X/Y/Z) is fixed:
// reproducibility of a seeded run depends on attempts consuming the
// generator in exactly this order.
func SamplePose(geom GeometryDescriptor, cfg CameraConfig, rng *rand.Rand) (CameraPose, SampledParameters) {
	yawDeg := uniform(rng, cfg.YawMinDeg, cfg.YawMaxDeg)
	pitchDeg := uniform(rng, cfg.PitchMinDeg, cfg.PitchMaxDeg)
	multiplier := uniform(rng, cfg.DistanceMinMultiplier, cfg.DistanceMaxMultiplier)
	distance := multiplier * geom.Radius

	position := hemispherePosition(geom, yawDeg, pitchDeg, distance)

	maxJitter := cfg.LookAtJitterMaxFraction * geom.Radius
	jitter := r3.Vector{
		X: uniform(rng, -maxJitter, maxJitter),
		Y: uniform(rng, -maxJitter, maxJitter),
		Z: uniform(rng, -maxJitter, maxJitter),
	}
	lookAt := geom.Center.Add(jitter)

	pose := NewLookAtPose(position, lookAt)
	params := SampledParameters{
		YawDeg:       yawDeg,
		PitchDeg:     pitchDeg,
		Distance:     distance,
		LookAtJitter: jitter,
	}
	return pose, params
}

// NewLookAtPose builds an orthonormal camera basis at position, looking
// toward lookAt with world up as the up reference. When forward is parallel
// to world up (camera looking straight down or up), the right vector is
// derived from world Y instead so the basis stays well defined.
func NewLookAtPose(position, lookAt r3.Vector) CameraPose {
	forward := normalizeOr(lookAt.Sub(position), r3.Vector{Z: -1})

	right := forward.Cross(worldUp)
	if right.Norm() < 1e-9 {
		right = forward.Cross(r3.Vector{Y: 1})
	}
	right = normalizeOr(right, r3.Vector{X: 1})
	up := normalizeOr(right.Cross(forward), worldUp)

	return CameraPose{
		Position: position,
		Right:    right,
		Up:       up,
		Forward:  forward,
		LookAt:   lookAt,
	}
}

// hemispherePosition converts spherical draws to a world position and clamps
// it above the ground plane. The clamp is a silent corrective floor, not a
// rejection.
func hemispherePosition(geom GeometryDescriptor, yawDeg, pitchDeg, distance float64) r3.Vector {
	yaw := yawDeg * math.Pi / 180.0
	pitch := pitchDeg * math.Pi / 180.0

	offset := r3.Vector{
		X: distance * math.Cos(pitch) * math.Cos(yaw),
		Y: distance * math.Cos(pitch) * math.Sin(yaw),
		Z: distance * math.Sin(pitch),
	}
	position := geom.Center.Add(offset)

	if position.Z <= geom.GroundPlaneZ {
		position.Z = geom.GroundPlaneZ + 0.1*geom.Radius
	}
	return position
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func normalizeOr(v, fallback r3.Vector) r3.Vector {
	n := v.Norm()
	if n < 1e-12 {
		return fallback
	}
	return v.Mul(1.0 / n)
}
