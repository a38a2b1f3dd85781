package ringpose

import "math"

// correctionStrategy is fixed for a whole correction run, keyed on the
// original rejection reason.
type correctionStrategy struct {
	distanceFactor float64 // per-attempt multiplicative change
	pitchDeltaDeg  float64 // per-attempt additive change
}

func strategyFor(reason RejectionReason) correctionStrategy {
	switch reason {
	case ReasonTooSmall:
		// Move closer; viewing angle is not the problem.
		return correctionStrategy{distanceFactor: 0.7}
	case ReasonTooLarge:
		return correctionStrategy{distanceFactor: 1.1}
	default:
		// Cropped and anything unclassified: back off and flatten the view.
		return correctionStrategy{distanceFactor: 1.1, pitchDeltaDeg: -5.0}
	}
}

// Correct attempts to nudge a rejected pose back into compliance by
// perturbing distance and pitch deterministically; yaw and the look-at
// target are held fixed for the whole run. Each attempt's parameters derive
// from the original values (factor^k, delta*k), clamped to the configured
// ranges, and are re-validated; the first valid result wins.
//
// When the original reason is TooSmall and the clamped distance is already
// pinned at the configured minimum on the first attempt, moving closer
// cannot help: the remaining attempts hold distance at the minimum and
// raise pitch by 10 degrees per attempt for a more direct view.
//
// Returns (nil, nil, last result) if no attempt validates. The rejected
// inputs are never mutated; every attempt builds fresh values. Correct does
// not consult the random generator.
func Correct(
	geom GeometryDescriptor,
	pose CameraPose,
	params SampledParameters,
	reason RejectionReason,
	proj Projector,
	vcfg VisibilityConfig,
	icfg ImageConfig,
	ccfg CameraConfig,
	maxAttempts int,
) (*CameraPose, *SampledParameters, VisibilityResult) {
	strat := strategyFor(reason)

	minDistance := ccfg.DistanceMinMultiplier * geom.Radius
	maxDistance := ccfg.DistanceMaxMultiplier * geom.Radius
	pinTolerance := 0.001 * geom.Radius

	last := VisibilityResult{Valid: false, Reason: reason}
	raisePitch := false

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var newDistance, newPitch float64
		if raisePitch {
			newDistance = minDistance
			newPitch = clamp(params.PitchDeg+10.0*float64(attempt), ccfg.PitchMinDeg, ccfg.PitchMaxDeg)
		} else {
			newDistance = clamp(params.Distance*math.Pow(strat.distanceFactor, float64(attempt)), minDistance, maxDistance)
			newPitch = clamp(params.PitchDeg+strat.pitchDeltaDeg*float64(attempt), ccfg.PitchMinDeg, ccfg.PitchMaxDeg)

			if reason == ReasonTooSmall && attempt == 1 && math.Abs(newDistance-minDistance) < pinTolerance {
				raisePitch = true
				newDistance = minDistance
				newPitch = clamp(params.PitchDeg+10.0, ccfg.PitchMinDeg, ccfg.PitchMaxDeg)
			}
		}

		position := hemispherePosition(geom, params.YawDeg, newPitch, newDistance)
		candidate := NewLookAtPose(position, pose.LookAt)
		candidateParams := SampledParameters{
			YawDeg:       params.YawDeg,
			PitchDeg:     newPitch,
			Distance:     newDistance,
			LookAtJitter: params.LookAtJitter,
		}

		last = CheckVisibility(geom, candidate, proj, vcfg, icfg)
		if last.Valid {
			return &candidate, &candidateParams, last
		}
	}

	return nil, nil, last
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
