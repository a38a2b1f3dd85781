package ringdataset

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

// AcceptedSample is one accepted viewpoint plus everything the annotator
// needs to record it. ImagePath is relative to the output directory and
// empty in validate-only mode.
type AcceptedSample struct {
	Index     int
	Pose      ringpose.CameraPose
	Params    ringpose.SampledParameters
	Result    ringpose.VisibilityResult
	Attempts  int
	ImagePath string
}

// RunSummary reports the outcome of a generation run. Aborted distinguishes
// a run cut short by the global attempt bound from one that accepted every
// requested sample.
type RunSummary struct {
	Requested     int
	Accepted      []AcceptedSample
	TotalAttempts int
	Rejections    ringpose.RejectionTally
	Aborted       bool
}

// SuccessRate returns accepted samples as a fraction of total attempts.
func (s *RunSummary) SuccessRate() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(len(s.Accepted)) / float64(s.TotalAttempts)
}

// Generate runs the sampling loop until the requested number of samples is
// accepted or the global attempt bound is hit. Each sample gets an inner
// budget of MaxAttemptsPerSample draws; every rejected draw goes through
// bounded auto-correction before counting as failed. Accepted poses are
// rendered (unless validate-only) and handed to the annotator in order.
//
// On global exhaustion the summary holds the samples accepted so far and the
// returned error wraps ErrAttemptBudgetExhausted.
func (p *Pipeline) Generate(ctx context.Context) (*RunSummary, error) {
	geom, err := p.geometry.Describe(p.cfg.ObjectName)
	if err != nil {
		return nil, fmt.Errorf("scene introspection: %w", err)
	}
	p.logger.Infof("Object %q: center=(%.4f, %.4f, %.4f) R=%.4f ground_z=%.4f",
		p.cfg.ObjectName, geom.Center.X, geom.Center.Y, geom.Center.Z, geom.Radius, geom.GroundPlaneZ)

	baseSeed := time.Now().UnixNano()
	if p.cfg.Seed != nil {
		baseSeed = *p.cfg.Seed
	}
	rng := rand.New(rand.NewSource(baseSeed))

	maxAttempts := p.cfg.Sampling.MaxAttemptsPerSample
	maxCorrections := p.cfg.Sampling.MaxCorrectionAttempts
	globalBudget := p.cfg.NumImages * maxAttempts * 2

	summary := &RunSummary{Requested: p.cfg.NumImages}

	sampleIdx := 0
	for len(summary.Accepted) < p.cfg.NumImages {
		if summary.TotalAttempts >= globalBudget {
			p.logger.Warnf("Attempt budget exhausted after %d attempts; %d/%d samples accepted",
				summary.TotalAttempts, len(summary.Accepted), p.cfg.NumImages)
			summary.Aborted = true
			break
		}
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sampleRng := rng
		if p.cfg.Sampling.PerSampleSeeds {
			sampleRng = rand.New(rand.NewSource(SampleSeed(baseSeed, sampleIdx)))
		}

		accepted, attempts, lastReason := p.acceptSample(ctx, geom, sampleIdx, sampleRng, maxAttempts, maxCorrections, summary)
		summary.TotalAttempts += attempts

		if accepted != nil {
			summary.Accepted = append(summary.Accepted, *accepted)
			p.logger.Infof("Sample %d: valid after %d attempt(s) | yaw=%.2f pitch=%.2f dist=%.2fxR",
				sampleIdx, attempts, accepted.Params.YawDeg, accepted.Params.PitchDeg,
				accepted.Params.DistanceMultiplier(geom.Radius))
		} else {
			p.logger.Warnf("Sample %d: no valid pose after %d attempts (last rejection: %s); skipping index",
				sampleIdx, attempts, lastReason)
		}
		sampleIdx++
	}

	p.logger.Infof("Sampling complete: %d/%d accepted, %d total attempts, success rate %.2f%%",
		len(summary.Accepted), summary.Requested, summary.TotalAttempts, summary.SuccessRate()*100)

	if p.annotator != nil && len(summary.Accepted) > 0 {
		if err := p.annotator.WriteAll(summary.Accepted, geom.Radius); err != nil {
			return summary, fmt.Errorf("writing annotations: %w", err)
		}
	}

	if summary.Aborted {
		return summary, fmt.Errorf("%w: accepted %d of %d requested",
			ErrAttemptBudgetExhausted, len(summary.Accepted), summary.Requested)
	}
	return summary, nil
}

// acceptSample runs the inner attempt loop for one logical sample index.
// Returns the accepted sample (nil if the budget ran out), the number of
// sampler draws consumed, and the last rejection reason seen.
func (p *Pipeline) acceptSample(
	ctx context.Context,
	geom ringpose.GeometryDescriptor,
	sampleIdx int,
	rng *rand.Rand,
	maxAttempts, maxCorrections int,
	summary *RunSummary,
) (*AcceptedSample, int, ringpose.RejectionReason) {
	lastReason := ringpose.ReasonInvalidProjection

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pose, params := ringpose.SamplePose(geom, p.cfg.Camera, rng)
		result := ringpose.CheckVisibility(geom, pose, p.Projector, p.cfg.Visibility, p.cfg.Image)

		if !result.Valid {
			initialReason := result.Reason
			corrected, correctedParams, correctedResult := ringpose.Correct(
				geom, pose, params, result.Reason,
				p.Projector, p.cfg.Visibility, p.cfg.Image, p.cfg.Camera, maxCorrections,
			)
			if correctedResult.Valid {
				pose, params, result = *corrected, *correctedParams, correctedResult
			} else {
				summary.Rejections.Add(initialReason)
				lastReason = initialReason
				p.logger.Debugf("Sample %d attempt %d: rejected (%s)", sampleIdx, attempt, initialReason)
				continue
			}
		}

		sample := AcceptedSample{
			Index:    sampleIdx,
			Pose:     pose,
			Params:   params,
			Result:   result,
			Attempts: attempt,
		}

		if !p.cfg.ValidateOnly {
			relPath := filepath.Join("images", fmt.Sprintf("%06d.png", sampleIdx))
			outPath := filepath.Join(p.cfg.OutputDir, relPath)
			if _, err := p.renderer.Render(ctx, outPath, pose, p.cfg.Image); err != nil {
				// The acceptance decision stands, but the sample is not
				// produced; keep trying within this sample's budget.
				p.logger.Warnf("Sample %d: render failed, discarding accepted pose: %v", sampleIdx, err)
				continue
			}
			sample.ImagePath = relPath
		}

		return &sample, attempt, ringpose.ReasonValid
	}

	return nil, maxAttempts, lastReason
}
