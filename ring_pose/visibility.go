package ringpose

import "math"

// CheckVisibility classifies a camera pose against the framing constraints:
// the subject's full bounding box must project inside the image with the
// configured edge margin, and its projected size must fall inside the
// configured fraction range. Margin and size checks use non-strict bounds: a
// metric exactly equal to its bound passes.
//
// Deterministic and side-effect free given identical inputs; the projector
// is the only collaborator and must itself be pure.
func CheckVisibility(geom GeometryDescriptor, pose CameraPose, proj Projector, vcfg VisibilityConfig, icfg ImageConfig) VisibilityResult {
	if pose.Position.Z < geom.GroundPlaneZ {
		return VisibilityResult{Valid: false, Reason: ReasonBelowGroundPlane}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range geom.Corners() {
		x, y, ok := proj.Project(corner, pose, icfg.Width, icfg.Height)
		if !ok {
			return VisibilityResult{Valid: false, Reason: ReasonInvalidProjection}
		}
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	bbox := &ProjectedBBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}

	// Minimum clearance to any image edge, in normalized coordinates.
	actualMargin := math.Min(math.Min(minX, minY), math.Min(1.0-maxX, 1.0-maxY))

	margin := vcfg.EdgeMarginFraction
	if minX < margin || maxX > 1.0-margin || minY < margin || maxY > 1.0-margin {
		m := actualMargin
		return VisibilityResult{
			Valid:      false,
			Reason:     ReasonCropped,
			MarginUsed: &m,
			BBox:       bbox,
		}
	}

	size := math.Max(bbox.Width(), bbox.Height())
	m, s := actualMargin, size

	if size < vcfg.MinProjectedSizeFraction {
		return VisibilityResult{
			Valid:         false,
			Reason:        ReasonTooSmall,
			MarginUsed:    &m,
			ProjectedSize: &s,
			BBox:          bbox,
		}
	}
	if size > vcfg.MaxProjectedSizeFraction {
		return VisibilityResult{
			Valid:         false,
			Reason:        ReasonTooLarge,
			MarginUsed:    &m,
			ProjectedSize: &s,
			BBox:          bbox,
		}
	}

	return VisibilityResult{
		Valid:         true,
		Reason:        ReasonValid,
		MarginUsed:    &m,
		ProjectedSize: &s,
		BBox:          bbox,
	}
}
