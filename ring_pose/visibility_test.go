package ringpose

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

// projectFunc adapts a plain function to the Projector interface for tests.
type projectFunc func(point r3.Vector, pose CameraPose, w, h int) (float64, float64, bool)

func (f projectFunc) Project(point r3.Vector, pose CameraPose, w, h int) (float64, float64, bool) {
	return f(point, pose, w, h)
}

// planarProjector maps world X/Y linearly onto the image with an optional
// horizontal shift. With the test geometry's [-1,1] box, the projected bbox
// width is 2*sx and height 2*sy.
func planarProjector(sx, sy, shiftX float64) projectFunc {
	return func(p r3.Vector, _ CameraPose, _, _ int) (float64, float64, bool) {
		return 0.5 + p.X*sx + shiftX, 0.5 + p.Y*sy, true
	}
}

func behindCameraProjector() projectFunc {
	return func(r3.Vector, CameraPose, int, int) (float64, float64, bool) {
		return 0, 0, false
	}
}

func validTestPose(geom GeometryDescriptor) CameraPose {
	return NewLookAtPose(r3.Vector{X: 5, Y: 5, Z: 5}, geom.Center)
}

func TestCheckVisibility_Classification(t *testing.T) {
	geom := testGeometry()
	vcfg := DefaultConfig().Visibility
	icfg := DefaultConfig().Image
	pose := validTestPose(geom)

	cases := []struct {
		name       string
		proj       Projector
		wantValid  bool
		wantReason RejectionReason
	}{
		{"centered_in_range", planarProjector(0.125, 0.125, 0), true, ReasonValid},
		{"too_small", planarProjector(0.08, 0.08, 0), false, ReasonTooSmall},
		{"too_large", planarProjector(0.2, 0.125, 0), false, ReasonTooLarge},
		{"cropped", planarProjector(0.47, 0.125, 0), false, ReasonCropped},
		{"behind_camera", behindCameraProjector(), false, ReasonInvalidProjection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckVisibility(geom, pose, tc.proj, vcfg, icfg)
			if result.Valid != tc.wantValid || result.Reason != tc.wantReason {
				t.Fatalf("got valid=%v reason=%s, want valid=%v reason=%s",
					result.Valid, result.Reason, tc.wantValid, tc.wantReason)
			}
		})
	}
}

func TestCheckVisibility_BelowGroundPlane(t *testing.T) {
	geom := testGeometry()
	cfg := DefaultConfig()

	calls := 0
	counting := projectFunc(func(r3.Vector, CameraPose, int, int) (float64, float64, bool) {
		calls++
		return 0.5, 0.5, true
	})

	pose := NewLookAtPose(r3.Vector{X: 5, Z: geom.GroundPlaneZ - 1}, geom.Center)
	result := CheckVisibility(geom, pose, counting, cfg.Visibility, cfg.Image)

	if result.Valid || result.Reason != ReasonBelowGroundPlane {
		t.Fatalf("got valid=%v reason=%s, want below_ground_plane", result.Valid, result.Reason)
	}
	if calls != 0 {
		t.Errorf("projector consulted %d times before the ground check", calls)
	}
	if result.MarginUsed != nil || result.ProjectedSize != nil || result.BBox != nil {
		t.Error("below-ground rejection should carry no projection metrics")
	}
}

func TestCheckVisibility_MetricNullability(t *testing.T) {
	geom := testGeometry()
	cfg := DefaultConfig()
	pose := validTestPose(geom)

	cropped := CheckVisibility(geom, pose, planarProjector(0.47, 0.125, 0), cfg.Visibility, cfg.Image)
	if cropped.MarginUsed == nil || cropped.BBox == nil {
		t.Error("cropped rejection should report margin and bbox")
	}
	if cropped.ProjectedSize != nil {
		t.Error("cropped rejection should not report a projected size")
	}

	invalid := CheckVisibility(geom, pose, behindCameraProjector(), cfg.Visibility, cfg.Image)
	if invalid.MarginUsed != nil || invalid.ProjectedSize != nil || invalid.BBox != nil {
		t.Error("invalid-projection rejection should carry no metrics")
	}

	small := CheckVisibility(geom, pose, planarProjector(0.08, 0.08, 0), cfg.Visibility, cfg.Image)
	if small.MarginUsed == nil || small.ProjectedSize == nil || small.BBox == nil {
		t.Error("too-small rejection should report all metrics")
	}
}

func TestCheckVisibility_BoundaryValuesPass(t *testing.T) {
	geom := testGeometry()
	vcfg := DefaultConfig().Visibility
	icfg := DefaultConfig().Image
	pose := validTestPose(geom)

	// Size exactly at the maximum fraction.
	atMax := CheckVisibility(geom, pose, planarProjector(0.175, 0.125, 0), vcfg, icfg)
	if !atMax.Valid {
		t.Errorf("size exactly at max bound rejected: %s", atMax.Reason)
	}
	if atMax.ProjectedSize == nil || math.Abs(*atMax.ProjectedSize-0.35) > 1e-9 {
		t.Errorf("projected size = %v, want 0.35", atMax.ProjectedSize)
	}

	// Size exactly at the minimum fraction.
	atMin := CheckVisibility(geom, pose, planarProjector(0.1, 0.1, 0), vcfg, icfg)
	if !atMin.Valid {
		t.Errorf("size exactly at min bound rejected: %s", atMin.Reason)
	}

	// Margin exactly at the edge margin: bbox [0.07, 0.42] horizontally.
	atMargin := CheckVisibility(geom, pose, planarProjector(0.175, 0.125, -0.255), vcfg, icfg)
	if !atMargin.Valid {
		t.Errorf("margin exactly at bound rejected: %s", atMargin.Reason)
	}
	if atMargin.MarginUsed == nil || math.Abs(*atMargin.MarginUsed-0.07) > 1e-9 {
		t.Errorf("margin used = %v, want 0.07", atMargin.MarginUsed)
	}
}

func TestCheckVisibility_Deterministic(t *testing.T) {
	geom := testGeometry()
	cfg := DefaultConfig()
	pose := validTestPose(geom)
	proj := planarProjector(0.125, 0.125, 0)

	first := CheckVisibility(geom, pose, proj, cfg.Visibility, cfg.Image)
	for i := 0; i < 10; i++ {
		again := CheckVisibility(geom, pose, proj, cfg.Visibility, cfg.Image)
		if again.Valid != first.Valid || again.Reason != first.Reason {
			t.Fatalf("iteration %d: classification changed", i)
		}
		if *again.MarginUsed != *first.MarginUsed || *again.ProjectedSize != *first.ProjectedSize {
			t.Fatalf("iteration %d: metrics changed", i)
		}
	}
}
