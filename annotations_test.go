package ringdataset

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"

	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

func acceptedFixture(index int) AcceptedSample {
	geom := testGeom()
	params := ringpose.SampledParameters{
		YawDeg:       30,
		PitchDeg:     45,
		Distance:     12,
		LookAtJitter: r3.Vector{X: 0.05, Y: -0.02, Z: 0.01},
	}
	pose := ringpose.NewLookAtPose(r3.Vector{X: 8, Y: 2, Z: 6}, geom.Center.Add(params.LookAtJitter))

	margin, size := 0.15, 0.28
	return AcceptedSample{
		Index:  index,
		Pose:   pose,
		Params: params,
		Result: ringpose.VisibilityResult{
			Valid:         true,
			Reason:        ringpose.ReasonValid,
			MarginUsed:    &margin,
			ProjectedSize: &size,
			BBox:          &ringpose.ProjectedBBox{MinX: 0.3, MinY: 0.35, MaxX: 0.58, MaxY: 0.6},
		},
		Attempts:  3,
		ImagePath: filepath.Join("images", "000002.png"),
	}
}

func TestJSONLAnnotator_WriteAll(t *testing.T) {
	dir := t.TempDir()
	annotator := &JSONLAnnotator{
		Path:  filepath.Join(dir, "annotations.jsonl"),
		Image: ringpose.DefaultConfig().Image,
	}

	samples := []AcceptedSample{acceptedFixture(2), acceptedFixture(3)}
	if err := annotator.WriteAll(samples, 1.0); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(annotator.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("wrote %d records, want 2", len(records))
	}

	rec := records[0]
	if rec["image_path"] != filepath.Join("images", "000002.png") {
		t.Errorf("image_path = %v", rec["image_path"])
	}
	if rec["sample_index"].(float64) != 2 {
		t.Errorf("sample_index = %v, want 2", rec["sample_index"])
	}
	if rec["attempts"].(float64) != 3 {
		t.Errorf("attempts = %v, want 3", rec["attempts"])
	}

	extrinsics := rec["camera_extrinsics"].(map[string]interface{})
	matrix := extrinsics["matrix_world"].([]interface{})
	if len(matrix) != 4 {
		t.Fatalf("matrix_world has %d rows", len(matrix))
	}
	lastRow := matrix[3].([]interface{})
	for j, want := range []float64{0, 0, 0, 1} {
		if got := lastRow[j].(float64); math.Abs(got-want) > 1e-12 {
			t.Errorf("matrix_world[3][%d] = %v, want %v", j, got, want)
		}
	}
	row0 := matrix[0].([]interface{})
	if got := row0[3].(float64); math.Abs(got-8.0) > 1e-12 {
		t.Errorf("translation X = %v, want 8", got)
	}
	if extrinsics["pose"] == nil {
		t.Error("extrinsics missing protobuf pose")
	}

	sampled := rec["sampled_parameters"].(map[string]interface{})
	if sampled["yaw"].(float64) != 30 || sampled["pitch"].(float64) != 45 {
		t.Errorf("sampled parameters = %v", sampled)
	}
	// Radius 1.0 makes the multiplier equal the absolute distance.
	if sampled["distance_multiplier"].(float64) != 12 {
		t.Errorf("distance_multiplier = %v, want 12", sampled["distance_multiplier"])
	}

	metrics := rec["visibility_metrics"].(map[string]interface{})
	if metrics["margin_used"].(float64) != 0.15 {
		t.Errorf("margin_used = %v", metrics["margin_used"])
	}
	bbox := metrics["projected_bbox"].([]interface{})
	if len(bbox) != 4 || bbox[0].(float64) != 0.3 {
		t.Errorf("projected_bbox = %v", bbox)
	}
}

func TestJSONLAnnotator_NullMetrics(t *testing.T) {
	dir := t.TempDir()
	annotator := &JSONLAnnotator{
		Path:  filepath.Join(dir, "annotations.jsonl"),
		Image: ringpose.DefaultConfig().Image,
	}

	sample := acceptedFixture(0)
	sample.Result = ringpose.VisibilityResult{Valid: true, Reason: ringpose.ReasonValid}
	if err := annotator.WriteAll([]AcceptedSample{sample}, 1.0); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(annotator.Path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}

	metrics := rec["visibility_metrics"].(map[string]interface{})
	if metrics["margin_used"] != nil || metrics["projected_size_fraction"] != nil {
		t.Errorf("absent metrics serialized as non-null: %v", metrics)
	}
}
