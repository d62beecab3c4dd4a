package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCountByType(t *testing.T) {
	rec := AnalysisRecord{
		Dimensions: []DimensionEntry{
			{Type: "detected"},
			{Type: "estimated"},
			{Type: "detected"},
			{Type: ""},
			{Type: "something-else"},
		},
	}

	detected, estimated := rec.CountByType()
	if detected != 2 {
		t.Errorf("Expected 2 detected, got %d", detected)
	}
	if estimated != 3 {
		t.Errorf("Expected 3 estimated (everything not detected), got %d", estimated)
	}
}

func TestCountByTypeOverFullList(t *testing.T) {
	// Counts are over the whole list, not the 15-entry rendering cap
	dims := make([]DimensionEntry, 20)
	for i := range dims {
		dims[i] = DimensionEntry{Type: "detected"}
	}
	rec := AnalysisRecord{Dimensions: dims}

	detected, estimated := rec.CountByType()
	if detected != 20 || estimated != 0 {
		t.Errorf("Expected 20/0, got %d/%d", detected, estimated)
	}
}

func TestAnalysisRecordJSONShape(t *testing.T) {
	rec := AnalysisRecord{
		Scale:           "1:100",
		ScaleConfidence: "high",
		Dimensions:      []DimensionEntry{{Label: "wall", Value: "3m", Type: "detected", Confidence: "high"}},
		Notes:           "ok",
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	for _, key := range []string{`"scale"`, `"scale_confidence"`, `"dimensions"`, `"notes"`} {
		if !strings.Contains(s, key) {
			t.Errorf("Missing key %s in %s", key, s)
		}
	}
	// raw_response is present only on parse fallback
	if strings.Contains(s, "raw_response") {
		t.Error("raw_response must be omitted when empty")
	}

	rec.RawResponse = "garbled"
	data, _ = json.Marshal(rec)
	if !strings.Contains(string(data), `"raw_response":"garbled"`) {
		t.Error("raw_response must appear when set")
	}
}

func TestDimensionEntryOmitsEmptyNotes(t *testing.T) {
	data, err := json.Marshal(DimensionEntry{Label: "wall", Value: "3m"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "notes") {
		t.Error("notes must be omitted when empty")
	}
}
