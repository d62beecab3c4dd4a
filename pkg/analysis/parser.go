package analysis

import (
	"encoding/json"
	"strings"

	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// FallbackScale is the scale reported when the model reply cannot be parsed.
const FallbackScale = "Unable to detect"

// ParseResponse extracts a structured record from the model's free-form
// reply. It tolerates bare JSON, a ```json fenced block, and an unlabeled
// fenced block. A reply that still fails to parse degrades to an empty
// record carrying the original text; this function never returns an error.
func ParseResponse(raw string) types.AnalysisRecord {
	candidate := extractJSON(raw)

	var rec types.AnalysisRecord
	if err := json.Unmarshal([]byte(candidate), &rec); err != nil {
		return types.AnalysisRecord{
			Scale:           FallbackScale,
			ScaleConfidence: "low",
			Dimensions:      []types.DimensionEntry{},
			Notes:           raw,
			RawResponse:     raw,
		}
	}

	if rec.Dimensions == nil {
		rec.Dimensions = []types.DimensionEntry{}
	}
	return rec
}

// extractJSON slices the interior of a fenced code block when fence markers
// are present; otherwise it returns the trimmed whole text.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}

	return strings.TrimSpace(text)
}
