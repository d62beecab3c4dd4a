package types

// DimensionEntry is one measured or estimated distance extracted from a
// blueprint. All fields are carried as plain strings: the model contract does
// not guarantee well-formed values and the renderer defends against odd ones.
type DimensionEntry struct {
	Label      string `json:"label" bson:"label"`
	Value      string `json:"value" bson:"value"`
	Type       string `json:"type" bson:"type"`             // "detected" or "estimated"
	Confidence string `json:"confidence" bson:"confidence"` // high/medium/low
	Notes      string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// AnalysisRecord is the structured result of one blueprint analysis.
// Dimension order is significant: callouts are rendered in list order.
// RawResponse is set only when the model reply could not be parsed.
type AnalysisRecord struct {
	Scale           string           `json:"scale" bson:"scale"`
	ScaleConfidence string           `json:"scale_confidence" bson:"scale_confidence"`
	Dimensions      []DimensionEntry `json:"dimensions" bson:"dimensions"`
	Notes           string           `json:"notes" bson:"notes"`
	RawResponse     string           `json:"raw_response,omitempty" bson:"raw_response,omitempty"`
}

// CountByType tallies provenance over the full dimensions list. Anything not
// explicitly marked "detected" counts as estimated.
func (r AnalysisRecord) CountByType() (detected, estimated int) {
	for _, d := range r.Dimensions {
		if d.Type == "detected" {
			detected++
		} else {
			estimated++
		}
	}
	return detected, estimated
}

// StoredAnalysis is the persisted form of one completed analysis.
type StoredAnalysis struct {
	ID        string         `json:"id" bson:"id"`
	Filename  string         `json:"filename" bson:"filename"`
	Analysis  AnalysisRecord `json:"analysis" bson:"analysis"`
	CreatedAt string         `json:"created_at" bson:"created_at"` // ISO-8601 UTC
}

// Envelope is the response returned to the caller after a successful
// analysis. Both images are PNG data URIs.
type Envelope struct {
	Success        bool           `json:"success"`
	Filename       string         `json:"filename"`
	Analysis       AnalysisRecord `json:"analysis"`
	OriginalImage  string         `json:"original_image"`
	AnnotatedImage string         `json:"annotated_image"`
}

// StatusCheck is a liveness record created through the status endpoint.
type StatusCheck struct {
	ID         string `json:"id" bson:"id"`
	ClientName string `json:"client_name" bson:"client_name"`
	Timestamp  string `json:"timestamp" bson:"timestamp"`
}
