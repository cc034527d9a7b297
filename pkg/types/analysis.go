package types

const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	LineNumber  int    `json:"line_number"`
	Suggestion  string `json:"suggestion"`
	Confidence  int    `json:"confidence"`
}

// AnalysisResult is the bug report returned for one code snippet. Error is
// set only on degraded results produced after a failed model call.
type AnalysisResult struct {
	HasIssues        bool    `json:"has_issues"`
	Issues           []Issue `json:"issues"`
	CodeQualityScore int     `json:"code_quality_score"`
	SecurityScore    int     `json:"security_score"`
	PerformanceScore int     `json:"performance_score"`
	Error            string  `json:"error,omitempty"`
	CodeIndex        *int    `json:"code_index,omitempty"`
}

// Degraded reports whether the result carries a model error.
func (r AnalysisResult) Degraded() bool {
	return r.Error != ""
}

// AsRecord projects the result onto the evaluation record shape. Degraded
// results have no label.
func (r AnalysisResult) AsRecord() Record {
	if r.Degraded() {
		return Record{}
	}
	rec := NewRecord(r.HasIssues)
	if len(r.Issues) > 0 {
		best := 0
		for _, is := range r.Issues {
			if is.Confidence > best {
				best = is.Confidence
			}
		}
		c := float64(best)
		rec.Confidence = &c
	}
	return rec
}
