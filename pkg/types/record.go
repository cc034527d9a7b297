package types

// Record is one labeled observation. A nil HasIssues means the label was
// absent from the input document.
type Record struct {
	HasIssues  *bool    `json:"has_issues"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Label reports the record's flag with absent values read as false.
func (r Record) Label() bool {
	return r.HasIssues != nil && *r.HasIssues
}

func NewRecord(hasIssues bool) Record {
	return Record{HasIssues: &hasIssues}
}

func NewScoredRecord(hasIssues bool, confidence float64) Record {
	return Record{HasIssues: &hasIssues, Confidence: &confidence}
}

type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

type Confusion struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TrueNegatives  int `json:"true_negatives"`
}
