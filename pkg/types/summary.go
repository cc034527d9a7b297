package types

// Summary is the persisted outcome of one evaluation run.
type Summary struct {
	SchemaVersion      string             `json:"schema_version"`
	SummaryID          string             `json:"summary_id"`
	GeneratedAt        string             `json:"generated_at"`
	Generator          Generator          `json:"generator"`
	EvalSuiteID        string             `json:"eval_suite_id"`
	PredictionsDigest  string             `json:"predictions_digest"`
	ActualDigest       string             `json:"actual_digest"`
	PredictionCount    int                `json:"prediction_count"`
	ActualCount        int                `json:"actual_count"`
	Metrics            Metrics            `json:"metrics"`
	Confusion          Confusion          `json:"confusion"`
	Thresholds         map[string]float64 `json:"thresholds,omitempty"`
	RegressionDetected bool               `json:"regression_detected"`
	Violations         []string           `json:"violations,omitempty"`
}

type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha"`
}

// MetricValue looks a metric up by its JSON name.
func (m Metrics) MetricValue(name string) (float64, bool) {
	switch name {
	case "accuracy":
		return m.Accuracy, true
	case "precision":
		return m.Precision, true
	case "recall":
		return m.Recall, true
	case "f1_score":
		return m.F1Score, true
	default:
		return 0, false
	}
}
