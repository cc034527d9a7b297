package types

import (
	"encoding/json"
	"testing"
)

func TestRecordJSON_AbsentLabelStaysNil(t *testing.T) {
	var recs []Record
	if err := json.Unmarshal([]byte(`[{"has_issues":true,"confidence":85},{"confidence":10},{"has_issues":null}]`), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if recs[0].HasIssues == nil || !*recs[0].HasIssues {
		t.Errorf("first record has_issues = %v, want true", recs[0].HasIssues)
	}
	if recs[0].Confidence == nil || *recs[0].Confidence != 85 {
		t.Errorf("first record confidence = %v, want 85", recs[0].Confidence)
	}
	if recs[1].HasIssues != nil {
		t.Error("missing has_issues should decode to nil")
	}
	if recs[2].HasIssues != nil {
		t.Error("null has_issues should decode to nil")
	}
}

func TestRecordLabel(t *testing.T) {
	if (Record{}).Label() {
		t.Error("absent label should read as false")
	}
	if !NewRecord(true).Label() {
		t.Error("true label should read as true")
	}
	if NewRecord(false).Label() {
		t.Error("false label should read as false")
	}
}

func TestMetricValue(t *testing.T) {
	m := Metrics{Accuracy: 0.1, Precision: 0.2, Recall: 0.3, F1Score: 0.4}
	for name, want := range map[string]float64{"accuracy": 0.1, "precision": 0.2, "recall": 0.3, "f1_score": 0.4} {
		got, ok := m.MetricValue(name)
		if !ok || got != want {
			t.Errorf("MetricValue(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := m.MetricValue("latency"); ok {
		t.Error("unknown metric should not resolve")
	}
}

func TestAnalysisResultAsRecord(t *testing.T) {
	r := AnalysisResult{
		HasIssues: true,
		Issues: []Issue{
			{Type: "Logic Error", Severity: SeverityHigh, Confidence: 40},
			{Type: "Security", Severity: SeverityCritical, Confidence: 90},
		},
	}
	rec := r.AsRecord()
	if !rec.Label() {
		t.Error("expected positive label")
	}
	if rec.Confidence == nil || *rec.Confidence != 90 {
		t.Errorf("confidence = %v, want highest issue confidence 90", rec.Confidence)
	}

	degraded := AnalysisResult{Error: "Error calling Gemini API: boom"}
	if got := degraded.AsRecord(); got.HasIssues != nil {
		t.Error("degraded result should project to an unlabeled record")
	}
}

func TestAnalysisResultJSON_OmitsEmptyError(t *testing.T) {
	raw, err := json.Marshal(AnalysisResult{Issues: []Issue{}})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["error"]; ok {
		t.Error("error key should be omitted when empty")
	}
	if _, ok := m["code_index"]; ok {
		t.Error("code_index key should be omitted when unset")
	}
}
