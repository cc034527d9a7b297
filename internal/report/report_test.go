package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

func sampleSummary() types.Summary {
	return types.Summary{
		SchemaVersion:   "1.0.0",
		SummaryID:       "sum-1",
		GeneratedAt:     "2026-01-01T00:00:00Z",
		EvalSuiteID:     "smoke",
		PredictionCount: 3,
		ActualCount:     3,
		Metrics:         types.Metrics{Accuracy: 1, Precision: 1, Recall: 1, F1Score: 1},
		Confusion:       types.Confusion{TruePositives: 2, TrueNegatives: 1},
		Thresholds:      map[string]float64{"f1_score_min": 0.8, "accuracy_min": 0.9},
	}
}

func TestBuildMarkdown_PassingSummary(t *testing.T) {
	md := BuildMarkdown(sampleSummary())

	for _, want := range []string{
		"# Bug Detection Evaluation Report",
		"Status: **PASS**",
		"Suite: `smoke`",
		"Records: `3` predicted, `3` actual",
		"| Accuracy | 100.00% |",
		"| F1 Score | 100.00% |",
		"| Predicted issues | 2 | 0 |",
		"| Predicted clean | 0 | 1 |",
		"## Thresholds",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "## Violations") {
		t.Error("passing summary should not have a violations section")
	}
}

func TestBuildMarkdown_ThresholdsSorted(t *testing.T) {
	md := BuildMarkdown(sampleSummary())
	a := strings.Index(md, "accuracy_min")
	f := strings.Index(md, "f1_score_min")
	if a < 0 || f < 0 || a > f {
		t.Errorf("thresholds not sorted: accuracy_min at %d, f1_score_min at %d", a, f)
	}
}

func TestBuildMarkdown_FailingSummary(t *testing.T) {
	s := sampleSummary()
	s.RegressionDetected = true
	s.Violations = []string{"f1_score 50.00% below minimum 80.00%"}

	md := BuildMarkdown(s)
	if !strings.Contains(md, "Status: **FAIL**") {
		t.Error("missing FAIL status")
	}
	if !strings.Contains(md, "## Violations") {
		t.Error("missing violations section")
	}
	if !strings.Contains(md, "f1_score 50.00% below minimum 80.00%") {
		t.Error("missing violation text")
	}
}

func TestBuildMarkdown_PipeInSuite(t *testing.T) {
	s := sampleSummary()
	s.EvalSuiteID = "a|b"
	if !strings.Contains(BuildMarkdown(s), `a\|b`) {
		t.Error("pipe in suite id not escaped")
	}
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := WriteMarkdown(path, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "# Bug Detection Evaluation Report") {
		t.Error("written file missing title")
	}
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteText(path, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Accuracy:  100.00%") {
		t.Errorf("text report = %q", raw)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSON(path, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var s types.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.EvalSuiteID != "smoke" {
		t.Errorf("eval_suite_id = %q", s.EvalSuiteID)
	}
	if s.Metrics.F1Score != 1 {
		t.Errorf("f1_score = %v, want 1", s.Metrics.F1Score)
	}
}
