//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/analyzer"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/dataset"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/evaluate"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/gate"
	gaterego "github.com/ogulcanaydogan/ai-bug-detector/internal/gate/rego"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/report"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/store"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

func TestFullPipeline_EvaluatePublishGate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSuite(t, dir, "smoke", "thresholds:\n  f1_score_min: 0.8\n",
		evaluate.ExamplePredictionsJSON, evaluate.ExampleActualJSON)

	summary, err := evaluate.Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if summary.RegressionDetected {
		t.Fatalf("unexpected regression: %v", summary.Violations)
	}
	summaryPath, err := evaluate.WriteSummary(filepath.Join(dir, "out"), summary)
	if err != nil {
		t.Fatal(err)
	}

	host := startRegistry(t)
	pinned, err := store.PublishOCI(summaryPath, host+"/acme/evals:smoke")
	if err != nil {
		t.Fatal(err)
	}
	pulledDir := filepath.Join(dir, "pulled")
	if err := os.MkdirAll(pulledDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := store.PullOCI(pinned, filepath.Join(pulledDir, "summary_smoke_pulled.json")); err != nil {
		t.Fatal(err)
	}

	policy, err := gate.LoadPolicy(yamlPolicyPath(t))
	if err != nil {
		t.Fatal(err)
	}
	summaries, err := gate.LoadSummaries(pulledDir)
	if err != nil {
		t.Fatal(err)
	}
	if v := gate.Evaluate(policy, summaries); len(v) != 0 {
		t.Fatalf("yaml gate violations: %v", v)
	}
	result, err := gaterego.Evaluate(context.Background(), regoPolicyPath(t), gaterego.BuildInput(policy, summaries))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allow {
		t.Fatalf("rego gate denied: %v", result.Violations)
	}

	mdPath := filepath.Join(dir, "report.md")
	if err := report.WriteMarkdown(mdPath, summaries[0]); err != nil {
		t.Fatal(err)
	}
	md, _ := os.ReadFile(mdPath)
	if !strings.Contains(string(md), "PASS") {
		t.Errorf("report should show PASS:\n%s", md)
	}
}

func TestFullPipeline_RegressionBlocksBothEngines(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSuite(t, dir, "noisy", "thresholds:\n  precision_min: 0.9\n",
		`[{"has_issues": true}, {"has_issues": true}, {"has_issues": true}, {"has_issues": false}]`,
		`[{"has_issues": true}, {"has_issues": false}, {"has_issues": false}, {"has_issues": false}]`)

	summary, err := evaluate.Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.RegressionDetected {
		t.Fatal("expected regression for low precision")
	}
	if _, err := evaluate.WriteSummary(dir, summary); err != nil {
		t.Fatal(err)
	}

	policy, err := gate.LoadPolicy(yamlPolicyPath(t))
	if err != nil {
		t.Fatal(err)
	}
	summaries, err := gate.LoadSummaries(dir)
	if err != nil {
		t.Fatal(err)
	}
	yamlViolations := gate.Evaluate(policy, summaries)
	if len(yamlViolations) == 0 {
		t.Fatal("yaml engine should report violations")
	}
	result, err := gaterego.Evaluate(context.Background(), regoPolicyPath(t), gaterego.BuildInput(policy, summaries))
	if err != nil {
		t.Fatal(err)
	}
	if result.Allow {
		t.Fatal("rego engine should deny")
	}
	if strings.Join(result.Violations, "\n") != strings.Join(yamlViolations, "\n") {
		t.Errorf("engines disagree:\nyaml: %v\nrego: %v", yamlViolations, result.Violations)
	}
}

// Offline analyzer output feeds straight into an evaluation run.
func TestFullPipeline_AnalyzeDatasetThenScore(t *testing.T) {
	c := dataset.NewCollector(nil)
	samples, err := c.CollectFromGitHub("https://github.com/acme/buggy", "python")
	if err != nil {
		t.Fatal(err)
	}
	codes := make([]string, 0, 2*len(samples))
	actual := make([]types.Record, 0, 2*len(samples))
	for _, s := range samples {
		codes = append(codes, s.BuggyCode, s.FixedCode)
		actual = append(actual, types.NewRecord(true), types.NewRecord(false))
	}

	results, err := analyzer.BatchAnalyze(context.Background(), analyzer.StaticAnalyzer{}, codes, "python", 2)
	if err != nil {
		t.Fatal(err)
	}
	preds := make([]types.Record, 0, len(results))
	for _, r := range results {
		preds = append(preds, r.AsRecord())
	}

	s := evaluate.Score("dataset", preds, actual, map[string]float64{"precision_min": 0.9})
	if s.Metrics.Accuracy != 0.5 || s.Metrics.Recall != 1 || s.Metrics.Precision != 0.5 {
		t.Fatalf("metrics = %+v", s.Metrics)
	}
	if !s.RegressionDetected {
		t.Error("static analyzer flags every fixed sample and should miss the precision bar")
	}
}
