package rego

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/gate"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
	oparego "github.com/open-policy-agent/opa/rego"
)

const query = "data.bugdetect.gates.result"

type SummaryView struct {
	EvalSuiteID        string          `json:"eval_suite_id"`
	Metrics            types.Metrics   `json:"metrics"`
	Confusion          types.Confusion `json:"confusion"`
	RegressionDetected bool            `json:"regression_detected"`
}

type Input struct {
	FailOnRegression bool          `json:"fail_on_regression"`
	Gates            []gate.Gate   `json:"gates"`
	Summaries        []SummaryView `json:"summaries"`
}

type Result struct {
	Allow      bool     `json:"allow"`
	Violations []string `json:"violations"`
}

func BuildInput(policy gate.Policy, summaries []types.Summary) Input {
	views := make([]SummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, SummaryView{
			EvalSuiteID:        s.EvalSuiteID,
			Metrics:            s.Metrics,
			Confusion:          s.Confusion,
			RegressionDetected: s.RegressionDetected,
		})
	}
	gates := policy.Gates
	if gates == nil {
		gates = []gate.Gate{}
	}
	return Input{
		FailOnRegression: policy.FailOnRegression,
		Gates:            gates,
		Summaries:        views,
	}
}

func Evaluate(ctx context.Context, policyPath string, input Input) (Result, error) {
	raw, err := os.ReadFile(policyPath)
	if err != nil {
		return Result{}, fmt.Errorf("read rego policy: %w", err)
	}

	prepared, err := oparego.New(
		oparego.Query(query),
		oparego.Module(filepath.Base(policyPath), string(raw)),
		oparego.Input(input),
	).PrepareForEval(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("prepare rego query: %w", err)
	}

	rs, err := prepared.Eval(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("eval rego policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Result{}, fmt.Errorf("rego policy returned no result")
	}
	return decodeResult(rs[0].Expressions[0].Value)
}

func decodeResult(v any) (Result, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("rego result must be object")
	}
	allow, _ := obj["allow"].(bool)
	violations := []string{}
	if raw, ok := obj["violations"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok && s != "" {
				violations = append(violations, s)
			}
		}
	}
	sort.Strings(violations)
	return Result{Allow: allow, Violations: violations}, nil
}
