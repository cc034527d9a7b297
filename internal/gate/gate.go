// Package gate applies release-quality rules to evaluation summaries.
package gate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/evaluate"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
	goyaml "gopkg.in/yaml.v3"
)

const msgNoSummaries = "no evaluation summaries found"

type Policy struct {
	Version          string `yaml:"version" json:"version"`
	FailOnRegression bool   `yaml:"fail_on_regression" json:"fail_on_regression"`
	Gates            []Gate `yaml:"gates" json:"gates"`
}

// Gate bounds one metric. Min and Max are optional.
type Gate struct {
	ID      string   `yaml:"id" json:"id"`
	Metric  string   `yaml:"metric" json:"metric"`
	Min     *float64 `yaml:"min" json:"min,omitempty"`
	Max     *float64 `yaml:"max" json:"max,omitempty"`
	Message string   `yaml:"message" json:"message,omitempty"`
}

func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, err
	}
	var p Policy
	if err := goyaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	for _, g := range p.Gates {
		if _, ok := (types.Metrics{}).MetricValue(g.Metric); !ok {
			return Policy{}, fmt.Errorf("gate %s: unsupported metric %q", g.ID, g.Metric)
		}
	}
	return p, nil
}

// LoadSummaries reads one summary file or every summary_*.json in a directory.
func LoadSummaries(source string) ([]types.Summary, error) {
	fi, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0)
	if fi.IsDir() {
		entries, err := os.ReadDir(source)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() && strings.HasPrefix(name, "summary_") && strings.HasSuffix(name, ".json") {
				paths = append(paths, filepath.Join(source, name))
			}
		}
	} else {
		paths = append(paths, source)
	}
	sort.Strings(paths)

	out := make([]types.Summary, 0, len(paths))
	for _, p := range paths {
		s, err := evaluate.ReadSummary(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Evaluate returns a sorted list of violated gates across all summaries.
func Evaluate(policy Policy, summaries []types.Summary) []string {
	if len(summaries) == 0 {
		return []string{msgNoSummaries}
	}
	violations := make([]string, 0)
	for _, s := range summaries {
		if policy.FailOnRegression && s.RegressionDetected {
			violations = append(violations, fmt.Sprintf("suite %s: regression detected", s.EvalSuiteID))
		}
		for _, g := range policy.Gates {
			value, ok := s.Metrics.MetricValue(g.Metric)
			if !ok {
				continue
			}
			if g.Min != nil && value < *g.Min {
				violations = append(violations, describe(g, fmt.Sprintf("%s %s below minimum %s (suite %s)", g.Metric, formatFloat(value), formatFloat(*g.Min), s.EvalSuiteID)))
			}
			if g.Max != nil && value > *g.Max {
				violations = append(violations, describe(g, fmt.Sprintf("%s %s above maximum %s (suite %s)", g.Metric, formatFloat(value), formatFloat(*g.Max), s.EvalSuiteID)))
			}
		}
	}
	sort.Strings(violations)
	return violations
}

func describe(g Gate, detail string) string {
	if g.Message != "" {
		return g.ID + ": " + g.Message
	}
	return g.ID + ": " + detail
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

const DefaultPolicyYAML = `version: 1
fail_on_regression: true
gates:
  - id: Q001
    metric: f1_score
    min: 0.80
  - id: Q002
    metric: precision
    min: 0.70
    message: "Too many false alarms for release."
`
