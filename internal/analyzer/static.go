package analyzer

import (
	"context"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

// StaticAnalyzer returns the same single-issue report for every snippet.
// It backs offline mode.
type StaticAnalyzer struct{}

func (StaticAnalyzer) Analyze(_ context.Context, code, _ string) (types.AnalysisResult, error) {
	if strings.TrimSpace(code) == "" {
		return types.AnalysisResult{}, ErrEmptyCode
	}
	return StaticResult(), nil
}

func StaticResult() types.AnalysisResult {
	return types.AnalysisResult{
		HasIssues: true,
		Issues: []types.Issue{{
			Type:        "Logic Error",
			Description: "Potential null pointer exception",
			Severity:    types.SeverityHigh,
			LineNumber:  5,
			Suggestion:  "Add null check before accessing object",
			Confidence:  85,
		}},
		CodeQualityScore: 70,
		SecurityScore:    65,
		PerformanceScore: 80,
	}
}
