package analyzer

import (
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

// DegradedResult is the empty report served when the model call fails.
func DegradedResult(err error) types.AnalysisResult {
	msg := err.Error()
	prefix := "Error calling Gemini API: "
	if isQuotaError(msg) {
		prefix = "API quota exceeded. Please check your billing details. "
	}
	return types.AnalysisResult{
		HasIssues: false,
		Issues:    []types.Issue{},
		Error:     prefix + msg,
	}
}

func emptyCodeResult() types.AnalysisResult {
	return types.AnalysisResult{
		HasIssues: false,
		Issues:    []types.Issue{},
		Error:     "No code provided",
	}
}

func isQuotaError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "429") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit")
}
