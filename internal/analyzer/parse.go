package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/schema"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

var ErrNoJSON = errors.New("model reply contains no JSON object")

// ParseResult extracts the analysis object from a model reply. Markdown
// code fences and surrounding prose are ignored.
func ParseResult(reply string) (types.AnalysisResult, error) {
	raw, err := extractObject(reply)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	errs, err := schema.ValidateJSON(schema.AnalysisResult, raw)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	if len(errs) > 0 {
		return types.AnalysisResult{}, fmt.Errorf("analysis reply invalid: %s", strings.Join(errs, "; "))
	}
	var wire analysisReply
	if err := json.Unmarshal(raw, &wire); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("decode analysis reply: %w", err)
	}
	return wire.result(), nil
}

// Numbers decode as floats since the schema's integer type admits 85.0,
// which an int field rejects.
type analysisReply struct {
	HasIssues        bool         `json:"has_issues"`
	Issues           []issueReply `json:"issues"`
	CodeQualityScore float64      `json:"code_quality_score"`
	SecurityScore    float64      `json:"security_score"`
	PerformanceScore float64      `json:"performance_score"`
}

type issueReply struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	LineNumber  float64 `json:"line_number"`
	Suggestion  string  `json:"suggestion"`
	Confidence  float64 `json:"confidence"`
}

func (r analysisReply) result() types.AnalysisResult {
	res := types.AnalysisResult{
		HasIssues:        r.HasIssues,
		Issues:           make([]types.Issue, 0, len(r.Issues)),
		CodeQualityScore: round(r.CodeQualityScore),
		SecurityScore:    round(r.SecurityScore),
		PerformanceScore: round(r.PerformanceScore),
	}
	for _, is := range r.Issues {
		res.Issues = append(res.Issues, types.Issue{
			Type:        is.Type,
			Description: is.Description,
			Severity:    is.Severity,
			LineNumber:  round(is.LineNumber),
			Suggestion:  is.Suggestion,
			Confidence:  round(is.Confidence),
		})
	}
	return res
}

func round(f float64) int { return int(math.Round(f)) }

func extractObject(reply string) ([]byte, error) {
	s := strings.TrimSpace(reply)
	if i := strings.Index(s, "```"); i >= 0 {
		body := s[i+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		s = strings.TrimSpace(body)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}
	return []byte(s[start : end+1]), nil
}
