package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/metrics"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

func BuildMarkdown(s types.Summary) string {
	status := "PASS"
	if s.RegressionDetected {
		status = "FAIL"
	}
	var b strings.Builder
	b.WriteString("# Bug Detection Evaluation Report\n\n")
	b.WriteString(fmt.Sprintf("- Status: **%s**\n", status))
	b.WriteString(fmt.Sprintf("- Suite: `%s`\n", escape(s.EvalSuiteID)))
	b.WriteString(fmt.Sprintf("- Summary ID: `%s`\n", s.SummaryID))
	b.WriteString(fmt.Sprintf("- Generated At: `%s`\n", s.GeneratedAt))
	b.WriteString(fmt.Sprintf("- Records: `%d` predicted, `%d` actual\n\n", s.PredictionCount, s.ActualCount))

	b.WriteString("## Metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---:|\n")
	b.WriteString(fmt.Sprintf("| Accuracy | %s |\n", metrics.Percent(s.Metrics.Accuracy)))
	b.WriteString(fmt.Sprintf("| Precision | %s |\n", metrics.Percent(s.Metrics.Precision)))
	b.WriteString(fmt.Sprintf("| Recall | %s |\n", metrics.Percent(s.Metrics.Recall)))
	b.WriteString(fmt.Sprintf("| F1 Score | %s |\n", metrics.Percent(s.Metrics.F1Score)))

	b.WriteString("\n## Confusion Matrix\n\n")
	b.WriteString("| | Actual issues | Actual clean |\n")
	b.WriteString("|---|---:|---:|\n")
	b.WriteString(fmt.Sprintf("| Predicted issues | %d | %d |\n", s.Confusion.TruePositives, s.Confusion.FalsePositives))
	b.WriteString(fmt.Sprintf("| Predicted clean | %d | %d |\n", s.Confusion.FalseNegatives, s.Confusion.TrueNegatives))

	if len(s.Thresholds) > 0 {
		keys := make([]string, 0, len(s.Thresholds))
		for k := range s.Thresholds {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n## Thresholds\n\n")
		b.WriteString("| Threshold | Value |\n")
		b.WriteString("|---|---:|\n")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("| %s | %s |\n", escape(k), metrics.Percent(s.Thresholds[k])))
		}
	}

	if len(s.Violations) > 0 {
		b.WriteString("\n## Violations\n\n")
		for _, v := range s.Violations {
			b.WriteString("- " + v + "\n")
		}
	}
	return b.String()
}

func WriteMarkdown(path string, s types.Summary) error {
	return os.WriteFile(path, []byte(BuildMarkdown(s)), 0o644)
}

// WriteText writes the plain console report for the summary's metrics.
func WriteText(path string, s types.Summary) error {
	return os.WriteFile(path, []byte(metrics.Report(s.Metrics)), 0o644)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
