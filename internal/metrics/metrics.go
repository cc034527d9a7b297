// Package metrics scores binary "has issues" predictions against labeled
// ground truth. Every function is pure; inputs are never modified.
package metrics

import (
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

// Accuracy compares the raw labels of each positional pair, so an absent
// label only matches another absent label. The denominator is the number of
// predictions, not the number of pairs compared.
func Accuracy(predictions, actual []types.Record) float64 {
	if len(predictions) == 0 || len(actual) == 0 {
		return 0.0
	}
	matches := 0
	for i := range pairs(predictions, actual) {
		if sameLabel(predictions[i].HasIssues, actual[i].HasIssues) {
			matches++
		}
	}
	return float64(matches) / float64(len(predictions))
}

// Precision reads absent labels as false.
func Precision(predictions, actual []types.Record) float64 {
	c := Confusion(predictions, actual)
	return ratio(c.TruePositives, c.TruePositives+c.FalsePositives)
}

// Recall reads absent labels as false.
func Recall(predictions, actual []types.Record) float64 {
	c := Confusion(predictions, actual)
	return ratio(c.TruePositives, c.TruePositives+c.FalseNegatives)
}

func F1Score(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * (precision * recall) / (precision + recall)
}

// Confusion counts outcome categories over the positional pairs, with absent
// labels read as false.
func Confusion(predictions, actual []types.Record) types.Confusion {
	var c types.Confusion
	for i := range pairs(predictions, actual) {
		pred, act := predictions[i].Label(), actual[i].Label()
		switch {
		case pred && act:
			c.TruePositives++
		case pred && !act:
			c.FalsePositives++
		case !pred && act:
			c.FalseNegatives++
		default:
			c.TrueNegatives++
		}
	}
	return c
}

// Evaluate computes accuracy independently of precision and recall; the two
// disagree on records whose label is absent.
func Evaluate(predictions, actual []types.Record) types.Metrics {
	precision := Precision(predictions, actual)
	recall := Recall(predictions, actual)
	return types.Metrics{
		Accuracy:  Accuracy(predictions, actual),
		Precision: precision,
		Recall:    recall,
		F1Score:   F1Score(precision, recall),
	}
}

func Report(m types.Metrics) string {
	var b strings.Builder
	b.WriteString("Bug Detection System Evaluation Report\n")
	b.WriteString("======================================\n\n")
	b.WriteString(fmt.Sprintf("Accuracy:  %s\n", Percent(m.Accuracy)))
	b.WriteString(fmt.Sprintf("Precision: %s\n", Percent(m.Precision)))
	b.WriteString(fmt.Sprintf("Recall:    %s\n", Percent(m.Recall)))
	b.WriteString(fmt.Sprintf("F1 Score:  %s\n\n", Percent(m.F1Score)))
	b.WriteString("Summary:\n")
	b.WriteString("- Accuracy measures how often the system is correct overall\n")
	b.WriteString("- Precision measures how many of the predicted bugs are actually bugs\n")
	b.WriteString("- Recall measures how many of the actual bugs were caught by the system\n")
	b.WriteString("- F1 Score is the harmonic mean of precision and recall\n")
	return b.String()
}

// Percent formats a [0,1] score as a percentage with two decimals.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// pairs is the number of positional pairs: the shorter length.
func pairs(predictions, actual []types.Record) int {
	return min(len(predictions), len(actual))
}

func sameLabel(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0.0
	}
	return float64(num) / float64(den)
}
