package analyzer

import (
	"context"
	"fmt"
)

// SuggestFix asks the model how to fix issue in code. Failures are reported
// in the returned text.
func SuggestFix(ctx context.Context, gen Generator, code, issue string) string {
	prompt, err := renderPrompt(suggestTmpl, map[string]string{"Issue": issue, "Code": code})
	if err == nil {
		var reply string
		if reply, err = gen.Generate(ctx, prompt, false); err == nil {
			return reply
		}
	}
	return fmt.Sprintf("Error suggesting fix: %v", err)
}

func ExplainFix(ctx context.Context, gen Generator, buggy, fixed string) string {
	prompt, err := renderPrompt(explainTmpl, map[string]string{"Buggy": buggy, "Fixed": fixed})
	if err == nil {
		var reply string
		if reply, err = gen.Generate(ctx, prompt, false); err == nil {
			return reply
		}
	}
	return fmt.Sprintf("Error getting explanation: %v", err)
}
