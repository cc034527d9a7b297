package analyzer

import (
	"fmt"
	"strings"
	"text/template"
)

var analyzeTmpl = template.Must(template.New("analyze").Parse(`You are an expert code reviewer. Analyze the following {{.Language}} code for potential bugs,
security vulnerabilities, performance issues, and code quality problems.

Code:
{{.Code}}

Provide a detailed analysis in the following JSON format:
{
    "has_issues": true/false,
    "issues": [
        {
            "type": "bug_type",
            "description": "detailed description of the issue",
            "severity": "critical/high/medium/low",
            "line_number": line_number,
            "suggestion": "how to fix the issue",
            "confidence": 0-100
        }
    ],
    "code_quality_score": 0-100,
    "security_score": 0-100,
    "performance_score": 0-100
}

Be specific about line numbers and provide actionable suggestions.
`))

var suggestTmpl = template.Must(template.New("suggest").Parse(`The following code has an issue: {{.Issue}}

Code:
{{.Code}}

Please suggest a fix for this issue.
`))

var explainTmpl = template.Must(template.New("explain").Parse(`Explain how the fixed code addresses the issues in the buggy code.

Buggy Code:
{{.Buggy}}

Fixed Code:
{{.Fixed}}

Provide a clear explanation of what was wrong and how it was fixed.
`))

func renderPrompt(t *template.Template, data map[string]string) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
