package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateJSON_Records(t *testing.T) {
	errs, err := ValidateJSON(Records, []byte(`[{"has_issues":true,"confidence":85},{"has_issues":null},{}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Fatalf("records should pass: %v", errs)
	}
}

func TestValidateJSON_RecordsWrongType(t *testing.T) {
	errs, err := ValidateJSON(Records, []byte(`[{"has_issues":"yes"}]`))
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if len(errs) == 0 {
		t.Fatal("expected schema violations for string has_issues")
	}
}

func TestValidateJSON_AnalysisResult(t *testing.T) {
	doc := `{
		"has_issues": true,
		"issues": [{"type": "Logic Error", "description": "d", "severity": "high", "line_number": 5, "suggestion": "s", "confidence": 85}],
		"code_quality_score": 70,
		"security_score": 65,
		"performance_score": 80
	}`
	errs, err := ValidateJSON(AnalysisResult, []byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Fatalf("analysis result should pass: %v", errs)
	}
}

func TestValidateJSON_AnalysisResultBadSeverity(t *testing.T) {
	doc := `{"has_issues": true, "issues": [{"type": "x", "description": "d", "severity": "urgent"}]}`
	errs, err := ValidateJSON(AnalysisResult, []byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) == 0 {
		t.Fatal("expected severity violation")
	}
}

func TestValidateJSON_UnknownSchema(t *testing.T) {
	_, err := ValidateJSON("nope", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for unknown schema")
	}
	if !strings.Contains(err.Error(), "unknown schema") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFileSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.schema.json")
	if err := os.WriteFile(path, []byte(`{"type":"object","required":["name"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	errs, err := Validate(path, map[string]any{"other": 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) == 0 {
		t.Fatal("expected missing-property violation")
	}
}

func TestValidateMissingSchemaFile(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "missing.schema.json"), map[string]any{})
	if err == nil {
		t.Fatal("expected schema loader error")
	}
	if !strings.Contains(err.Error(), "validate") {
		t.Fatalf("unexpected error: %v", err)
	}
}
