package schema

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const (
	Records        = "records"
	AnalysisResult = "analysis_result"
)

//go:embed schemas/*.schema.json
var builtin embed.FS

// Validate checks doc against the schema file at schemaPath.
func Validate(schemaPath string, doc any) ([]string, error) {
	return validate(schemaPath, gojsonschema.NewReferenceLoader("file://"+schemaPath), gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks a raw JSON document against one of the embedded schemas.
func ValidateJSON(name string, raw []byte) ([]string, error) {
	schemaRaw, err := builtin.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return validate(name, gojsonschema.NewBytesLoader(schemaRaw), gojsonschema.NewBytesLoader(raw))
}

func validate(label string, schemaLoader, docLoader gojsonschema.JSONLoader) ([]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", label, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
