// Package analyzer turns code snippets into bug reports by prompting a
// hosted language model.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

var ErrEmptyCode = errors.New("no code provided")

const DefaultLanguage = "python"

type Analyzer interface {
	Analyze(ctx context.Context, code, language string) (types.AnalysisResult, error)
}

// Generator sends one prompt to a model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonOutput bool) (string, error)
}

type ModelAnalyzer struct {
	gen Generator
}

func NewModelAnalyzer(gen Generator) *ModelAnalyzer {
	return &ModelAnalyzer{gen: gen}
}

func (a *ModelAnalyzer) Analyze(ctx context.Context, code, language string) (types.AnalysisResult, error) {
	if strings.TrimSpace(code) == "" {
		return types.AnalysisResult{}, ErrEmptyCode
	}
	if language == "" {
		language = DefaultLanguage
	}
	prompt, err := renderPrompt(analyzeTmpl, map[string]string{"Language": language, "Code": code})
	if err != nil {
		return types.AnalysisResult{}, err
	}
	reply, err := a.gen.Generate(ctx, prompt, true)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("generate analysis: %w", err)
	}
	return ParseResult(reply)
}

// AnalyzeOrDegrade never fails on model errors; it folds them into the
// result's error field. ErrEmptyCode is still returned.
func AnalyzeOrDegrade(ctx context.Context, a Analyzer, code, language string) (types.AnalysisResult, error) {
	res, err := a.Analyze(ctx, code, language)
	if errors.Is(err, ErrEmptyCode) {
		return types.AnalysisResult{}, err
	}
	if err != nil {
		return DegradedResult(err), nil
	}
	return res, nil
}
