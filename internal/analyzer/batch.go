package analyzer

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

// BatchAnalyze runs a over every snippet with at most concurrency calls in
// flight. Results keep input order and carry their input index; a failed
// snippet yields a degraded result instead of stopping the batch, and a
// blank one an error result without a model call.
func BatchAnalyze(ctx context.Context, a Analyzer, codes []string, language string, concurrency int) ([]types.AnalysisResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]types.AnalysisResult, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, code := range codes {
		g.Go(func() error {
			res, err := a.Analyze(gctx, code, language)
			switch {
			case errors.Is(err, ErrEmptyCode):
				res = emptyCodeResult()
			case err != nil:
				res = DegradedResult(err)
			}
			idx := i
			res.CodeIndex = &idx
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
