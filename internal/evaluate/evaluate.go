package evaluate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/hash"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/metrics"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/schema"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

const (
	SchemaVersion    = "1.0.0"
	GeneratorName    = "bugdetect"
	GeneratorVersion = "0.1.0"
)

// ErrSchema marks records files that fail schema validation.
var ErrSchema = errors.New("records schema invalid")

// LoadRecords reads a JSON array of records after validating it against the
// embedded records schema, or customSchema when it is set.
func LoadRecords(path, customSchema string) ([]types.Record, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read records %s: %w", path, err)
	}
	recs, err := decodeRecords(raw, customSchema)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, raw, nil
}

func decodeRecords(raw []byte, customSchema string) ([]types.Record, error) {
	var (
		errs []string
		err  error
	)
	if customSchema != "" {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		errs, err = schema.Validate(customSchema, doc)
	} else {
		errs, err = schema.ValidateJSON(schema.Records, raw)
	}
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrSchema, errs)
	}
	var recs []types.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

// Run loads the files named by the config at configPath and scores them.
func Run(configPath string) (types.Summary, error) {
	cfg := Config{}
	if err := LoadConfig(configPath, &cfg); err != nil {
		return types.Summary{}, err
	}
	if cfg.EvalSuiteID == "" {
		return types.Summary{}, fmt.Errorf("eval_suite_id is required")
	}
	if err := unknownThresholds(cfg.Thresholds); err != nil {
		return types.Summary{}, err
	}
	cfg.Predictions = resolvePath(configPath, cfg.Predictions)
	cfg.Actual = resolvePath(configPath, cfg.Actual)
	cfg.RecordsSchema = resolvePath(configPath, cfg.RecordsSchema)
	for _, req := range []struct {
		path string
		name string
	}{{cfg.Predictions, "predictions"}, {cfg.Actual, "actual"}} {
		if err := requirePath(req.path, req.name); err != nil {
			return types.Summary{}, err
		}
	}

	preds, predRaw, err := LoadRecords(cfg.Predictions, cfg.RecordsSchema)
	if err != nil {
		return types.Summary{}, err
	}
	actual, actualRaw, err := LoadRecords(cfg.Actual, cfg.RecordsSchema)
	if err != nil {
		return types.Summary{}, err
	}

	summary := Score(cfg.EvalSuiteID, preds, actual, cfg.Thresholds)
	summary.PredictionsDigest = hash.DigestBytes(predRaw)
	summary.ActualDigest = hash.DigestBytes(actualRaw)
	return summary, nil
}

// Score builds a summary from in-memory records.
func Score(suiteID string, preds, actual []types.Record, thresholds map[string]float64) types.Summary {
	m := metrics.Evaluate(preds, actual)
	violations := CheckThresholds(m, thresholds)
	return types.Summary{
		SchemaVersion: SchemaVersion,
		SummaryID:     uuid.NewString(),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Generator: types.Generator{
			Name:    GeneratorName,
			Version: GeneratorVersion,
			GitSHA:  readGitSHA(),
		},
		EvalSuiteID:        suiteID,
		PredictionCount:    len(preds),
		ActualCount:        len(actual),
		Metrics:            m,
		Confusion:          metrics.Confusion(preds, actual),
		Thresholds:         thresholds,
		RegressionDetected: len(violations) > 0,
		Violations:         violations,
	}
}

// CheckThresholds applies <metric>_min and <metric>_max bounds and returns
// one sorted message per breached bound. Unknown metrics are skipped here and
// rejected by Run.
func CheckThresholds(m types.Metrics, thresholds map[string]float64) []string {
	var out []string
	for key, bound := range thresholds {
		metric, kind := splitThreshold(key)
		value, ok := m.MetricValue(metric)
		if !ok {
			continue
		}
		switch kind {
		case "min":
			if value < bound {
				out = append(out, fmt.Sprintf("%s %s below minimum %s", metric, metrics.Percent(value), metrics.Percent(bound)))
			}
		case "max":
			if value > bound {
				out = append(out, fmt.Sprintf("%s %s above maximum %s", metric, metrics.Percent(value), metrics.Percent(bound)))
			}
		}
	}
	sort.Strings(out)
	return out
}

func splitThreshold(key string) (metric, kind string) {
	switch {
	case strings.HasSuffix(key, "_min"):
		return strings.TrimSuffix(key, "_min"), "min"
	case strings.HasSuffix(key, "_max"):
		return strings.TrimSuffix(key, "_max"), "max"
	default:
		return key, ""
	}
}

func unknownThresholds(thresholds map[string]float64) error {
	var bad []string
	for key := range thresholds {
		metric, kind := splitThreshold(key)
		if _, ok := (types.Metrics{}).MetricValue(metric); !ok || kind == "" {
			bad = append(bad, key)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("unsupported thresholds: %s", strings.Join(bad, ", "))
}

// WriteSummary writes summary as indented JSON into dir and returns the path.
func WriteSummary(dir string, summary types.Summary) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("--out is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}
	name := fmt.Sprintf("summary_%s_%s.json", sanitize(summary.EvalSuiteID), summary.SummaryID)
	outPath := filepath.Join(dir, name)
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return outPath, nil
}

func ReadSummary(path string) (types.Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Summary{}, fmt.Errorf("read summary %s: %w", path, err)
	}
	var s types.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Summary{}, fmt.Errorf("decode summary %s: %w", path, err)
	}
	return s, nil
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(s)
}

func readGitSHA() string {
	if v := os.Getenv("GITHUB_SHA"); v != "" {
		return v
	}
	return "local"
}

func requirePath(path string, name string) error {
	if path == "" {
		return fmt.Errorf("%s path is required", name)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s path %s: %w", name, path, err)
	}
	return nil
}
