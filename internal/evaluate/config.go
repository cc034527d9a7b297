package evaluate

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes one evaluation run. Relative paths resolve against the
// config file's directory when they do not exist relative to the cwd.
type Config struct {
	EvalSuiteID   string             `yaml:"eval_suite_id"`
	Predictions   string             `yaml:"predictions"`
	Actual        string             `yaml:"actual"`
	RecordsSchema string             `yaml:"records_schema"`
	Thresholds    map[string]float64 `yaml:"thresholds"`
}

func LoadConfig(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func resolvePath(configPath, candidate string) string {
	if candidate == "" || filepath.IsAbs(candidate) {
		return candidate
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	joined := filepath.Clean(filepath.Join(filepath.Dir(configPath), candidate))
	if _, err := os.Stat(joined); err == nil {
		return joined
	}
	return candidate
}

const ExampleConfigYAML = `eval_suite_id: smoke
predictions: predictions.json
actual: actual.json
thresholds:
  accuracy_min: 0.80
  f1_score_min: 0.80
`

const ExamplePredictionsJSON = `[
  {"has_issues": true, "confidence": 85},
  {"has_issues": false, "confidence": 30},
  {"has_issues": true, "confidence": 90}
]
`

const ExampleActualJSON = `[
  {"has_issues": true},
  {"has_issues": false},
  {"has_issues": true}
]
`
