// Package dataset gathers buggy/fixed code pairs used to exercise the
// analyzer and to build training corpora.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

type Collector struct {
	Samples []types.Sample
	log     *zap.Logger
}

func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// CollectFromGitHub returns the reference sample set for repoURL, tagged
// with language, and appends it to the collector.
func (c *Collector) CollectFromGitHub(repoURL, language string) ([]types.Sample, error) {
	if err := validateRepoURL(repoURL); err != nil {
		return nil, err
	}
	if language == "" {
		language = "python"
	}
	samples := []types.Sample{
		{
			BuggyCode: "def divide(a, b):\n    return a / b  # Potential division by zero",
			FixedCode: "def divide(a, b):\n    if b == 0:\n        raise ValueError('Cannot divide by zero')\n    return a / b",
			Language:  language,
			BugType:   "division_by_zero",
		},
		{
			BuggyCode: "def get_item(lst, index):\n    return lst[index]  # Potential index out of bounds",
			FixedCode: "def get_item(lst, index):\n    if 0 <= index < len(lst):\n        return lst[index]\n    else:\n        return None",
			Language:  language,
			BugType:   "index_out_of_bounds",
		},
	}
	c.Samples = append(c.Samples, samples...)
	c.log.Info("collected samples", zap.String("repo", repoURL), zap.Int("count", len(samples)))
	return samples, nil
}

func validateRepoURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse repo url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("repo url %q: scheme must be http or https", raw)
	}
	if !strings.EqualFold(u.Host, "github.com") && !strings.EqualFold(u.Host, "www.github.com") {
		return fmt.Errorf("repo url %q: host must be github.com", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("repo url %q: expected github.com/<owner>/<repo>", raw)
	}
	return nil
}

// LoadLocal reads a JSON array of samples. A missing or malformed file is
// logged and yields an empty set.
func (c *Collector) LoadLocal(path string) []types.Sample {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("dataset file not found", zap.String("path", path))
		} else {
			c.log.Warn("dataset file unreadable", zap.String("path", path), zap.Error(err))
		}
		return []types.Sample{}
	}
	var samples []types.Sample
	if err := json.Unmarshal(raw, &samples); err != nil {
		c.log.Warn("invalid JSON in dataset file", zap.String("path", path), zap.Error(err))
		return []types.Sample{}
	}
	if samples == nil {
		samples = []types.Sample{}
	}
	c.Samples = append(c.Samples, samples...)
	return samples
}

// Preprocess trims every line and drops blank ones.
func Preprocess(code string) string {
	lines := strings.Split(code, "\n")
	out := lines[:0]
	for _, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

// TrainingData returns the preprocessed buggy and fixed halves of every
// collected sample, index aligned.
func (c *Collector) TrainingData() (buggy, fixed []string) {
	buggy = make([]string, 0, len(c.Samples))
	fixed = make([]string, 0, len(c.Samples))
	for _, s := range c.Samples {
		buggy = append(buggy, Preprocess(s.BuggyCode))
		fixed = append(fixed, Preprocess(s.FixedCode))
	}
	return buggy, fixed
}
