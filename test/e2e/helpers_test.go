//go:build e2e

package e2e

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-containerregistry/pkg/registry"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("cannot resolve test file path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}

func regoPolicyPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(repoRoot(t), "policy", "examples", "quality-gates.rego")
}

func yamlPolicyPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(repoRoot(t), "policy", "examples", "quality-gates.yaml")
}

func startRegistry(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(registry.New())
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// writeSuite lays out an evaluation suite and returns its config path.
func writeSuite(t *testing.T, dir, suiteID, thresholds, preds, actual string) string {
	t.Helper()
	cfg := "eval_suite_id: " + suiteID + "\npredictions: predictions.json\nactual: actual.json\n" + thresholds
	for name, content := range map[string]string{
		"eval.yaml":        cfg,
		"predictions.json": preds,
		"actual.json":      actual,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "eval.yaml")
}
