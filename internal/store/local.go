package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/hash"
)

const DefaultDir = ".bugdetect/evaluations"

// ArchiveSummary copies a summary into dir under a name derived from its
// content digest, so archiving the same summary twice keeps one file.
func ArchiveSummary(srcPath, dir string) (string, error) {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	digest := strings.TrimPrefix(hash.DigestBytes(raw), "sha256:")
	dst := filepath.Join(dir, "summary_archived_"+digest[:16]+".json")
	if hash.FileExists(dst) {
		return dst, nil
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return "", fmt.Errorf("write archived summary: %w", err)
	}
	return dst, nil
}

func EnsureDefaultDir() (string, error) {
	if err := os.MkdirAll(DefaultDir, 0o755); err != nil {
		return "", fmt.Errorf("create local store: %w", err)
	}
	return DefaultDir, nil
}
