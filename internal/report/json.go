package report

import (
	"encoding/json"
	"os"

	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

func WriteJSON(path string, s types.Summary) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
