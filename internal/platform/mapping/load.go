package mapping

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/titanous/json5"
)

// readJSON5 decodes path into out; a missing file reports ok=false without error.
func readJSON5(path string, out any) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json5.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func loadSoft(path, kind string, out any, logger *logging.Logger) {
	if logger == nil {
		logger = logging.Default()
	}
	ok, err := readJSON5(path, out)
	switch {
	case err != nil:
		logger.Error("mapping file unusable, continuing without "+kind, "path", path, "error", err)
	case !ok:
		logger.Warn("mapping file not found, continuing without "+kind, "path", path)
	default:
		logger.Debug("mapping file loaded", "path", path, "kind", kind)
	}
}
