// Package jsonio provides the JSON file and output-directory helpers shared
// by the pipeline commands.
package jsonio

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yanirs/rls-data/internal/errs"
)

// WriteJSON marshals v with two-space indentation and writes it to path.
// desc is a short human description used for logging.
func WriteJSON(path string, v any, desc string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "jsonio: marshal %s", desc)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "jsonio: write %s", path)
	}
	zap.L().Info("wrote json",
		zap.String("desc", desc),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// LoadJSON reads the file at path and unmarshals it into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "jsonio: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "jsonio: parse %s", path)
	}
	return nil
}

// VerifyEmptyDir ensures path is an empty directory, creating it (and any
// parents) when missing. A non-empty directory fails with the state error:
// reusing a partially written output tree must be visible, not silent.
func VerifyEmptyDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return eris.Wrapf(err, "jsonio: create dir %s", path)
		}
		return nil
	case err != nil:
		return eris.Wrapf(err, "jsonio: stat %s", path)
	case !info.IsDir():
		return eris.Wrapf(errs.ErrState, "%s exists and is not a directory", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return eris.Wrapf(err, "jsonio: read dir %s", path)
	}
	if len(entries) > 0 {
		return eris.Wrapf(errs.ErrState, "%s contains %d entries", path, len(entries))
	}
	return nil
}
