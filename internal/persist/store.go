// pattern: Imperative Shell

package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"deskmux/internal/logging"
	"deskmux/internal/workspace"
)

// WriteFileAtomic writes data to path via a temp file and rename, so a
// crash mid-write never leaves a truncated document.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Save writes the state to path atomically.
func Save(path string, st *workspace.State) error {
	data, err := Marshal(st)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write workspace: %w", err)
	}
	return nil
}

// Load reads the first decodable workspace document from the candidate
// paths, trying the current schema first and the legacy sessions/views
// schema second for each. Every failure is logged and skipped; when
// nothing loads, a fresh empty workspace is returned. Load never fails.
func Load(candidates []string, logger *logging.ScopedLogger) *workspace.State {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("workspace file unreadable", "path", path, "error", err)
			}
			continue
		}

		st, warnings, err := Unmarshal(data)
		if err != nil {
			logger.Warn("current-schema decode failed, trying legacy", "path", path, "error", err)
			st, warnings, err = UnmarshalLegacy(data)
		}
		if err != nil {
			logger.Warn("workspace document skipped", "path", path, "error", err)
			continue
		}
		for _, w := range warnings {
			logger.Warn("workspace document repaired on load", "path", path, "detail", w)
		}
		logger.Info("workspace loaded", "path", path, "panes", len(st.Panes), "tabs", len(st.Tabs))
		return st
	}

	logger.Info("no workspace document found, starting empty")
	return workspace.NewState("workspace")
}
