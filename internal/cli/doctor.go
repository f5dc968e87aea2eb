// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"deskmux/internal/instance"
)

// runDoctorCommand prints a health report for the local deskmux setup:
// data directory, workspace document, and running instance.
func runDoctorCommand(dataDir string, w io.Writer) error {
	dir := ResolveDataDir(dataDir)
	fmt.Fprintf(w, "data dir:    %s\n", dir)

	if _, err := os.Stat(dir); err != nil {
		fmt.Fprintf(w, "             missing (created on first run)\n")
	}

	reportStateFile(w, "workspace:", filepath.Join(dir, "workspace.json"))
	reportStateFile(w, "legacy:", filepath.Join(dir, "sessions.json"))

	if baseURL, err := instance.Discover(dir); err == nil {
		fmt.Fprintf(w, "instance:    running at %s\n", baseURL)
	} else {
		fmt.Fprintf(w, "instance:    not running (%v)\n", err)
	}
	return nil
}

// reportStateFile prints presence, size, and JSON validity of a document.
func reportStateFile(w io.Writer, label, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "%-12s %s (absent)\n", label, filepath.Base(path))
		return
	}
	if !json.Valid(data) {
		fmt.Fprintf(w, "%-12s %s (%d bytes, INVALID JSON)\n", label, filepath.Base(path), len(data))
		return
	}
	var doc struct {
		Version int `json:"version"`
	}
	_ = json.Unmarshal(data, &doc)
	fmt.Fprintf(w, "%-12s %s (%d bytes, schema v%d)\n", label, filepath.Base(path), len(data), doc.Version)
}
