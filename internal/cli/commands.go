// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"deskmux/internal/config"
	"deskmux/internal/instance"
)

// discoverFunc matches instance.Discover, injected for tests.
type discoverFunc func(dataDir string) (string, error)

// ResolveDataDir returns the data directory for lock/port/state files.
// If dataDir is specified (from config or flag), uses that; otherwise the
// default data dir.
func ResolveDataDir(dataDir string) string {
	if dataDir != "" {
		return dataDir
	}
	return config.DefaultConfig().DataDir
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, dataDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "undo",
		Summary: "Reopen the most recently closed pane or tab",
		Usage:   "Usage: deskmux undo",
		Run: func(args []string) error {
			return runUndoCommand(dataDir, instance.Discover)
		},
	})

	app.AddCommand(&Command{
		Name:    "flush",
		Summary: "Force an immediate workspace save",
		Usage:   "Usage: deskmux flush",
		Run: func(args []string) error {
			return runFlushCommand(dataDir, instance.Discover)
		},
	})

	app.AddCommand(&Command{
		Name:    "doctor",
		Summary: "Check instance, lock, and workspace file health",
		Usage:   "Usage: deskmux doctor",
		Run: func(args []string) error {
			return runDoctorCommand(dataDir, os.Stdout)
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed instance",
		Usage:   "Usage: deskmux cleanup",
		Run: func(args []string) error {
			return runCleanupCommand(dataDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: deskmux version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	tabGroup := app.AddGroup("tab", "Manage workspace tabs")
	RegisterTabCommands(tabGroup, dataDir)

	paneGroup := app.AddGroup("pane", "Manage workspace panes")
	RegisterPaneCommands(paneGroup, dataDir)

	return app
}

// connect discovers the running instance and returns a client for it.
// Prints the error and exits when no instance is reachable.
func connect(dataDir string, discoverer discoverFunc) *instance.Client {
	baseURL, err := discoverer(ResolveDataDir(dataDir))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return instance.NewClient(baseURL)
}

func runUndoCommand(dataDir string, discoverer discoverFunc) error {
	client := connect(dataDir, discoverer)
	data, err := client.Undo()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var resp struct {
		UndoDepth int `json:"undo_depth"`
	}
	if json.Unmarshal(data, &resp) == nil {
		fmt.Printf("restored (undo entries remaining: %d)\n", resp.UndoDepth)
	}
	return nil
}

func runFlushCommand(dataDir string, discoverer discoverFunc) error {
	client := connect(dataDir, discoverer)
	if _, err := client.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("workspace saved")
	return nil
}

// runCleanupCommand removes stale lock and port files from a crashed instance.
func runCleanupCommand(dataDir string) error {
	dir := ResolveDataDir(dataDir)

	// Try to acquire the lock to verify no instance is actually running
	fl, err := instance.Lock(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: a deskmux instance appears to be running. Stop it first.\n")
		os.Exit(1)
	}
	// We got the lock, so no instance is running. Clean up and release.
	instance.Cleanup(dir, fl)
	fmt.Println("Cleaned up stale lock and port files.")
	return nil
}
