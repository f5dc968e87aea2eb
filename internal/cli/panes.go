// pattern: Imperative Shell
package cli

import (
	"fmt"
	"os"
	"strconv"

	"deskmux/internal/instance"
)

// RegisterPaneCommands adds pane subcommands to the group.
func RegisterPaneCommands(g *Group, dataDir string) {
	g.AddCommand(&Command{
		Name:             "close",
		Summary:          "Close a pane (undoable)",
		Usage:            "Usage: deskmux pane close <pane-id>",
		RequiresInstance: true,
		Run: func(args []string) error {
			if len(args) != 1 {
				fmt.Fprintln(os.Stderr, "Usage: deskmux pane close <pane-id>")
				os.Exit(1)
			}
			return runPaneClose(dataDir, instance.Discover, args[0])
		},
	})

	g.AddCommand(&Command{
		Name:             "output",
		Summary:          "Print a pane's recent terminal output",
		Usage:            "Usage: deskmux pane output <pane-id> [--lines N]",
		RequiresInstance: true,
		Run: func(args []string) error {
			paneID, lines, err := parseOutputArgs(args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return runPaneOutput(dataDir, instance.Discover, paneID, lines)
		},
	})
}

// parseOutputArgs extracts the pane id and optional --lines value.
func parseOutputArgs(args []string) (paneID string, lines int, err error) {
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--lines":
			if i+1 >= len(args) {
				return "", 0, fmt.Errorf("--lines requires a value")
			}
			i++
			lines, err = strconv.Atoi(args[i])
			if err != nil || lines < 0 {
				return "", 0, fmt.Errorf("--lines must be a non-negative integer")
			}
		case paneID == "":
			paneID = args[i]
		default:
			return "", 0, fmt.Errorf("unexpected argument %q", args[i])
		}
	}
	if paneID == "" {
		return "", 0, fmt.Errorf("pane id is required")
	}
	return paneID, lines, nil
}

func runPaneClose(dataDir string, discoverer discoverFunc, id string) error {
	client := connect(dataDir, discoverer)
	if _, err := client.ClosePane(id); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("closed pane %s (deskmux undo to restore)\n", id)
	return nil
}

func runPaneOutput(dataDir string, discoverer discoverFunc, paneID string, lines int) error {
	client := connect(dataDir, discoverer)
	data, err := client.PaneOutput(paneID, lines)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(data)
	return nil
}
