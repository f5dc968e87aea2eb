// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"deskmux/internal/instance"
)

// tabSummary mirrors the web API's tab response.
type tabSummary struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Active            bool     `json:"active"`
	PaneCount         int      `json:"pane_count"`
	VisiblePaneIDs    []string `json:"visible_pane_ids"`
	ActiveArrangement string   `json:"active_arrangement"`
	ArrangementCount  int      `json:"arrangement_count"`
}

// RegisterTabCommands adds tab subcommands to the group.
func RegisterTabCommands(g *Group, dataDir string) {
	g.AddCommand(&Command{
		Name:             "list",
		Summary:          "List tabs in the running workspace",
		Usage:            "Usage: deskmux tab list [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			return runTabList(dataDir, instance.Discover, args)
		},
	})

	g.AddCommand(&Command{
		Name:             "open",
		Summary:          "Open a new tab with a terminal pane",
		Usage:            "Usage: deskmux tab open [name]",
		RequiresInstance: true,
		Run: func(args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runTabOpen(dataDir, instance.Discover, name)
		},
	})

	g.AddCommand(&Command{
		Name:             "close",
		Summary:          "Close a tab (undoable)",
		Usage:            "Usage: deskmux tab close <tab-id>",
		RequiresInstance: true,
		Run: func(args []string) error {
			if len(args) != 1 {
				fmt.Fprintln(os.Stderr, "Usage: deskmux tab close <tab-id>")
				os.Exit(1)
			}
			return runTabClose(dataDir, instance.Discover, args[0])
		},
	})
}

func runTabList(dataDir string, discoverer discoverFunc, args []string) error {
	client := connect(dataDir, discoverer)
	data, err := client.Tabs()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, a := range args {
		if a == "--json" {
			_, _ = os.Stdout.Write(data)
			return nil
		}
	}

	var tabs []tabSummary
	if err := json.Unmarshal(data, &tabs); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: unexpected response: %v\n", err)
		os.Exit(1)
	}
	printTabTable(os.Stdout, tabs)
	return nil
}

// printTabTable renders a human-readable tab listing.
func printTabTable(w *os.File, tabs []tabSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPANES\tARRANGEMENT\tACTIVE")
	for _, t := range tabs {
		active := ""
		if t.Active {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", t.ID, t.Name, t.PaneCount, t.ActiveArrangement, active)
	}
	_ = tw.Flush()
}

func runTabOpen(dataDir string, discoverer discoverFunc, name string) error {
	client := connect(dataDir, discoverer)
	data, err := client.OpenTab(name)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var tab tabSummary
	if json.Unmarshal(data, &tab) == nil && tab.ID != "" {
		fmt.Printf("opened tab %s (%s)\n", tab.ID, tab.Name)
	}
	return nil
}

func runTabClose(dataDir string, discoverer discoverFunc, id string) error {
	client := connect(dataDir, discoverer)
	if _, err := client.CloseTab(id); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("closed tab %s (deskmux undo to restore)\n", id)
	return nil
}
