// pattern: Functional Core
package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestApp_PrintHelp_ShowsGroupedCommands(t *testing.T) {
	app := NewApp("1.0.0")
	app.AddGroup("tab", "Manage workspace tabs")
	app.AddGroup("pane", "Manage workspace panes")

	var buf bytes.Buffer
	app.PrintHelp(&buf)
	out := buf.String()

	for _, want := range []string{"Command Groups (requires running instance)", "tab", "pane"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestApp_Execute_NoArgsLaunchesTUI(t *testing.T) {
	if !NewApp("1.0.0").Execute(nil) {
		t.Error("Execute(nil) = false, want true")
	}
}

func TestApp_Execute_TopLevelCommand(t *testing.T) {
	app := NewApp("1.0.0")
	called := false
	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version",
		Run: func(args []string) error {
			called = true
			return nil
		},
	})

	if app.Execute([]string{"version"}) {
		t.Error("Execute = true, want false after running a command")
	}
	if !called {
		t.Error("command Run was not called")
	}
}

func TestApp_Execute_GroupCommandGetsArgs(t *testing.T) {
	app := NewApp("1.0.0")
	group := app.AddGroup("tab", "Manage workspace tabs")

	var got []string
	group.AddCommand(&Command{
		Name:    "close",
		Summary: "Close a tab",
		Usage:   "Usage: deskmux tab close <id>",
		Run: func(args []string) error {
			got = args
			return nil
		},
	})

	if app.Execute([]string{"tab", "close", "t1"}) {
		t.Error("Execute = true, want false")
	}
	if len(got) != 1 || got[0] != "t1" {
		t.Errorf("command received args %v, want [t1]", got)
	}
}

func TestApp_Execute_GroupHelpVariants(t *testing.T) {
	app := NewApp("1.0.0")
	group := app.AddGroup("pane", "Manage workspace panes")
	group.AddCommand(&Command{
		Name:    "output",
		Summary: "Print pane output",
		Usage:   "Usage: deskmux pane output <id>",
		Run:     func(args []string) error { return nil },
	})

	for _, args := range [][]string{
		{"pane"},
		{"pane", "help"},
		{"pane", "--help"},
		{"pane", "-h"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out := captureStderr(t, func() {
				if app.Execute(args) {
					t.Error("Execute = true, want false")
				}
			})
			if !strings.Contains(out, "output") {
				t.Errorf("group help missing subcommand, got: %s", out)
			}
		})
	}
}

func TestApp_Execute_SubcommandHelpPrintsUsage(t *testing.T) {
	app := NewApp("1.0.0")
	group := app.AddGroup("tab", "Manage workspace tabs")

	ran := false
	group.AddCommand(&Command{
		Name:    "close",
		Summary: "Close a tab",
		Usage:   "Usage: deskmux tab close <tab-id>",
		Run: func(args []string) error {
			ran = true
			return nil
		},
	})

	out := captureStderr(t, func() {
		if app.Execute([]string{"tab", "close", "--help"}) {
			t.Error("Execute = true, want false")
		}
	})
	if ran {
		t.Error("Run was called, usage should have been printed instead")
	}
	if !strings.Contains(out, "Usage: deskmux tab close") {
		t.Errorf("usage output missing, got: %s", out)
	}
}
