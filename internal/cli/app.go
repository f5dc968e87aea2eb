// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Command is one CLI verb. RequiresInstance marks verbs that talk to a
// running daemon over the discovered port.
type Command struct {
	Name             string
	Summary          string
	Usage            string
	RequiresInstance bool
	Run              func(args []string) error
}

// Group collects related subcommands under a noun ("tab", "pane").
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App is the command table the main entry dispatches through before
// falling back to the TUI.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	version  string
}

func NewApp(version string) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
	}
}

// AddGroup registers a new command group and returns it for population.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{Name: name, Summary: summary, Commands: make(map[string]*Command)}
	a.groups[name] = g
	return g
}

// AddCommand registers a top-level command.
func (a *App) AddCommand(cmd *Command) {
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a subcommand in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// Execute dispatches args to a command. The boolean reports whether the
// caller should launch the TUI instead (no args given). Commands print
// their own errors and set exit codes themselves.
func (a *App) Execute(args []string) bool {
	if len(args) == 0 {
		return true
	}

	name := args[0]
	if cmd, ok := a.commands[name]; ok {
		_ = cmd.Run(args[1:])
		return false
	}

	group, ok := a.groups[name]
	if !ok {
		a.PrintHelp(os.Stderr)
		os.Exit(1)
		return false
	}

	if len(args) < 2 || args[1] == "help" || wantsHelp(args[1:2]) {
		group.PrintHelp(os.Stderr)
		return false
	}
	cmd, ok := group.Commands[args[1]]
	if !ok {
		group.PrintHelp(os.Stderr)
		os.Exit(1)
		return false
	}
	if wantsHelp(args[2:]) {
		fmt.Fprintf(os.Stderr, "%s\n", cmd.Usage)
		return false
	}
	_ = cmd.Run(args[2:])
	return false
}

// PrintHelp writes the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: deskmux [options] [command]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range []string{"undo", "flush", "doctor", "cleanup", "version"} {
		if cmd, ok := a.commands[name]; ok {
			fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
		}
	}
	fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Launch interactive TUI")

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups (requires running instance):\n")
		for _, name := range []string{"tab", "pane"} {
			if group, ok := a.groups[name]; ok {
				fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
			}
		}
	}

	fmt.Fprintf(w, "\nUse \"deskmux <group> help\" for group details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}

// PrintHelp writes help for one group, subcommands in sorted order.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: deskmux %s <command>\n\n", g.Name)
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range slices.Sorted(maps.Keys(g.Commands)) {
		fmt.Fprintf(w, "  %-10s %s\n", name, g.Commands[name].Summary)
	}
	fmt.Fprintf(w, "\nUse \"deskmux %s <command> --help\" for command details.\n", g.Name)
}
