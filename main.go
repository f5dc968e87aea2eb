// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"deskmux/internal/catalog"
	"deskmux/internal/cli"
	"deskmux/internal/config"
	"deskmux/internal/coordinator"
	"deskmux/internal/events"
	"deskmux/internal/instance"
	"deskmux/internal/logging"
	"deskmux/internal/persist"
	"deskmux/internal/surface"
	"deskmux/internal/tui"
	"deskmux/internal/web"
	"deskmux/internal/workspace"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	dataDir := flag.StringP("data-dir", "d", "", "data directory (default: ~/.local/share/deskmux)")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *dataDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *dataDir)

	if app.Execute(flag.Args()) {
		runTUI(*dataDir)
	}
}

// loadWorkspace restores the persisted workspace document, falling back
// to the legacy sessions file and then to an empty workspace, and repairs
// whatever it finds before anything else sees it.
func loadWorkspace(cfg *config.Config, logManager logging.LoggerProvider) *workspace.Store {
	state := persist.Load([]string{cfg.StatePath(), cfg.LegacyStatePath()}, logManager.For("persist"))
	store := workspace.New(state, logManager)
	store.Repair()
	return store
}

// runTUI launches the interactive TUI with the full engine behind it.
func runTUI(dataDirFlag string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Acquire single-instance lock
	fl, err := instance.Lock(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer instance.Cleanup(cfg.DataDir, fl)

	logManager, err := logging.NewManager(logging.Config{
		FilePath:       cfg.LogPath(),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("deskmux starting", "dataDir", cfg.DataDir)

	store := loadWorkspace(&cfg, logManager)

	host := surface.NewHost(logManager.For("surface"))
	defer host.Shutdown()

	registry := surface.NewRegistry()
	exec := coordinator.New(store, host, registry, logManager.For("coordinator"), cfg.UndoLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recreate surfaces for every pane the document says should be live.
	exec.AttachAll(ctx)

	writer := persist.NewWriter(cfg.StatePath(), store, logManager.For("persist"), time.Duration(cfg.SaveDebounce), nil)
	defer func() { _ = writer.Close() }()

	model := tui.NewModel(&cfg, store, exec, registry, logManager, logManager.Entries())
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Repo catalog: initial scan plus fsnotify-driven rescans.
	if len(cfg.ScanPaths) > 0 {
		watcher := catalog.NewWatcher(catalog.NewScanner(), store, logManager, cfg.ScanPaths)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				appLogger.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	// Web server always starts (ephemeral port if not configured)
	webServer := web.New(
		web.Config{Bind: cfg.Web.Bind, Port: cfg.Web.Port},
		store,
		exec,
		host,
		writer,
		func(msg any) { p.Send(msg) },
		logManager,
	)
	ln, err := webServer.Listen()
	if err != nil {
		appLogger.Error("web server listen error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Write port file for CLI discovery
	if err := instance.WritePort(cfg.DataDir, webServer.Addr()); err != nil {
		appLogger.Error("failed to write port file", "error", err)
	}

	webURL := fmt.Sprintf("http://%s", webServer.Addr())
	go func() {
		p.Send(events.WebListenURLMsg{URL: webURL})
	}()

	go func() {
		if err := webServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			appLogger.Error("web server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("web server shutdown error", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	// Last synchronous write before teardown.
	if err := writer.Flush(); err != nil {
		appLogger.Error("final flush failed", "error", err)
	}

	appLogger.Info("deskmux stopped")
}
