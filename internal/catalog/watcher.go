// pattern: Imperative Shell

package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"deskmux/internal/logging"
)

// DefaultWatchDebounce coalesces filesystem event bursts (a git worktree
// add touches dozens of paths) into a single rescan.
const DefaultWatchDebounce = 500 * time.Millisecond

// TopologySink receives the result of each rescan. Satisfied by
// workspace.Store.
type TopologySink interface {
	ApplyTopology(repos []Repo)
}

// Watcher rescans the configured paths whenever the filesystem under them
// changes and pushes the fresh topology into the sink.
type Watcher struct {
	scanner  *Scanner
	sink     TopologySink
	logger   *logging.ScopedLogger
	paths    []string
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	watched map[string]bool
	closed  bool
}

// NewWatcher creates a watcher over the given scan paths. Call Run to
// start it.
func NewWatcher(scanner *Scanner, sink TopologySink, provider logging.LoggerProvider, paths []string) *Watcher {
	return &Watcher{
		scanner:  scanner,
		sink:     sink,
		logger:   provider.For("catalog"),
		paths:    paths,
		debounce: DefaultWatchDebounce,
		watched:  make(map[string]bool),
	}
}

// Run performs an initial scan, then blocks consuming filesystem events
// until ctx is cancelled. Each settled burst of events triggers a rescan.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()
	defer fsw.Close()

	w.Rescan()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.closed = true
			w.mu.Unlock()
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.Rescan)
}

// Rescan runs the scanner now and applies the result. The watch set
// follows the scan: repo roots appear and disappear as repos do.
func (w *Watcher) Rescan() {
	repos := w.scanner.ScanAll(w.paths)
	w.sink.ApplyTopology(repos)

	wanted := make(map[string]bool, len(w.paths)+len(repos))
	for _, p := range w.paths {
		wanted[p] = true
	}
	for _, r := range repos {
		wanted[r.Root] = true
	}
	w.syncWatches(wanted)

	w.logger.Debug("topology applied", "repos", len(repos))
}

func (w *Watcher) syncWatches(wanted map[string]bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil || w.closed {
		return
	}
	for path := range wanted {
		if w.watched[path] {
			continue
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watch failed", "path", path, "error", err)
			continue
		}
		w.watched[path] = true
	}
	for path := range w.watched {
		if wanted[path] {
			continue
		}
		_ = w.fsw.Remove(path)
		delete(w.watched, path)
	}
}
