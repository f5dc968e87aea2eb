// pattern: Imperative Shell

package persist

import (
	"sync"
	"time"

	"deskmux/internal/logging"
	"deskmux/internal/workspace"
)

// DefaultDebounce is the quiescence window between the last mutation and
// the coalesced disk write.
const DefaultDebounce = 400 * time.Millisecond

// Guard delays host termination while a write is pending. Acquire returns
// a release func; implementations are OS-specific, the default is a no-op.
type Guard interface {
	Acquire(reason string) (release func())
}

type nopGuard struct{}

func (nopGuard) Acquire(string) func() { return func() {} }

// Writer persists the store with a dirty-flag debounce: bursts of
// mutations coalesce into one write after the quiescence window. Flush
// cancels the pending debounce and writes synchronously; it is the
// pre-termination path.
type Writer struct {
	path     string
	store    *workspace.Store
	logger   *logging.ScopedLogger
	debounce time.Duration
	guard    Guard

	mu       sync.Mutex
	timer    *time.Timer
	release  func()
	closed   bool
	saveFunc func(path string, st *workspace.State) error
}

// NewWriter wires a debounced writer to the store's change feed. Callers
// must Close it before exit.
func NewWriter(path string, store *workspace.Store, logger *logging.ScopedLogger, debounce time.Duration, guard Guard) *Writer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if guard == nil {
		guard = nopGuard{}
	}
	w := &Writer{
		path:     path,
		store:    store,
		logger:   logger,
		debounce: debounce,
		guard:    guard,
		saveFunc: Save,
	}
	store.OnChange(w.schedule)
	return w
}

// schedule (re)arms the debounce timer. While the store is dirty a
// termination guard is held so the process is not killed with unsaved
// state.
func (w *Writer) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.release == nil {
		w.release = w.guard.Acquire("saving workspace")
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushAsync)
}

func (w *Writer) flushAsync() {
	if err := w.Flush(); err != nil {
		// Store stays dirty; the next mutation re-arms the debounce and
		// the write is retried.
		w.logger.Error("workspace save failed", "path", w.path, "error", err)
	}
}

// Flush cancels any pending debounce and writes the current state now.
// A clean store is a no-op.
func (w *Writer) Flush() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if !w.store.Dirty() {
		w.releaseGuard()
		return nil
	}

	st, version := w.store.Snapshot()
	if err := w.saveFunc(w.path, st); err != nil {
		return err
	}
	w.store.MarkClean(version)
	w.logger.Debug("workspace saved", "path", w.path, "version", version)
	if !w.store.Dirty() {
		w.releaseGuard()
	}
	return nil
}

func (w *Writer) releaseGuard() {
	w.mu.Lock()
	release := w.release
	w.release = nil
	w.mu.Unlock()
	if release != nil {
		release()
	}
}

// Close flushes pending state and stops the writer for good.
func (w *Writer) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.Flush()
	w.releaseGuard()
	return err
}
