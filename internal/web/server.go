// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"deskmux/internal/coordinator"
	"deskmux/internal/events"
	"deskmux/internal/logging"
	"deskmux/internal/surface"
	"deskmux/internal/workspace"
)

// terminalHost abstracts the surface host's terminal I/O for testability.
type terminalHost interface {
	Input(resourceID string, p []byte) error
	ResizeTerminal(resourceID string, rows, cols uint16) error
	Output(resourceID string) (*surface.OutputBuffer, bool)
}

// flusher forces an immediate workspace save, bypassing the debounce.
type flusher interface {
	Flush() error
}

// Server is the web server that serves the workspace API.
type Server struct {
	httpServer *http.Server
	store      *workspace.Store
	exec       *coordinator.Executor
	terms      terminalHost
	flusher    flusher
	notifyTUI  func(any)
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	broker     *events.Broker
}

// Config holds web server configuration.
type Config struct {
	Bind string
	Port int
}

// New creates a web server over the workspace store and coordinator.
// notifyTUI is called after mutations to keep the TUI in sync via p.Send().
// logProvider must implement logging.LoggerProvider (both *logging.Manager and
// *logging.TestLogManager satisfy this interface).
func New(cfg Config, store *workspace.Store, exec *coordinator.Executor, terms terminalHost, fl flusher, notifyTUI func(any), logProvider logging.LoggerProvider) *Server {
	logger := logProvider.For("web")
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	mux := http.NewServeMux()

	broker := events.NewBroker()
	store.OnChange(func() {
		broker.Publish(events.Event{Type: "state", Version: store.Version()})
	})

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:     store,
		exec:      exec,
		terms:     terms,
		flusher:   fl,
		notifyTUI: notifyTUI,
		logger:    logger,
		addr:      addr,
		broker:    broker,
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/tabs", s.handleListTabs)
	mux.HandleFunc("POST /api/tabs", s.handleOpenTab)
	mux.HandleFunc("DELETE /api/tabs/{id}", s.handleCloseTab)
	mux.HandleFunc("POST /api/tabs/{id}/activate", s.handleActivateTab)
	mux.HandleFunc("DELETE /api/panes/{id}", s.handleClosePane)
	mux.HandleFunc("POST /api/panes/{id}/focus", s.handleFocusPane)
	mux.HandleFunc("GET /api/panes/{id}/output", s.handlePaneOutput)
	mux.HandleFunc("GET /api/panes/{id}/terminal", s.HandleTerminal)
	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("POST /api/flush", s.handleFlush)
	mux.HandleFunc("GET /api/repos", s.handleRepos)

	return s
}

// Listen binds the server to its configured address and returns the listener.
// Call Serve() after Listen() to start accepting connections.
// This two-step approach allows callers to obtain the actual bound address
// (useful for ephemeral port 0 in tests) before the server blocks on Serve().
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server stops.
// Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Start is a convenience that calls Listen() then Serve(). Blocks until the server stops.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the address the server is listening on.
// Only valid after Listen() or Start() has been called.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
