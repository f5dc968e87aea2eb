// pattern: Imperative Shell

package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"deskmux/internal/workspace"
)

// ResizeMessage is sent from the browser when the terminal viewport changes.
type ResizeMessage struct {
	Type string `json:"type"` // "resize"
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

// HandleTerminal upgrades to websocket and bridges a pane's terminal
// surface: captured output streams down, keystrokes and resizes go up.
func (s *Server) HandleTerminal(w http.ResponseWriter, r *http.Request) {
	paneID := r.PathValue("id")

	handle, ok := s.exec.Resource(paneID)
	if !ok {
		http.Error(w, "pane has no live surface", http.StatusNotFound)
		return
	}
	if handle.Kind != workspace.ContentTerminal {
		http.Error(w, "pane is not a terminal", http.StatusBadRequest)
		return
	}
	buf, ok := s.terms.Output(handle.ResourceID)
	if !ok {
		http.Error(w, "surface has no captured output", http.StatusNotFound)
		return
	}

	// Upgrade to websocket — IMPORTANT: do NOT use r.Context() after this.
	// Restrict to localhost origins to prevent cross-origin WebSocket attacks.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(1 << 20) // 1 MB read limit

	s.logger.Info("terminal connected", "pane", paneID, "resource", handle.ResourceID)

	ctx := context.Background()

	// Replay the captured scrollback, then stream live chunks.
	chunks, cancel := buf.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if backlog := buf.Bytes(); len(backlog) > 0 {
			if err := conn.Write(ctx, websocket.MessageBinary, backlog); err != nil {
				return
			}
		}
		for chunk := range chunks {
			if err := conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
				return
			}
		}
	}()

	// WebSocket → surface input (binary = keystrokes, text = control messages)
	go func() {
		for {
			msgType, data, err := conn.Read(ctx)
			if err != nil {
				// Websocket closed. Drop the output subscription to stop
				// the writer goroutine.
				cancel()
				return
			}
			if msgType == websocket.MessageText {
				var msg ResizeMessage
				if json.Unmarshal(data, &msg) == nil && msg.Type == "resize" {
					_ = s.terms.ResizeTerminal(handle.ResourceID, msg.Rows, msg.Cols)
					continue
				}
			}
			// Input errors are non-fatal (the process may have exited).
			_ = s.terms.Input(handle.ResourceID, data)
		}
	}()

	// Block until the output goroutine exits (connection or surface gone).
	<-done

	s.logger.Info("terminal disconnected", "pane", paneID, "resource", handle.ResourceID)

	_ = conn.Close(websocket.StatusNormalClosure, "terminal closed")
}
