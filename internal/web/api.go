// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"deskmux/internal/action"
	"deskmux/internal/events"
	"deskmux/internal/persist"
	"deskmux/internal/workspace"
)

// TabResponse is the JSON summary of a tab.
type TabResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Active            bool     `json:"active"`
	PaneCount         int      `json:"pane_count"`
	VisiblePaneIDs    []string `json:"visible_pane_ids"`
	ActiveArrangement string   `json:"active_arrangement"`
	ArrangementCount  int      `json:"arrangement_count"`
}

// OpenTabRequest is the JSON body for opening a tab.
type OpenTabRequest struct {
	Name       string `json:"name"`
	Command    string `json:"command"`
	WorkingDir string `json:"working_dir"`
}

func tabResponse(t *workspace.Tab, active bool) TabResponse {
	arr := t.ActiveArrangement()
	resp := TabResponse{
		ID:               t.ID,
		Name:             t.Name,
		Active:           active,
		PaneCount:        len(t.PaneSet()),
		ArrangementCount: len(t.Arrangements),
	}
	if arr != nil {
		resp.ActiveArrangement = arr.Name
		resp.VisiblePaneIDs = arr.VisiblePaneIDs()
	}
	return resp
}

// handleState handles GET /api/state. Returns the full workspace document
// in the on-disk schema.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.store.Snapshot()
	data, err := persist.Marshal(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode workspace")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleListTabs handles GET /api/tabs.
func (s *Server) handleListTabs(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.store.Snapshot()
	result := make([]TabResponse, 0, len(snap.Tabs))
	for _, t := range snap.Tabs {
		result = append(result, tabResponse(t, t.ID == snap.ActiveTabID))
	}
	writeJSON(w, http.StatusOK, result)
}

// handleOpenTab handles POST /api/tabs. Opens a tab holding a single
// terminal pane.
func (s *Server) handleOpenTab(w http.ResponseWriter, r *http.Request) {
	var req OpenTabRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	a := action.Action{
		Kind:       action.OpenTab,
		Name:       req.Name,
		WorkingDir: req.WorkingDir,
		Content: workspace.Content{
			Kind:     workspace.ContentTerminal,
			Terminal: &workspace.TerminalContent{Command: req.Command},
		},
	}
	if !s.dispatch(w, r, a) {
		return
	}

	// The new tab is appended last and made active.
	snap, _ := s.store.Snapshot()
	if len(snap.Tabs) == 0 {
		writeError(w, http.StatusInternalServerError, "tab not created")
		return
	}
	t := snap.Tabs[len(snap.Tabs)-1]
	writeJSON(w, http.StatusCreated, tabResponse(t, t.ID == snap.ActiveTabID))
}

// handleCloseTab handles DELETE /api/tabs/{id}. The close is undoable.
func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	a := action.Action{Kind: action.CloseTab, TabID: r.PathValue("id")}
	if !s.dispatch(w, r, a) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// handleActivateTab handles POST /api/tabs/{id}/activate.
func (s *Server) handleActivateTab(w http.ResponseWriter, r *http.Request) {
	a := action.Action{Kind: action.SelectTab, TabID: r.PathValue("id")}
	if !s.dispatch(w, r, a) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// handleClosePane handles DELETE /api/panes/{id}. The close is undoable.
func (s *Server) handleClosePane(w http.ResponseWriter, r *http.Request) {
	paneID := r.PathValue("id")
	tabID, ok := s.tabForPane(paneID)
	if !ok {
		writeError(w, http.StatusNotFound, "pane not found")
		return
	}
	a := action.Action{Kind: action.ClosePane, TabID: tabID, PaneID: paneID}
	if !s.dispatch(w, r, a) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// handleFocusPane handles POST /api/panes/{id}/focus.
func (s *Server) handleFocusPane(w http.ResponseWriter, r *http.Request) {
	paneID := r.PathValue("id")
	tabID, ok := s.tabForPane(paneID)
	if !ok {
		writeError(w, http.StatusNotFound, "pane not found")
		return
	}
	a := action.Action{Kind: action.FocusPane, TabID: tabID, PaneID: paneID}
	if !s.dispatch(w, r, a) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "focused"})
}

// handleUndo handles POST /api/undo.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if !s.dispatch(w, r, action.Action{Kind: action.Undo}) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"undo_depth": s.exec.UndoDepth()})
}

// handleFlush handles POST /api/flush.
func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if s.flusher == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	if err := s.flusher.Flush(); err != nil {
		writeError(w, http.StatusInternalServerError, "save failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleRepos handles GET /api/repos.
func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.store.Snapshot()
	writeJSON(w, http.StatusOK, snap.Repos)
}

// handlePaneOutput handles GET /api/panes/{id}/output.
// Returns the pane's recent terminal output as plain text with ANSI
// sequences stripped. ?lines=N limits to the last N lines.
func (s *Server) handlePaneOutput(w http.ResponseWriter, r *http.Request) {
	paneID := r.PathValue("id")

	handle, ok := s.exec.Resource(paneID)
	if !ok {
		writeError(w, http.StatusNotFound, "pane has no live surface")
		return
	}
	buf, ok := s.terms.Output(handle.ResourceID)
	if !ok {
		writeError(w, http.StatusNotFound, "surface has no captured output")
		return
	}

	text := ansi.Strip(string(buf.Bytes()))
	if v := r.URL.Query().Get("lines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "lines must be a non-negative integer")
			return
		}
		text = lastLines(text, n)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// lastLines returns the trailing n lines of text.
func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// tabForPane finds the tab whose pane set includes paneID.
func (s *Server) tabForPane(paneID string) (string, bool) {
	snap, _ := s.store.Snapshot()
	for _, t := range snap.Tabs {
		if t.Contains(paneID) {
			return t.ID, true
		}
	}
	return "", false
}

// dispatch executes the action and writes an error response on failure.
// Returns true when the action succeeded.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a action.Action) bool {
	if err := s.exec.Execute(r.Context(), a); err != nil {
		var rej *action.Rejection
		if errors.As(err, &rej) {
			writeError(w, rejectionStatus(rej), rej.Detail)
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return false
	}
	if s.notifyTUI != nil {
		s.notifyTUI(events.WebStateChangedMsg{Version: s.store.Version()})
	}
	return true
}

// rejectionStatus maps a resolver rejection to an HTTP status.
func rejectionStatus(rej *action.Rejection) int {
	switch rej.Reason {
	case action.ReasonStaleID:
		return http.StatusNotFound
	case action.ReasonNotPermitted:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
