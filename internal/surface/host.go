// pattern: Imperative Shell

package surface

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"deskmux/internal/logging"
	"deskmux/internal/process"
	"deskmux/internal/workspace"
)

// retainedCap bounds how many closed sessions the host keeps warm for
// undo. The oldest retained session is destroyed when the cap is hit.
const retainedCap = 8

// proc is the slice of process.Supervisor the host needs. Tests inject a
// fake through newProcFunc.
type proc interface {
	Start(ctx context.Context) error
	Stop() error
	Write(p []byte) (int, error)
	Resize(rows, cols uint16) error
	Running() bool
	Done() <-chan struct{}
}

// session is a live (or retained) resource owned by the host. Terminal
// sessions carry a pty-backed process; the other kinds are handle-only.
type session struct {
	handle   Handle
	meta     Metadata
	content  workspace.Content
	proc     proc
	out      *OutputBuffer
	closedAt time.Time
}

// Host owns the live content resources behind panes. It implements
// Collaborator for the coordinator and exposes terminal I/O for the web
// bridge and the TUI.
type Host struct {
	logger *logging.ScopedLogger

	mu       sync.Mutex
	sessions map[string]*session
	retained []*session // detached-for-close, newest last

	newProcFunc func(cfg process.Config) proc
	newIDFunc   func() string
}

// NewHost returns a host that spawns real pty processes for terminal
// surfaces.
func NewHost(logger *logging.ScopedLogger) *Host {
	return &Host{
		logger:   logger,
		sessions: make(map[string]*session),
		newProcFunc: func(cfg process.Config) proc {
			return process.NewSupervisor(cfg, logger)
		},
		newIDFunc: uuid.NewString,
	}
}

// CreateSurface spawns the resource backing a pane and returns its
// handle. Terminal contents start a shell on a PTY; the remaining kinds
// allocate a handle without a process.
func (h *Host) CreateSurface(ctx context.Context, content workspace.Content, meta Metadata) (Handle, error) {
	sess := &session{
		handle:  Handle{ResourceID: h.newIDFunc(), Kind: content.Kind},
		meta:    meta,
		content: content,
	}

	if content.Kind == workspace.ContentTerminal {
		sess.out = NewOutputBuffer()

		command := defaultShell()
		var args []string
		if content.Terminal != nil && content.Terminal.Command != "" {
			// Run the pane command under a shell so pipelines and
			// arguments survive.
			args = []string{"-c", content.Terminal.Command}
		} else {
			args = []string{"-l"}
		}

		p := h.newProcFunc(process.Config{
			Name:      "pane-" + meta.PaneID,
			Binary:    command,
			Args:      args,
			Dir:       meta.WorkingDir,
			Env:       terminalEnv(content.Terminal, meta.Env),
			RestartOn: process.Never,
			PTY:       true,
			Output:    sess.out,
		})
		if err := p.Start(ctx); err != nil {
			return Handle{}, fmt.Errorf("start terminal surface: %w", err)
		}
		sess.proc = p
	}

	h.mu.Lock()
	h.sessions[sess.handle.ResourceID] = sess
	h.mu.Unlock()

	h.logger.Info("surface created",
		"resource", sess.handle.ResourceID,
		"kind", string(content.Kind),
		"pane", meta.PaneID,
	)
	return sess.handle, nil
}

// Attach binds a pane to a live resource and returns its view. A resource
// retained after a close is resurrected in place, so undo can re-attach a
// whole tab's panes individually. Unknown resources report false so a
// caller racing a destroy can bail out.
func (h *Host) Attach(resourceID, paneID string) (View, bool) {
	h.mu.Lock()
	sess, ok := h.sessions[resourceID]
	if !ok {
		for i, r := range h.retained {
			if r.handle.ResourceID != resourceID {
				continue
			}
			if r.proc != nil && !r.proc.Running() {
				break
			}
			sess, ok = r, true
			h.retained = append(h.retained[:i], h.retained[i+1:]...)
			h.sessions[resourceID] = sess
			break
		}
	}
	if ok {
		sess.meta.PaneID = paneID
	}
	h.mu.Unlock()
	if !ok {
		return nil, false
	}

	switch sess.handle.Kind {
	case workspace.ContentTerminal:
		return &terminalView{paneID: paneID, out: sess.out}, true
	default:
		return &placeholderView{paneID: paneID, label: contentLabel(sess.content)}, true
	}
}

// Detach is called when a pane's view goes away. Hidden, minimized, and
// backgrounded panes keep their resource warm; close moves the session to
// the retained stack so a quick undo can resurrect it.
func (h *Host) Detach(resourceID string, reason DetachReason) {
	if reason != DetachClose {
		h.logger.Debug("surface detached", "resource", resourceID, "reason", string(reason))
		return
	}

	h.mu.Lock()
	sess, ok := h.sessions[resourceID]
	var evicted *session
	if ok {
		delete(h.sessions, resourceID)
		sess.closedAt = time.Now()
		h.retained = append(h.retained, sess)
		if len(h.retained) > retainedCap {
			evicted = h.retained[0]
			h.retained = h.retained[1:]
		}
	}
	h.mu.Unlock()

	if ok {
		h.logger.Info("surface retained for undo", "resource", resourceID)
	}
	if evicted != nil {
		h.stopSession(evicted)
	}
}

// UndoClose resurrects the most recently closed session, if one is still
// retained.
func (h *Host) UndoClose() (Handle, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for len(h.retained) > 0 {
		sess := h.retained[len(h.retained)-1]
		h.retained = h.retained[:len(h.retained)-1]
		// A retained terminal whose process died while closed is not
		// worth resurrecting.
		if sess.proc != nil && !sess.proc.Running() {
			continue
		}
		h.sessions[sess.handle.ResourceID] = sess
		return sess.handle, true
	}
	return Handle{}, false
}

// Destroy tears a resource down for good. Unknown ids are a no-op so a
// late-arriving resource destroyed by a superseded action does not error.
func (h *Host) Destroy(resourceID string) {
	h.mu.Lock()
	sess, ok := h.sessions[resourceID]
	if ok {
		delete(h.sessions, resourceID)
	} else {
		for i, r := range h.retained {
			if r.handle.ResourceID == resourceID {
				sess, ok = r, true
				h.retained = append(h.retained[:i], h.retained[i+1:]...)
				break
			}
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	h.stopSession(sess)
	h.logger.Info("surface destroyed", "resource", resourceID)
}

// Input writes keystrokes to a terminal resource.
func (h *Host) Input(resourceID string, p []byte) error {
	sess, ok := h.session(resourceID)
	if !ok || sess.proc == nil {
		return fmt.Errorf("no terminal resource %q", resourceID)
	}
	_, err := sess.proc.Write(p)
	return err
}

// ResizeTerminal adjusts a terminal resource's pty size.
func (h *Host) ResizeTerminal(resourceID string, rows, cols uint16) error {
	sess, ok := h.session(resourceID)
	if !ok || sess.proc == nil {
		return fmt.Errorf("no terminal resource %q", resourceID)
	}
	return sess.proc.Resize(rows, cols)
}

// Output returns the output buffer of a terminal resource.
func (h *Host) Output(resourceID string) (*OutputBuffer, bool) {
	sess, ok := h.session(resourceID)
	if !ok || sess.out == nil {
		return nil, false
	}
	return sess.out, true
}

// ResourceIDs returns the ids of all live sessions, sorted.
func (h *Host) ResourceIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown stops every live and retained process.
func (h *Host) Shutdown() {
	h.mu.Lock()
	all := make([]*session, 0, len(h.sessions)+len(h.retained))
	for _, sess := range h.sessions {
		all = append(all, sess)
	}
	all = append(all, h.retained...)
	h.sessions = make(map[string]*session)
	h.retained = nil
	h.mu.Unlock()

	for _, sess := range all {
		h.stopSession(sess)
	}
}

func (h *Host) session(resourceID string) (*session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[resourceID]
	return sess, ok
}

func (h *Host) stopSession(sess *session) {
	if sess.proc == nil {
		return
	}
	if err := sess.proc.Stop(); err != nil {
		h.logger.Warn("surface process stop failed",
			"resource", sess.handle.ResourceID,
			"error", err,
		)
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

func terminalEnv(tc *workspace.TerminalContent, metaEnv map[string]string) []string {
	merged := make(map[string]string)
	for k, v := range metaEnv {
		merged[k] = v
	}
	if tc != nil {
		for k, v := range tc.Env {
			merged[k] = v
		}
	}
	merged["TERM"] = "xterm-256color"
	merged["COLORTERM"] = "truecolor"

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

func contentLabel(c workspace.Content) string {
	switch c.Kind {
	case workspace.ContentBrowser:
		if c.Browser != nil {
			return c.Browser.URL
		}
		return "browser"
	case workspace.ContentCodeViewer:
		if c.CodeViewer != nil {
			return c.CodeViewer.Path
		}
		return "code"
	case workspace.ContentDiff:
		if c.Diff != nil && c.Diff.BaseRef != "" {
			return c.Diff.BaseRef + ".." + c.Diff.HeadRef
		}
		return "diff"
	}
	return strings.ToLower(string(c.Kind))
}
