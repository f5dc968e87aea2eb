// pattern: Functional Core

// Package workspace holds the pane/tab/arrangement document model and the
// Store that owns it. All mutation goes through the Store; everything in
// this file is plain data with pure helpers.
package workspace

import (
	"fmt"
	"time"

	"deskmux/internal/layout"
)

// ContentKind tags the closed set of pane content variants. The set is
// deliberately closed: the coordinator and the view factory switch
// exhaustively over it to enumerate required capabilities per variant.
type ContentKind string

const (
	ContentTerminal    ContentKind = "terminal"
	ContentBrowser     ContentKind = "browser"
	ContentCodeViewer  ContentKind = "codeViewer"
	ContentDiff        ContentKind = "diff"
	ContentUnsupported ContentKind = "unsupported"
)

// Content is a tagged variant. Exactly the field matching Kind is set.
type Content struct {
	Kind       ContentKind        `json:"kind"`
	Terminal   *TerminalContent   `json:"terminal,omitempty"`
	Browser    *BrowserContent    `json:"browser,omitempty"`
	CodeViewer *CodeViewerContent `json:"codeViewer,omitempty"`
	Diff       *DiffContent       `json:"diff,omitempty"`
	Raw        *RawContent        `json:"raw,omitempty"`
}

// TerminalContent describes a shell or agent terminal surface.
type TerminalContent struct {
	Command string            `json:"command,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// BrowserContent describes an embedded browser page.
type BrowserContent struct {
	URL string `json:"url"`
}

// CodeViewerContent describes a read-only code viewer.
type CodeViewerContent struct {
	Path string `json:"path"`
}

// DiffContent describes a diff/review panel over a repo range.
type DiffContent struct {
	RepoRoot string `json:"repoRoot"`
	BaseRef  string `json:"baseRef,omitempty"`
	HeadRef  string `json:"headRef,omitempty"`
}

// RawContent carries the original payload of an unsupported variant so a
// newer build can round-trip documents written by an older one.
type RawContent struct {
	Kind string `json:"kind"`
}

// NeedsSurface reports whether this content variant requires a live
// external surface before it can appear in a layout.
func (c Content) NeedsSurface() bool {
	switch c.Kind {
	case ContentTerminal, ContentBrowser:
		return true
	case ContentCodeViewer, ContentDiff, ContentUnsupported:
		return false
	}
	return false
}

// ResidencyState is a pane's lifecycle state.
type ResidencyState string

const (
	ResidencyActive       ResidencyState = "active"       // in some tab's layout
	ResidencyBackgrounded ResidencyState = "backgrounded" // out of all layouts, resource alive
	ResidencyOrphaned     ResidencyState = "orphaned"     // backing worktree/repo unavailable
	ResidencyPendingUndo  ResidencyState = "pendingUndo"  // awaiting possible undo restore
	ResidencyPurged       ResidencyState = "purged"       // removed; terminal state
)

// Residency pairs the state with its per-state payload.
type Residency struct {
	State         ResidencyState `json:"state"`
	OrphanReason  string         `json:"orphanReason,omitempty"`
	UndoExpiresAt time.Time      `json:"undoExpiresAt,omitzero"`
}

// residencyEdges enumerates the legal transitions of the state machine.
var residencyEdges = map[ResidencyState][]ResidencyState{
	ResidencyActive:       {ResidencyBackgrounded, ResidencyOrphaned, ResidencyPendingUndo},
	ResidencyBackgrounded: {ResidencyActive, ResidencyOrphaned, ResidencyPurged},
	ResidencyOrphaned:     {ResidencyActive},
	ResidencyPendingUndo:  {ResidencyActive, ResidencyPurged},
	ResidencyPurged:       {},
}

// CanTransition reports whether moving to the given state is legal.
func (r Residency) CanTransition(to ResidencyState) bool {
	for _, s := range residencyEdges[r.State] {
		if s == to {
			return true
		}
	}
	return false
}

// transition validates and performs a residency change, clearing payloads
// that belong to the state being left.
func (r *Residency) transition(to ResidencyState) error {
	if !r.CanTransition(to) {
		return fmt.Errorf("illegal residency transition %s -> %s", r.State, to)
	}
	r.State = to
	if to != ResidencyOrphaned {
		r.OrphanReason = ""
	}
	if to != ResidencyPendingUndo {
		r.UndoExpiresAt = time.Time{}
	}
	return nil
}

// Pane is a single content surface with metadata and a residency lifecycle.
// Drawer children are first-class panes whose ParentID points at the owner.
type Pane struct {
	ID         string    `json:"id"`
	Content    Content   `json:"content"`
	Title      string    `json:"title,omitempty"`
	WorkingDir string    `json:"workingDir,omitempty"`
	SourceKind string    `json:"sourceKind,omitempty"`
	AgentKind  string    `json:"agentKind,omitempty"`
	WorktreeID string    `json:"worktreeId,omitempty"`
	ParentID   string    `json:"parentId,omitempty"`
	Residency  Residency `json:"residency"`
	Drawer     *Drawer   `json:"drawer,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Clone returns a deep copy. Used for undo snapshots and rollback, where
// two copies of a pane must never share the drawer or env maps.
func (p *Pane) Clone() *Pane {
	cp := *p
	if p.Content.Terminal != nil {
		t := *p.Content.Terminal
		if t.Env != nil {
			env := make(map[string]string, len(t.Env))
			for k, v := range t.Env {
				env[k] = v
			}
			t.Env = env
		}
		cp.Content.Terminal = &t
	}
	if p.Content.Browser != nil {
		b := *p.Content.Browser
		cp.Content.Browser = &b
	}
	if p.Content.CodeViewer != nil {
		c := *p.Content.CodeViewer
		cp.Content.CodeViewer = &c
	}
	if p.Content.Diff != nil {
		d := *p.Content.Diff
		cp.Content.Diff = &d
	}
	if p.Content.Raw != nil {
		r := *p.Content.Raw
		cp.Content.Raw = &r
	}
	if p.Drawer != nil {
		cp.Drawer = p.Drawer.Clone()
	}
	return &cp
}

// Drawer is a secondary bounded split tree of child panes owned by one
// parent pane. At most one drawer in the whole store is expanded at a time.
type Drawer struct {
	PaneIDs          []string        `json:"paneIds"`
	Root             layout.Node     `json:"-"`
	ActivePaneID     string          `json:"activePaneId,omitempty"`
	MinimizedPaneIDs map[string]bool `json:"minimizedPaneIds,omitempty"`
	IsExpanded       bool            `json:"isExpanded"`
}

// MaxDrawerPanes bounds the drawer's split tree.
const MaxDrawerPanes = 4

// Clone returns a deep copy of the drawer. The layout tree is persistent,
// so sharing its nodes is safe.
func (d *Drawer) Clone() *Drawer {
	cp := *d
	cp.PaneIDs = append([]string(nil), d.PaneIDs...)
	if d.MinimizedPaneIDs != nil {
		m := make(map[string]bool, len(d.MinimizedPaneIDs))
		for k, v := range d.MinimizedPaneIDs {
			m[k] = v
		}
		cp.MinimizedPaneIDs = m
	}
	return &cp
}

// Contains reports whether the drawer holds the given child pane.
func (d *Drawer) Contains(paneID string) bool {
	for _, id := range d.PaneIDs {
		if id == paneID {
			return true
		}
	}
	return false
}
