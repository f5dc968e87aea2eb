// pattern: Functional Core

package coordinator

import (
	"deskmux/internal/layout"
	"deskmux/internal/workspace"
)

// entryKind distinguishes the two undo snapshot shapes.
type entryKind int

const (
	tabEntry  entryKind = iota // a closed tab with every pane it owned
	paneEntry                  // a single closed pane plus its drawer children
)

// undoEntry is one close-operation snapshot. Pane snapshots are deep
// clones taken at close time; the live panes stay in the store as
// pendingUndo until restored or garbage collected.
type undoEntry struct {
	kind entryKind

	// tab-shaped
	tab   *workspace.Tab
	panes []*workspace.Pane // top-level pane snapshots
	index int

	// pane-shaped
	pane     *workspace.Pane
	children []*workspace.Pane
	tabID    string
	anchorID string
	dir      layout.Direction
	pos      layout.Position
}

// paneIDs returns every pane id the entry references, drawer children
// included.
func (e *undoEntry) paneIDs() []string {
	var ids []string
	switch e.kind {
	case tabEntry:
		for _, p := range e.panes {
			ids = append(ids, p.ID)
		}
	case paneEntry:
		ids = append(ids, e.pane.ID)
	}
	// Drawer children live outside arrangement layouts, so they are
	// tracked separately for both shapes.
	for _, c := range e.children {
		ids = appendMissing(ids, c.ID)
	}
	return ids
}

func appendMissing(ids []string, id string) []string {
	for _, have := range ids {
		if have == id {
			return ids
		}
	}
	return append(ids, id)
}

// undoStack is the bounded close-operation history. Pushing past the cap
// evicts the oldest entry so the caller can garbage collect its panes.
type undoStack struct {
	limit   int
	entries []*undoEntry
}

func newUndoStack(limit int) *undoStack {
	if limit <= 0 {
		limit = 1
	}
	return &undoStack{limit: limit}
}

func (s *undoStack) push(e *undoEntry) (evicted *undoEntry) {
	s.entries = append(s.entries, e)
	if len(s.entries) > s.limit {
		evicted = s.entries[0]
		s.entries = s.entries[1:]
	}
	return evicted
}

func (s *undoStack) pop() (*undoEntry, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	e := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return e, true
}

func (s *undoStack) len() int { return len(s.entries) }

// dropPane removes a purged pane from every entry, deleting entries that
// no longer reference anything restorable.
func (s *undoStack) dropPane(paneID string) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		children := e.children[:0]
		for _, c := range e.children {
			if c.ID != paneID {
				children = append(children, c)
			}
		}
		e.children = children

		switch e.kind {
		case paneEntry:
			if e.pane.ID == paneID {
				continue
			}
		case tabEntry:
			panes := e.panes[:0]
			for _, p := range e.panes {
				if p.ID != paneID {
					panes = append(panes, p)
				}
			}
			e.panes = panes
			for _, a := range e.tab.Arrangements {
				a.Root = layout.Removing(a.Root, paneID)
			}
			if d := e.tab.DefaultArrangement(); d == nil || d.Root == nil {
				continue
			}
		}
		kept = append(kept, e)
	}
	s.entries = kept
}
