// pattern: Functional Core

package workspace

import (
	"deskmux/internal/layout"
)

// Arrangement is a named view over a subset of a tab's panes with its own
// layout. Exactly one arrangement per tab is the default. The visible pane
// set is derived from the layout, so the two can never drift apart.
type Arrangement struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	IsDefault bool        `json:"isDefault"`
	Root      layout.Node `json:"-"`
}

// VisiblePaneIDs returns the panes shown by this arrangement in layout
// order.
func (a *Arrangement) VisiblePaneIDs() []string {
	return layout.PaneIDs(a.Root)
}

// VisibleSet returns the visible panes as a set.
func (a *Arrangement) VisibleSet() map[string]bool {
	set := make(map[string]bool)
	for _, id := range a.VisiblePaneIDs() {
		set[id] = true
	}
	return set
}

// Clone returns a copy. Layout nodes are persistent values and are shared.
func (a *Arrangement) Clone() *Arrangement {
	cp := *a
	return &cp
}

// Tab owns a set of panes and one or more arrangements over them.
type Tab struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Arrangements        []*Arrangement  `json:"arrangements"`
	ActiveArrangementID string          `json:"activeArrangementId"`
	ActivePaneID        string          `json:"activePaneId,omitempty"`
	ZoomedPaneID        string          `json:"zoomedPaneId,omitempty"`
	MinimizedPaneIDs    map[string]bool `json:"minimizedPaneIds,omitempty"`
}

// ActiveArrangement returns the arrangement the tab currently shows, or the
// default when the active pointer is stale.
func (t *Tab) ActiveArrangement() *Arrangement {
	for _, a := range t.Arrangements {
		if a.ID == t.ActiveArrangementID {
			return a
		}
	}
	return t.DefaultArrangement()
}

// DefaultArrangement returns the arrangement flagged as default, or the
// first one when the flag is missing (repair restores the flag).
func (t *Tab) DefaultArrangement() *Arrangement {
	for _, a := range t.Arrangements {
		if a.IsDefault {
			return a
		}
	}
	if len(t.Arrangements) > 0 {
		return t.Arrangements[0]
	}
	return nil
}

// Arrangement returns the arrangement with the given id.
func (t *Tab) Arrangement(id string) (*Arrangement, bool) {
	for _, a := range t.Arrangements {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// PaneIDs returns the panes visible in the active arrangement, in layout
// order. This is the tab's rendering order.
func (t *Tab) PaneIDs() []string {
	a := t.ActiveArrangement()
	if a == nil {
		return nil
	}
	return a.VisiblePaneIDs()
}

// PaneSet returns the union of pane ids across all arrangements. A pane
// hidden by the active arrangement still belongs to the tab.
func (t *Tab) PaneSet() map[string]bool {
	set := make(map[string]bool)
	for _, a := range t.Arrangements {
		for _, id := range a.VisiblePaneIDs() {
			set[id] = true
		}
	}
	return set
}

// Contains reports whether any arrangement of the tab references paneID.
func (t *Tab) Contains(paneID string) bool {
	for _, a := range t.Arrangements {
		if layout.Contains(a.Root, paneID) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tab and its arrangements.
func (t *Tab) Clone() *Tab {
	cp := *t
	cp.Arrangements = make([]*Arrangement, len(t.Arrangements))
	for i, a := range t.Arrangements {
		cp.Arrangements[i] = a.Clone()
	}
	if t.MinimizedPaneIDs != nil {
		m := make(map[string]bool, len(t.MinimizedPaneIDs))
		for k, v := range t.MinimizedPaneIDs {
			m[k] = v
		}
		cp.MinimizedPaneIDs = m
	}
	return &cp
}
