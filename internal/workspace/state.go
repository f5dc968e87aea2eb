// pattern: Functional Core

package workspace

import (
	"time"

	"github.com/google/uuid"

	"deskmux/internal/catalog"
)

// Frame is the host window geometry, persisted so a restart reopens the
// window where the user left it.
type Frame struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultSidebarWidth is used for new workspaces.
const DefaultSidebarWidth = 280

// State is the aggregate workspace document: the source of truth for
// persistence and the only thing the Store mutates.
type State struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Repos        []catalog.Repo   `json:"repos"`
	Panes        map[string]*Pane `json:"panes"`
	Tabs         []*Tab           `json:"tabs"`
	ActiveTabID  string           `json:"activeTabId,omitempty"`
	SidebarWidth int              `json:"sidebarWidth"`
	WindowFrame  *Frame           `json:"windowFrame,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// NewState returns an empty workspace.
func NewState(name string) *State {
	now := time.Now()
	return &State{
		ID:           uuid.NewString(),
		Name:         name,
		Panes:        make(map[string]*Pane),
		SidebarWidth: DefaultSidebarWidth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Tab returns the tab with the given id.
func (s *State) Tab(id string) (*Tab, bool) {
	for _, t := range s.Tabs {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TabIndex returns the position of the tab with the given id, or -1.
func (s *State) TabIndex(id string) int {
	for i, t := range s.Tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Pane returns the pane with the given id.
func (s *State) Pane(id string) (*Pane, bool) {
	p, ok := s.Panes[id]
	return p, ok
}

// ActiveTab returns the tab pointed at by ActiveTabID.
func (s *State) ActiveTab() (*Tab, bool) {
	return s.Tab(s.ActiveTabID)
}

// TabFor returns the tab whose arrangements reference paneID.
func (s *State) TabFor(paneID string) (*Tab, bool) {
	for _, t := range s.Tabs {
		if t.Contains(paneID) {
			return t, true
		}
	}
	return nil, false
}

// DrawerParent returns the pane owning the drawer that holds childID.
func (s *State) DrawerParent(childID string) (*Pane, bool) {
	for _, p := range s.Panes {
		if p.Drawer != nil && p.Drawer.Contains(childID) {
			return p, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the whole aggregate. Layout trees are
// persistent values and are shared between the copies.
func (s *State) Clone() *State {
	cp := *s
	cp.Repos = append([]catalog.Repo(nil), s.Repos...)
	for i := range cp.Repos {
		cp.Repos[i].Worktrees = append([]catalog.Worktree(nil), s.Repos[i].Worktrees...)
	}
	cp.Panes = make(map[string]*Pane, len(s.Panes))
	for id, p := range s.Panes {
		cp.Panes[id] = p.Clone()
	}
	cp.Tabs = make([]*Tab, len(s.Tabs))
	for i, t := range s.Tabs {
		cp.Tabs[i] = t.Clone()
	}
	if s.WindowFrame != nil {
		f := *s.WindowFrame
		cp.WindowFrame = &f
	}
	return &cp
}
