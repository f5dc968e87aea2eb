// pattern: Functional Core

// Package action defines the user-intent actions that mutate the workspace
// and the resolver that validates and canonicalizes them against an
// immutable snapshot before the coordinator executes anything.
package action

import (
	"deskmux/internal/layout"
	"deskmux/internal/workspace"
)

// Kind enumerates the proposed actions.
type Kind string

const (
	// Pane creation. OpenPane inserts next to an anchor in an existing
	// tab; OpenTab creates a fresh tab for the pane.
	OpenPane Kind = "openPane"
	OpenTab  Kind = "openTab"

	// Lifecycle.
	ClosePane      Kind = "closePane"
	CloseTab       Kind = "closeTab"
	BackgroundPane Kind = "backgroundPane"
	ReactivatePane Kind = "reactivatePane"
	Undo           Kind = "undo"

	// Arrangements.
	CreateArrangement Kind = "createArrangement"
	DeleteArrangement Kind = "deleteArrangement"
	SwitchArrangement Kind = "switchArrangement"

	// Drawer.
	AddDrawerPane   Kind = "addDrawerPane"
	CloseDrawerPane Kind = "closeDrawerPane"
	ToggleDrawer    Kind = "toggleDrawer"

	// View state.
	FocusPane      Kind = "focusPane"
	ZoomPane       Kind = "zoomPane"
	MinimizePane   Kind = "minimizePane"
	ResizeSplit    Kind = "resizeSplit"
	EqualizeSplits Kind = "equalizeSplits"
	SelectTab      Kind = "selectTab"
	MoveTab        Kind = "moveTab"
)

// Action is a proposed or canonical workspace mutation. Only the fields
// relevant to Kind are set.
type Action struct {
	Kind Kind

	TabID         string
	PaneID        string
	AnchorPaneID  string
	ArrangementID string
	SplitID       string

	Direction layout.Direction
	Position  layout.Position
	Ratio     float64
	Relative  bool // Ratio is a signed delta, not an absolute value
	Index     int
	Name      string

	// Pane payload for creation actions.
	Content    workspace.Content
	Title      string
	WorkingDir string
	WorktreeID string
	AgentKind  string

	ArrangementPanes []string
}

// NeedsSurface reports whether executing the action requires a live
// external surface, and therefore a rollback path.
func (a Action) NeedsSurface() bool {
	switch a.Kind {
	case OpenPane, OpenTab, AddDrawerPane:
		return a.Content.NeedsSurface()
	case ReactivatePane, Undo:
		return true
	}
	return false
}
