// pattern: Functional Core

package action

import (
	"fmt"

	"deskmux/internal/layout"
	"deskmux/internal/workspace"
)

// Reason classifies why a proposed action was rejected.
type Reason string

const (
	ReasonStaleID       Reason = "staleId"       // referenced entity no longer exists
	ReasonInvalidTarget Reason = "invalidTarget" // entity exists but is not a legal target
	ReasonNotPermitted  Reason = "notPermitted"  // capability disallowed in the current mode
)

// Rejection is the typed error returned for invalid proposals. The
// coordinator logs it at warning level; no state changes.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Snapshot is the immutable view the resolver validates against. It is
// taken from the store before resolution and never written to.
type Snapshot struct {
	Tabs           []*workspace.Tab
	ActiveTabID    string
	ManagementMode bool
}

func (s Snapshot) tab(id string) (*workspace.Tab, bool) {
	for _, t := range s.Tabs {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// structural reports whether the action mutates workspace structure, as
// opposed to navigating or adjusting view state. Management mode (the
// arrangement editor) permits only non-structural actions plus arrangement
// edits.
func structural(k Kind) bool {
	switch k {
	case OpenPane, OpenTab, ClosePane, CloseTab, BackgroundPane, ReactivatePane,
		Undo, AddDrawerPane, CloseDrawerPane, MoveTab:
		return true
	}
	return false
}

// Resolve validates a proposed action against the snapshot and returns the
// canonical action to execute. It never mutates anything: it either passes
// the action through (possibly rewritten to a simpler equivalent) or
// rejects it with a typed reason.
func Resolve(snap Snapshot, a Action) (Action, error) {
	if snap.ManagementMode && structural(a.Kind) {
		return Action{}, reject(ReasonNotPermitted, "%s is not available in arrangement management mode", a.Kind)
	}

	switch a.Kind {
	case OpenTab:
		return a, nil

	case OpenPane:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		anchor := a.AnchorPaneID
		if anchor == "" {
			anchor = t.ActivePaneID
			a.AnchorPaneID = anchor
		}
		if !contains(t.PaneIDs(), anchor) {
			return Action{}, reject(ReasonInvalidTarget, "anchor pane %s not visible in tab %s", anchor, a.TabID)
		}
		return a, nil

	case ClosePane:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if !t.Contains(a.PaneID) {
			return Action{}, reject(ReasonStaleID, "pane %s in tab %s", a.PaneID, a.TabID)
		}
		// Closing the only pane in a tab closes the tab. The degenerate
		// case collapses into one executor path, and the undo entry is
		// always tab-shaped when the tab would become empty.
		if len(t.PaneSet()) == 1 {
			return Action{Kind: CloseTab, TabID: a.TabID}, nil
		}
		return a, nil

	case CloseTab:
		if _, ok := snap.tab(a.TabID); !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		return a, nil

	case BackgroundPane:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if !t.Contains(a.PaneID) {
			return Action{}, reject(ReasonStaleID, "pane %s in tab %s", a.PaneID, a.TabID)
		}
		if len(t.PaneSet()) == 1 {
			return Action{}, reject(ReasonInvalidTarget, "cannot background the only pane of tab %s", a.TabID)
		}
		return a, nil

	case ReactivatePane:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if a.AnchorPaneID == "" {
			a.AnchorPaneID = t.ActivePaneID
		}
		if !contains(t.PaneIDs(), a.AnchorPaneID) {
			return Action{}, reject(ReasonInvalidTarget, "anchor pane %s not visible in tab %s", a.AnchorPaneID, a.TabID)
		}
		return a, nil

	case Undo:
		return a, nil

	case CreateArrangement:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if len(a.ArrangementPanes) == 0 {
			return Action{}, reject(ReasonInvalidTarget, "arrangement needs at least one pane")
		}
		owned := t.PaneSet()
		for _, id := range a.ArrangementPanes {
			if !owned[id] {
				return Action{}, reject(ReasonInvalidTarget, "pane %s not in tab %s", id, a.TabID)
			}
		}
		return a, nil

	case DeleteArrangement, SwitchArrangement:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		arr, ok := t.Arrangement(a.ArrangementID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "arrangement %s in tab %s", a.ArrangementID, a.TabID)
		}
		if a.Kind == DeleteArrangement && arr.IsDefault {
			return Action{}, reject(ReasonInvalidTarget, "default arrangement of tab %s cannot be deleted", a.TabID)
		}
		return a, nil

	case AddDrawerPane, CloseDrawerPane, ToggleDrawer:
		// Drawer membership lives on panes, not tabs; the executor
		// revalidates against the pane map. Here we only check the
		// owning tab when one was named.
		if a.TabID != "" {
			if _, ok := snap.tab(a.TabID); !ok {
				return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
			}
		}
		if a.PaneID == "" {
			return Action{}, reject(ReasonInvalidTarget, "drawer action without a pane")
		}
		return a, nil

	case FocusPane, ZoomPane, MinimizePane:
		t, ok := snap.tab(a.TabID)
		if !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if a.Kind == ZoomPane && a.PaneID == "" {
			return a, nil // clearing the zoom
		}
		if !contains(t.PaneIDs(), a.PaneID) {
			return Action{}, reject(ReasonInvalidTarget, "pane %s not visible in tab %s", a.PaneID, a.TabID)
		}
		return a, nil

	case ResizeSplit:
		if _, ok := snap.tab(a.TabID); !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if a.SplitID == "" && a.PaneID != "" {
			// Keyboard resize: resolve the split from the focused pane.
			t, _ := snap.tab(a.TabID)
			arr := t.ActiveArrangement()
			splitID, increase, ok := layout.ResizeTarget(arr.Root, a.PaneID, a.Direction)
			if !ok {
				return Action{}, reject(ReasonInvalidTarget, "pane %s has no %s split to resize", a.PaneID, a.Direction)
			}
			a.SplitID = splitID
			a.Relative = true
			if !increase {
				a.Ratio = -a.Ratio
			}
		}
		if a.SplitID == "" {
			return Action{}, reject(ReasonInvalidTarget, "resize without a split")
		}
		return a, nil

	case EqualizeSplits:
		if _, ok := snap.tab(a.TabID); !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		return a, nil

	case SelectTab:
		if _, ok := snap.tab(a.TabID); !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		return a, nil

	case MoveTab:
		if _, ok := snap.tab(a.TabID); !ok {
			return Action{}, reject(ReasonStaleID, "tab %s", a.TabID)
		}
		if a.Index < 0 || a.Index >= len(snap.Tabs) {
			return Action{}, reject(ReasonInvalidTarget, "tab index %d out of range", a.Index)
		}
		return a, nil
	}

	return Action{}, reject(ReasonInvalidTarget, "unknown action kind %q", a.Kind)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
