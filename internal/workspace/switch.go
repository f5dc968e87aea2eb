// pattern: Functional Core

package workspace

import "sort"

// SwitchTransitions computes the surface work needed when a tab changes its
// active arrangement.
//
// A pane that was visible and not minimized keeps its live surface attached
// and needs no work. A pane that was visible but minimized may have had its
// surface detached, so it must be reattached when it reappears. Anything
// newly visible must be attached; anything no longer visible must be
// detached. Keeping the two result sets minimal keeps expensive
// attach/detach calls off the hot path of every arrangement switch.
type SwitchTransitions struct {
	Hidden   []string // detach: previously visible, not visible anymore
	Reattach []string // attach: newly visible, or visible-but-minimized before
}

// ComputeSwitchTransitions derives the transition sets. Results are sorted
// for deterministic logs and tests.
func ComputeSwitchTransitions(previousVisible, previouslyMinimized, newVisible map[string]bool) SwitchTransitions {
	var tr SwitchTransitions

	// hidden = previousVisible \ newVisible
	for id := range previousVisible {
		if !newVisible[id] {
			tr.Hidden = append(tr.Hidden, id)
		}
	}

	// reattach = newVisible \ (previousVisible \ previouslyMinimized)
	for id := range newVisible {
		if previousVisible[id] && !previouslyMinimized[id] {
			continue
		}
		tr.Reattach = append(tr.Reattach, id)
	}

	sort.Strings(tr.Hidden)
	sort.Strings(tr.Reattach)
	return tr
}
