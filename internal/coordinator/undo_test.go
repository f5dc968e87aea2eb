package coordinator

import (
	"fmt"
	"testing"

	"deskmux/internal/layout"
	"deskmux/internal/workspace"
)

func paneShaped(id string) *undoEntry {
	return &undoEntry{kind: paneEntry, pane: &workspace.Pane{ID: id}, tabID: "t1"}
}

func TestUndoStack_EvictsOldestPastLimit(t *testing.T) {
	s := newUndoStack(2)

	if ev := s.push(paneShaped("a")); ev != nil {
		t.Errorf("unexpected eviction: %v", ev.pane.ID)
	}
	if ev := s.push(paneShaped("b")); ev != nil {
		t.Errorf("unexpected eviction: %v", ev.pane.ID)
	}
	ev := s.push(paneShaped("c"))
	if ev == nil || ev.pane.ID != "a" {
		t.Fatalf("evicted = %+v, want oldest entry a", ev)
	}
	if s.len() != 2 {
		t.Errorf("len = %d, want 2", s.len())
	}

	got, ok := s.pop()
	if !ok || got.pane.ID != "c" {
		t.Errorf("pop = %+v, want most recent entry c", got)
	}
}

func TestUndoStack_PopEmpty(t *testing.T) {
	s := newUndoStack(3)
	if _, ok := s.pop(); ok {
		t.Error("pop on empty stack should report false")
	}
}

func TestUndoStack_DropPane(t *testing.T) {
	s := newUndoStack(8)
	s.push(paneShaped("a"))

	// A tab entry holding two panes survives losing one of them.
	tab := &workspace.Tab{
		ID: "t2",
		Arrangements: []*workspace.Arrangement{{
			ID:        "arr",
			IsDefault: true,
			Root: &layout.Split{
				ID:        "s",
				Direction: layout.Horizontal,
				Ratio:     0.5,
				Left:      layout.NewLeaf("b"),
				Right:     layout.NewLeaf("c"),
			},
		}},
		ActiveArrangementID: "arr",
	}
	s.push(&undoEntry{
		kind:  tabEntry,
		tab:   tab,
		panes: []*workspace.Pane{{ID: "b"}, {ID: "c"}},
	})

	s.dropPane("b")
	if s.len() != 2 {
		t.Fatalf("len = %d, want 2", s.len())
	}
	en, _ := s.pop()
	if len(en.panes) != 1 || en.panes[0].ID != "c" {
		t.Errorf("panes = %v, want only c", en.panes)
	}
	if got := layout.PaneIDs(en.tab.DefaultArrangement().Root); fmt.Sprint(got) != "[c]" {
		t.Errorf("layout panes = %v, want [c]", got)
	}

	// Dropping a pane entry's own pane deletes the entry.
	s.dropPane("a")
	if s.len() != 0 {
		t.Errorf("len = %d, want 0 after dropping entry's pane", s.len())
	}
}
