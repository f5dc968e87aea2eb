// pattern: Imperative Shell

package workspace

import (
	"fmt"
	"sync"
	"time"

	"deskmux/internal/catalog"
	"deskmux/internal/layout"
	"deskmux/internal/logging"
)

// Store is the single-writer owner of the workspace aggregate. Mutation
// methods are synchronous and free of I/O; each one marks the store dirty,
// bumps the version counter, and fires change notifications. The mutex
// serializes mutations so at most one executes at a time; persistence and
// rendering read through Snapshot.
type Store struct {
	mu       sync.Mutex
	state    *State
	version  uint64
	dirty    bool
	logger   *logging.ScopedLogger
	onChange []func()
}

// New creates a Store over the given state, repairing it first so a loaded
// document can never leave the store structurally invalid.
func New(state *State, logProvider logging.LoggerProvider) *Store {
	if state == nil {
		state = NewState("workspace")
	}
	st := &Store{
		state:  state,
		logger: logProvider.For("store"),
	}
	st.repairLocked()
	return st
}

// OnChange registers a callback invoked after every mutation. Must be set
// before the store is shared across goroutines.
func (st *Store) OnChange(fn func()) {
	st.onChange = append(st.onChange, fn)
}

// touch records that a mutation happened. Callers hold the mutex.
func (st *Store) touch() {
	st.version++
	st.dirty = true
	st.state.UpdatedAt = time.Now()
}

// notify fires change callbacks. Called after the mutex is released so
// subscribers can read the store.
func (st *Store) notify() {
	for _, fn := range st.onChange {
		fn()
	}
}

// Version returns the current mutation counter.
func (st *Store) Version() uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.version
}

// Dirty reports whether the store has unsaved mutations.
func (st *Store) Dirty() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.dirty
}

// MarkClean clears the dirty flag after a successful save of the given
// version. A mutation that raced the save keeps the store dirty.
func (st *Store) MarkClean(savedVersion uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.version == savedVersion {
		st.dirty = false
	}
}

// Snapshot returns a deep copy of the aggregate together with the version
// it reflects.
func (st *Store) Snapshot() (*State, uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Clone(), st.version
}

// Restore replaces the aggregate wholesale. Used by the coordinator's
// rollback path; the restored state is byte-for-byte the pre-action
// snapshot.
func (st *Store) Restore(state *State) {
	st.mu.Lock()
	st.state = state.Clone()
	st.touch()
	st.mu.Unlock()
	st.notify()
}

// mutate runs fn under the mutex and, when it succeeds, touches and
// notifies. Failed mutations leave the store untouched.
func (st *Store) mutate(fn func(*State) error) error {
	st.mu.Lock()
	err := fn(st.state)
	if err != nil {
		st.mu.Unlock()
		return err
	}
	st.touch()
	st.mu.Unlock()
	st.notify()
	return nil
}

// --- pane mutations ---

// AddPane registers a new pane. Panes are always created before any layout
// references them.
func (st *Store) AddPane(p *Pane) error {
	return st.mutate(func(s *State) error {
		if p.ID == "" {
			return fmt.Errorf("pane has no id")
		}
		if _, exists := s.Panes[p.ID]; exists {
			return fmt.Errorf("pane %s already exists", p.ID)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		if p.Residency.State == "" {
			p.Residency.State = ResidencyActive
		}
		s.Panes[p.ID] = p
		return nil
	})
}

// UpdatePaneMeta updates a pane's mutable metadata. Empty arguments leave
// the corresponding field unchanged.
func (st *Store) UpdatePaneMeta(paneID, title, workingDir string) error {
	return st.mutate(func(s *State) error {
		p, ok := s.Panes[paneID]
		if !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		if title != "" {
			p.Title = title
		}
		if workingDir != "" {
			p.WorkingDir = workingDir
		}
		return nil
	})
}

// InsertPane places an existing pane into the active arrangement of a tab,
// splitting the anchor pane.
func (st *Store) InsertPane(tabID, paneID, anchorID string, dir layout.Direction, pos layout.Position) error {
	return st.mutate(func(s *State) error {
		return insertPane(s, tabID, paneID, anchorID, dir, pos)
	})
}

func insertPane(s *State, tabID, paneID, anchorID string, dir layout.Direction, pos layout.Position) error {
	t, ok := s.Tab(tabID)
	if !ok {
		return fmt.Errorf("tab %s not found", tabID)
	}
	if _, ok := s.Panes[paneID]; !ok {
		return fmt.Errorf("pane %s not found", paneID)
	}
	a := t.ActiveArrangement()
	if a == nil {
		return fmt.Errorf("tab %s has no arrangements", tabID)
	}
	if layout.Contains(a.Root, paneID) {
		return fmt.Errorf("pane %s already in arrangement %s", paneID, a.ID)
	}
	if a.Root == nil {
		a.Root = layout.NewLeaf(paneID)
	} else {
		if !layout.Contains(a.Root, anchorID) {
			return fmt.Errorf("anchor pane %s not in arrangement %s", anchorID, a.ID)
		}
		a.Root = layout.Inserting(a.Root, paneID, anchorID, dir, pos)
	}
	t.ActivePaneID = paneID
	return nil
}

// RemovePaneFromTab removes a pane from every arrangement of its tab.
// Arrangements left empty (other than the default) are dropped. The pane
// itself stays in the store; residency is the caller's concern.
func (st *Store) RemovePaneFromTab(tabID, paneID string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		if !t.Contains(paneID) {
			return fmt.Errorf("pane %s not in tab %s", paneID, tabID)
		}
		removePaneFromTab(t, paneID)
		return nil
	})
}

func removePaneFromTab(t *Tab, paneID string) {
	kept := t.Arrangements[:0]
	for _, a := range t.Arrangements {
		a.Root = layout.Removing(a.Root, paneID)
		if a.Root == nil && !a.IsDefault {
			if t.ActiveArrangementID == a.ID {
				t.ActiveArrangementID = ""
			}
			continue
		}
		kept = append(kept, a)
	}
	t.Arrangements = kept
	if t.ActiveArrangementID == "" {
		if d := t.DefaultArrangement(); d != nil {
			t.ActiveArrangementID = d.ID
		}
	}
	delete(t.MinimizedPaneIDs, paneID)
	if t.ZoomedPaneID == paneID {
		t.ZoomedPaneID = ""
	}
	if t.ActivePaneID == paneID {
		t.ActivePaneID = ""
		if ids := t.PaneIDs(); len(ids) > 0 {
			t.ActivePaneID = ids[0]
		}
	}
}

// BackgroundPane removes a pane from all layouts of its tab but keeps its
// live resource. The pane can later be reactivated into any tab.
func (st *Store) BackgroundPane(paneID string) error {
	return st.mutate(func(s *State) error {
		p, ok := s.Panes[paneID]
		if !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		if err := p.Residency.transition(ResidencyBackgrounded); err != nil {
			return err
		}
		if t, ok := s.TabFor(paneID); ok {
			removePaneFromTab(t, paneID)
		}
		return nil
	})
}

// ReactivatePane returns a backgrounded or orphaned pane to a tab's active
// arrangement at the given anchor.
func (st *Store) ReactivatePane(paneID, tabID, anchorID string, dir layout.Direction, pos layout.Position) error {
	return st.mutate(func(s *State) error {
		p, ok := s.Panes[paneID]
		if !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		if !p.Residency.CanTransition(ResidencyActive) {
			return fmt.Errorf("illegal residency transition %s -> %s", p.Residency.State, ResidencyActive)
		}
		if err := insertPane(s, tabID, paneID, anchorID, dir, pos); err != nil {
			return err
		}
		return p.Residency.transition(ResidencyActive)
	})
}

// OrphanPane marks a pane's backing worktree/repo as unavailable. The pane
// stays where it is; the view layer renders a placeholder.
func (st *Store) OrphanPane(paneID, reason string) error {
	return st.mutate(func(s *State) error {
		p, ok := s.Panes[paneID]
		if !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		if err := p.Residency.transition(ResidencyOrphaned); err != nil {
			return err
		}
		p.Residency.OrphanReason = reason
		return nil
	})
}

// MarkPendingUndo parks a closed pane awaiting a possible undo restore.
func (st *Store) MarkPendingUndo(paneID string, expiresAt time.Time) error {
	return st.mutate(func(s *State) error {
		p, ok := s.Panes[paneID]
		if !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		if err := p.Residency.transition(ResidencyPendingUndo); err != nil {
			return err
		}
		p.Residency.UndoExpiresAt = expiresAt
		return nil
	})
}

// RestorePane returns a pendingUndo pane to active service. Layout
// re-insertion is the caller's job.
func (st *Store) RestorePane(paneID string) error {
	return st.mutate(func(s *State) error {
		p, ok := s.Panes[paneID]
		if !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		return p.Residency.transition(ResidencyActive)
	})
}

// PurgePane removes a pane from the store for good, cascading to drawer
// children. Only backgrounded or pendingUndo panes can be purged.
func (st *Store) PurgePane(paneID string) error {
	return st.mutate(func(s *State) error {
		return purgePane(s, paneID)
	})
}

func purgePane(s *State, paneID string) error {
	p, ok := s.Panes[paneID]
	if !ok {
		return fmt.Errorf("pane %s not found", paneID)
	}
	if err := p.Residency.transition(ResidencyPurged); err != nil {
		return err
	}
	if p.Drawer != nil {
		for _, childID := range p.Drawer.PaneIDs {
			if child, ok := s.Panes[childID]; ok {
				child.Residency.State = ResidencyPurged
				delete(s.Panes, childID)
			}
		}
	}
	delete(s.Panes, paneID)
	return nil
}

// --- tab mutations ---

// NewTab creates a tab showing the given pane in a fresh default
// arrangement and makes it active. The pane must already exist.
func (st *Store) NewTab(name, paneID string) (string, error) {
	tabID := newID()
	err := st.mutate(func(s *State) error {
		if _, ok := s.Panes[paneID]; !ok {
			return fmt.Errorf("pane %s not found", paneID)
		}
		t := &Tab{
			ID:   tabID,
			Name: name,
			Arrangements: []*Arrangement{{
				ID:        newID(),
				Name:      "main",
				IsDefault: true,
				Root:      layout.NewLeaf(paneID),
			}},
			ActivePaneID: paneID,
		}
		t.ActiveArrangementID = t.Arrangements[0].ID
		s.Tabs = append(s.Tabs, t)
		s.ActiveTabID = t.ID
		return nil
	})
	return tabID, err
}

// InsertTab places a fully-formed tab at the given index. Used by undo
// restore to put a closed tab back where it was.
func (st *Store) InsertTab(t *Tab, index int) error {
	return st.mutate(func(s *State) error {
		if _, ok := s.Tab(t.ID); ok {
			return fmt.Errorf("tab %s already exists", t.ID)
		}
		if index < 0 || index > len(s.Tabs) {
			index = len(s.Tabs)
		}
		s.Tabs = append(s.Tabs, nil)
		copy(s.Tabs[index+1:], s.Tabs[index:])
		s.Tabs[index] = t
		s.ActiveTabID = t.ID
		return nil
	})
}

// RemoveTab detaches a tab from the store and returns it with its original
// index. Panes referenced by the tab are untouched.
func (st *Store) RemoveTab(tabID string) (*Tab, int, error) {
	var removed *Tab
	var index int
	err := st.mutate(func(s *State) error {
		index = s.TabIndex(tabID)
		if index < 0 {
			return fmt.Errorf("tab %s not found", tabID)
		}
		removed = s.Tabs[index]
		s.Tabs = append(s.Tabs[:index], s.Tabs[index+1:]...)
		if s.ActiveTabID == tabID {
			s.ActiveTabID = ""
			if len(s.Tabs) > 0 {
				next := index
				if next >= len(s.Tabs) {
					next = len(s.Tabs) - 1
				}
				s.ActiveTabID = s.Tabs[next].ID
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return removed, index, nil
}

// SetActiveTab repoints the active tab.
func (st *Store) SetActiveTab(tabID string) error {
	return st.mutate(func(s *State) error {
		if _, ok := s.Tab(tabID); !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		s.ActiveTabID = tabID
		return nil
	})
}

// MoveTab reorders a tab to the given index.
func (st *Store) MoveTab(tabID string, to int) error {
	return st.mutate(func(s *State) error {
		from := s.TabIndex(tabID)
		if from < 0 {
			return fmt.Errorf("tab %s not found", tabID)
		}
		if to < 0 || to >= len(s.Tabs) {
			return fmt.Errorf("index %d out of range", to)
		}
		t := s.Tabs[from]
		s.Tabs = append(s.Tabs[:from], s.Tabs[from+1:]...)
		s.Tabs = append(s.Tabs[:to], append([]*Tab{t}, s.Tabs[to:]...)...)
		return nil
	})
}

// RenameTab sets a tab's display name.
func (st *Store) RenameTab(tabID, name string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		t.Name = name
		return nil
	})
}

// --- arrangement mutations ---

// CreateArrangement adds a named arrangement over a subset of the tab's
// panes and returns its id. The new arrangement is not activated.
func (st *Store) CreateArrangement(tabID, name string, paneIDs []string) (string, error) {
	arrID := newID()
	err := st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		if len(paneIDs) == 0 {
			return fmt.Errorf("arrangement needs at least one pane")
		}
		owned := t.PaneSet()
		for _, id := range paneIDs {
			if !owned[id] {
				return fmt.Errorf("pane %s does not belong to tab %s", id, tabID)
			}
		}
		t.Arrangements = append(t.Arrangements, &Arrangement{
			ID:   arrID,
			Name: name,
			Root: layout.FromPaneIDs(paneIDs, layout.Horizontal),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return arrID, nil
}

// RenameArrangement sets an arrangement's display name.
func (st *Store) RenameArrangement(tabID, arrID, name string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		a, ok := t.Arrangement(arrID)
		if !ok {
			return fmt.Errorf("arrangement %s not found", arrID)
		}
		a.Name = name
		return nil
	})
}

// DeleteArrangement removes a non-default arrangement. When it was active,
// the tab falls back to its default arrangement.
func (st *Store) DeleteArrangement(tabID, arrID string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		a, ok := t.Arrangement(arrID)
		if !ok {
			return fmt.Errorf("arrangement %s not found", arrID)
		}
		if a.IsDefault {
			return fmt.Errorf("cannot delete the default arrangement")
		}
		kept := t.Arrangements[:0]
		for _, other := range t.Arrangements {
			if other.ID != arrID {
				kept = append(kept, other)
			}
		}
		t.Arrangements = kept
		if t.ActiveArrangementID == arrID {
			t.ActiveArrangementID = t.DefaultArrangement().ID
		}
		return nil
	})
}

// SwitchArrangement activates an arrangement and returns the attach/detach
// transition sets the coordinator needs to reconcile live surfaces.
// Zoom and minimized state are arrangement-local transients and are
// cleared; the active pane is repointed when it is not visible in the new
// arrangement.
func (st *Store) SwitchArrangement(tabID, arrID string) (SwitchTransitions, error) {
	var tr SwitchTransitions
	err := st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		next, ok := t.Arrangement(arrID)
		if !ok {
			return fmt.Errorf("arrangement %s not found", arrID)
		}
		prev := t.ActiveArrangement()
		if prev != nil && prev.ID == next.ID {
			return nil
		}

		prevVisible := map[string]bool{}
		if prev != nil {
			prevVisible = prev.VisibleSet()
		}
		tr = ComputeSwitchTransitions(prevVisible, t.MinimizedPaneIDs, next.VisibleSet())

		t.ActiveArrangementID = next.ID
		t.ZoomedPaneID = ""
		t.MinimizedPaneIDs = nil
		if !layout.Contains(next.Root, t.ActivePaneID) {
			t.ActivePaneID = ""
			if ids := next.VisiblePaneIDs(); len(ids) > 0 {
				t.ActivePaneID = ids[0]
			}
		}
		return nil
	})
	return tr, err
}

// --- layout mutations on the active arrangement ---

// ResizeSplit sets a split's ratio in the tab's active arrangement.
func (st *Store) ResizeSplit(tabID, splitID string, ratio float64) error {
	return st.mutate(func(s *State) error {
		a, err := activeArrangement(s, tabID)
		if err != nil {
			return err
		}
		a.Root = layout.Resizing(a.Root, splitID, ratio)
		return nil
	})
}

// AdjustSplit nudges a split's ratio by a signed delta. Clamping happens
// in the layout algebra.
func (st *Store) AdjustSplit(tabID, splitID string, delta float64) error {
	return st.mutate(func(s *State) error {
		a, err := activeArrangement(s, tabID)
		if err != nil {
			return err
		}
		current, ok := findRatio(a, splitID)
		if !ok {
			return fmt.Errorf("split %s not found in tab %s", splitID, tabID)
		}
		a.Root = layout.Resizing(a.Root, splitID, current+delta)
		return nil
	})
}

func findRatio(a *Arrangement, splitID string) (float64, bool) {
	var ratio float64
	found := false
	var visit func(n layout.Node)
	visit = func(n layout.Node) {
		s, ok := n.(*layout.Split)
		if !ok {
			return
		}
		if s.ID == splitID {
			ratio = s.Ratio
			found = true
			return
		}
		visit(s.Left)
		visit(s.Right)
	}
	visit(a.Root)
	return ratio, found
}

// EqualizeSplits resets every split ratio in the active arrangement.
func (st *Store) EqualizeSplits(tabID string) error {
	return st.mutate(func(s *State) error {
		a, err := activeArrangement(s, tabID)
		if err != nil {
			return err
		}
		a.Root = layout.Equalized(a.Root)
		return nil
	})
}

func activeArrangement(s *State, tabID string) (*Arrangement, error) {
	t, ok := s.Tab(tabID)
	if !ok {
		return nil, fmt.Errorf("tab %s not found", tabID)
	}
	a := t.ActiveArrangement()
	if a == nil {
		return nil, fmt.Errorf("tab %s has no arrangements", tabID)
	}
	return a, nil
}

// SetActivePane focuses a pane within its tab.
func (st *Store) SetActivePane(tabID, paneID string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		a := t.ActiveArrangement()
		if a == nil || !layout.Contains(a.Root, paneID) {
			return fmt.Errorf("pane %s not visible in tab %s", paneID, tabID)
		}
		t.ActivePaneID = paneID
		return nil
	})
}

// SetZoomedPane zooms a pane, or clears the zoom with an empty id.
func (st *Store) SetZoomedPane(tabID, paneID string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		if paneID != "" {
			a := t.ActiveArrangement()
			if a == nil || !layout.Contains(a.Root, paneID) {
				return fmt.Errorf("pane %s not visible in tab %s", paneID, tabID)
			}
		}
		t.ZoomedPaneID = paneID
		return nil
	})
}

// ToggleMinimized flips a visible pane's minimized flag.
func (st *Store) ToggleMinimized(tabID, paneID string) error {
	return st.mutate(func(s *State) error {
		t, ok := s.Tab(tabID)
		if !ok {
			return fmt.Errorf("tab %s not found", tabID)
		}
		a := t.ActiveArrangement()
		if a == nil || !layout.Contains(a.Root, paneID) {
			return fmt.Errorf("pane %s not visible in tab %s", paneID, tabID)
		}
		if t.MinimizedPaneIDs == nil {
			t.MinimizedPaneIDs = make(map[string]bool)
		}
		if t.MinimizedPaneIDs[paneID] {
			delete(t.MinimizedPaneIDs, paneID)
		} else {
			t.MinimizedPaneIDs[paneID] = true
		}
		return nil
	})
}

// --- drawer mutations ---

// AddDrawerPane registers child as a drawer pane of parent and splits it
// into the drawer layout. The drawer is created on first use.
func (st *Store) AddDrawerPane(parentID string, child *Pane) error {
	return st.mutate(func(s *State) error {
		parent, ok := s.Panes[parentID]
		if !ok {
			return fmt.Errorf("pane %s not found", parentID)
		}
		if parent.ParentID != "" {
			return fmt.Errorf("drawer panes cannot own drawers")
		}
		if child.ID == "" {
			return fmt.Errorf("child pane has no id")
		}
		if _, exists := s.Panes[child.ID]; exists {
			return fmt.Errorf("pane %s already exists", child.ID)
		}
		if parent.Drawer == nil {
			parent.Drawer = &Drawer{}
		}
		d := parent.Drawer
		if len(d.PaneIDs) >= MaxDrawerPanes {
			return fmt.Errorf("drawer of pane %s is full (%d panes)", parentID, MaxDrawerPanes)
		}
		child.ParentID = parentID
		if child.CreatedAt.IsZero() {
			child.CreatedAt = time.Now()
		}
		if child.Residency.State == "" {
			child.Residency.State = ResidencyActive
		}
		s.Panes[child.ID] = child

		d.PaneIDs = append(d.PaneIDs, child.ID)
		if d.Root == nil {
			d.Root = layout.NewLeaf(child.ID)
		} else {
			anchor := d.PaneIDs[len(d.PaneIDs)-2]
			d.Root = layout.Inserting(d.Root, child.ID, anchor, layout.Horizontal, layout.After)
		}
		d.ActivePaneID = child.ID
		return nil
	})
}

// RemoveDrawerPane removes a child from its parent's drawer and purges it.
func (st *Store) RemoveDrawerPane(parentID, childID string) error {
	return st.mutate(func(s *State) error {
		parent, ok := s.Panes[parentID]
		if !ok || parent.Drawer == nil {
			return fmt.Errorf("pane %s has no drawer", parentID)
		}
		d := parent.Drawer
		if !d.Contains(childID) {
			return fmt.Errorf("pane %s not in drawer of %s", childID, parentID)
		}
		kept := d.PaneIDs[:0]
		for _, id := range d.PaneIDs {
			if id != childID {
				kept = append(kept, id)
			}
		}
		d.PaneIDs = kept
		d.Root = layout.Removing(d.Root, childID)
		delete(d.MinimizedPaneIDs, childID)
		if d.ActivePaneID == childID {
			d.ActivePaneID = ""
			if len(d.PaneIDs) > 0 {
				d.ActivePaneID = d.PaneIDs[0]
			}
		}
		if child, ok := s.Panes[childID]; ok {
			child.Residency.State = ResidencyPurged
			delete(s.Panes, childID)
		}
		if len(d.PaneIDs) == 0 {
			parent.Drawer = nil
		}
		return nil
	})
}

// SetDrawerExpanded expands or collapses a drawer. Expanding one drawer
// collapses every other drawer in the store.
func (st *Store) SetDrawerExpanded(parentID string, expanded bool) error {
	return st.mutate(func(s *State) error {
		parent, ok := s.Panes[parentID]
		if !ok || parent.Drawer == nil {
			return fmt.Errorf("pane %s has no drawer", parentID)
		}
		if expanded {
			for id, p := range s.Panes {
				if id != parentID && p.Drawer != nil {
					p.Drawer.IsExpanded = false
				}
			}
		}
		parent.Drawer.IsExpanded = expanded
		return nil
	})
}

// --- workspace-level mutations ---

// SetSidebarWidth stores the sidebar width.
func (st *Store) SetSidebarWidth(width int) error {
	return st.mutate(func(s *State) error {
		if width < 0 {
			return fmt.Errorf("negative sidebar width %d", width)
		}
		s.SidebarWidth = width
		return nil
	})
}

// SetWindowFrame stores the host window geometry.
func (st *Store) SetWindowFrame(f *Frame) error {
	return st.mutate(func(s *State) error {
		s.WindowFrame = f
		return nil
	})
}

// ApplyTopology replaces the repo catalog and reconciles pane residency
// against it: panes whose worktree vanished are orphaned, orphaned panes
// whose worktree returned are reactivated, and working directories follow
// a moved worktree. A repair pass runs afterwards. Repairs and orphanings
// are logged, never raised.
func (st *Store) ApplyTopology(repos []catalog.Repo) {
	_ = st.mutate(func(s *State) error {
		s.Repos = repos
		for _, p := range s.Panes {
			if p.WorktreeID == "" {
				continue
			}
			wt, found := catalog.FindWorktree(repos, p.WorktreeID)
			switch {
			case !found && p.Residency.State != ResidencyOrphaned:
				if p.Residency.CanTransition(ResidencyOrphaned) {
					p.Residency.State = ResidencyOrphaned
					p.Residency.OrphanReason = "worktree unavailable"
					st.logger.Warn("pane orphaned", "pane", p.ID, "worktree", p.WorktreeID)
				}
			case found && p.Residency.State == ResidencyOrphaned:
				p.Residency.State = ResidencyActive
				p.Residency.OrphanReason = ""
				p.WorkingDir = wt.Path
				st.logger.Info("pane re-associated", "pane", p.ID, "worktree", p.WorktreeID)
			case found && p.WorkingDir != wt.Path:
				st.logger.Info("worktree moved", "pane", p.ID, "from", p.WorkingDir, "to", wt.Path)
				p.WorkingDir = wt.Path
			}
		}
		st.repairStateLocked(s)
		return nil
	})
}

// Repair runs the invariant repair pass (see repair.go).
func (st *Store) Repair() {
	_ = st.mutate(func(s *State) error {
		st.repairStateLocked(s)
		return nil
	})
}

func (st *Store) repairLocked() {
	st.repairStateLocked(st.state)
}

func newID() string {
	return newIDFunc()
}
