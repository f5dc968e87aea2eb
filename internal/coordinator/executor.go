// pattern: Imperative Shell

// Package coordinator applies validated actions to the workspace store,
// drives the surface collaborator, and rolls back store mutations when a
// required resource cannot be produced. It also owns the bounded undo
// stack and its garbage collection.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deskmux/internal/action"
	"deskmux/internal/layout"
	"deskmux/internal/logging"
	"deskmux/internal/surface"
	"deskmux/internal/workspace"
)

// undoRetention is how long a closed pane stays restorable before the
// expiry sweep purges it.
const undoRetention = 5 * time.Minute

// DefaultUndoLimit caps the close-operation history.
const DefaultUndoLimit = 16

// Executor is the single writer of the workspace store. Every user action
// funnels through Execute; concurrent callers (TUI loop, web API) are
// serialized on an internal mutex so each action sees a settled store.
type Executor struct {
	store    *workspace.Store
	collab   surface.Collaborator
	registry *surface.Registry
	logger   *logging.ScopedLogger

	mu         sync.Mutex
	management bool
	undo       *undoStack
	resources  map[string]surface.Handle // paneID -> live resource
	nowFunc    func() time.Time
}

// New wires an executor over the store and surface layer.
func New(store *workspace.Store, collab surface.Collaborator, registry *surface.Registry, logger *logging.ScopedLogger, undoLimit int) *Executor {
	if undoLimit <= 0 {
		undoLimit = DefaultUndoLimit
	}
	return &Executor{
		store:     store,
		collab:    collab,
		registry:  registry,
		logger:    logger,
		undo:      newUndoStack(undoLimit),
		resources: make(map[string]surface.Handle),
		nowFunc:   time.Now,
	}
}

// SetManagementMode toggles the arrangement editor mode, which rejects
// structural actions at validation time.
func (e *Executor) SetManagementMode(on bool) {
	e.mu.Lock()
	e.management = on
	e.mu.Unlock()
}

// ManagementMode reports whether the arrangement editor is active.
func (e *Executor) ManagementMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.management
}

// UndoDepth returns the number of restorable close operations.
func (e *Executor) UndoDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.undo.len()
}

// Resource returns the live resource handle attached to a pane.
func (e *Executor) Resource(paneID string) (surface.Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.resources[paneID]
	return h, ok
}

// Execute validates, canonicalizes, and applies one action. Rejections
// and resource failures are returned as errors; in both cases the store
// is left as it was before the call.
func (e *Executor) Execute(ctx context.Context, a action.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, _ := e.store.Snapshot()
	canonical, err := action.Resolve(action.Snapshot{
		Tabs:           st.Tabs,
		ActiveTabID:    st.ActiveTabID,
		ManagementMode: e.management,
	}, a)
	if err != nil {
		e.logger.Warn("action rejected", "kind", string(a.Kind), "error", err)
		return err
	}

	switch canonical.Kind {
	case action.OpenPane:
		return e.openPane(ctx, canonical)
	case action.OpenTab:
		return e.openTab(ctx, canonical)
	case action.ClosePane:
		return e.closePane(st, canonical)
	case action.CloseTab:
		return e.closeTab(st, canonical)
	case action.BackgroundPane:
		return e.backgroundPane(canonical)
	case action.ReactivatePane:
		return e.reactivatePane(ctx, canonical)
	case action.Undo:
		return e.applyUndo(ctx)
	case action.CreateArrangement:
		_, err := e.store.CreateArrangement(canonical.TabID, canonical.Name, canonical.ArrangementPanes)
		return err
	case action.DeleteArrangement:
		return e.store.DeleteArrangement(canonical.TabID, canonical.ArrangementID)
	case action.SwitchArrangement:
		return e.switchArrangement(canonical)
	case action.AddDrawerPane:
		return e.addDrawerPane(ctx, canonical)
	case action.CloseDrawerPane:
		return e.closeDrawerPane(st, canonical)
	case action.ToggleDrawer:
		return e.toggleDrawer(st, canonical)
	case action.FocusPane:
		return e.store.SetActivePane(canonical.TabID, canonical.PaneID)
	case action.ZoomPane:
		return e.store.SetZoomedPane(canonical.TabID, canonical.PaneID)
	case action.MinimizePane:
		return e.minimizePane(st, canonical)
	case action.ResizeSplit:
		if canonical.Relative {
			return e.store.AdjustSplit(canonical.TabID, canonical.SplitID, canonical.Ratio)
		}
		return e.store.ResizeSplit(canonical.TabID, canonical.SplitID, canonical.Ratio)
	case action.EqualizeSplits:
		return e.store.EqualizeSplits(canonical.TabID)
	case action.SelectTab:
		return e.store.SetActiveTab(canonical.TabID)
	case action.MoveTab:
		return e.store.MoveTab(canonical.TabID, canonical.Index)
	}
	return fmt.Errorf("unhandled action kind %q", canonical.Kind)
}

// --- creation ---

func (e *Executor) newPane(a action.Action) *workspace.Pane {
	return &workspace.Pane{
		ID:         workspace.NewPaneID(),
		Content:    a.Content,
		Title:      a.Title,
		WorkingDir: a.WorkingDir,
		WorktreeID: a.WorktreeID,
		AgentKind:  a.AgentKind,
		Residency:  workspace.Residency{State: workspace.ResidencyActive},
		CreatedAt:  e.nowFunc(),
	}
}

func (e *Executor) metadataFor(p *workspace.Pane) surface.Metadata {
	return surface.Metadata{
		PaneID:     p.ID,
		Title:      p.Title,
		WorkingDir: p.WorkingDir,
	}
}

// attachSurface creates and attaches the resource for a freshly created
// pane, registering its view. The caller rolls the store back on error.
func (e *Executor) attachSurface(ctx context.Context, p *workspace.Pane) error {
	h, err := e.collab.CreateSurface(ctx, p.Content, e.metadataFor(p))
	if err != nil {
		return fmt.Errorf("create surface for pane %s: %w", p.ID, err)
	}
	v, ok := e.collab.Attach(h.ResourceID, p.ID)
	if !ok {
		e.collab.Destroy(h.ResourceID)
		return fmt.Errorf("attach surface %s to pane %s", h.ResourceID, p.ID)
	}
	e.resources[p.ID] = h
	e.registry.Register(v, p.ID)
	return nil
}

func (e *Executor) openPane(ctx context.Context, a action.Action) error {
	prev, _ := e.store.Snapshot()
	p := e.newPane(a)

	if err := e.store.AddPane(p); err != nil {
		return err
	}
	if err := e.store.InsertPane(a.TabID, p.ID, a.AnchorPaneID, a.Direction, a.Position); err != nil {
		e.store.Restore(prev)
		return err
	}
	if err := e.attachSurface(ctx, p); err != nil {
		e.store.Restore(prev)
		return err
	}
	return nil
}

func (e *Executor) openTab(ctx context.Context, a action.Action) error {
	prev, _ := e.store.Snapshot()
	p := e.newPane(a)

	if err := e.store.AddPane(p); err != nil {
		return err
	}
	if _, err := e.store.NewTab(a.Name, p.ID); err != nil {
		e.store.Restore(prev)
		return err
	}
	if err := e.attachSurface(ctx, p); err != nil {
		e.store.Restore(prev)
		return err
	}
	return nil
}

func (e *Executor) addDrawerPane(ctx context.Context, a action.Action) error {
	prev, _ := e.store.Snapshot()
	child := e.newPane(a)

	if err := e.store.AddDrawerPane(a.PaneID, child); err != nil {
		return err
	}
	if err := e.attachSurface(ctx, child); err != nil {
		e.store.Restore(prev)
		return err
	}
	return nil
}

// --- close and undo ---

// drawerChildren returns deep clones of a pane's drawer children from the
// given state.
func drawerChildren(st *workspace.State, p *workspace.Pane) []*workspace.Pane {
	if p == nil || p.Drawer == nil {
		return nil
	}
	var out []*workspace.Pane
	for _, id := range p.Drawer.PaneIDs {
		if c, ok := st.Panes[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out
}

// restoreAnchor resolves how to re-insert a pane where it was: the first
// leaf of its split sibling, the split direction, and which side of the
// anchor the pane sat on.
func restoreAnchor(root layout.Node, paneID string) (anchor string, dir layout.Direction, pos layout.Position, ok bool) {
	s, isSplit := root.(*layout.Split)
	if !isSplit {
		return "", "", "", false
	}
	if l, isLeaf := s.Left.(*layout.Leaf); isLeaf && l.PaneID == paneID {
		if ids := layout.PaneIDs(s.Right); len(ids) > 0 {
			return ids[0], s.Direction, layout.Before, true
		}
		return "", "", "", false
	}
	if r, isLeaf := s.Right.(*layout.Leaf); isLeaf && r.PaneID == paneID {
		if ids := layout.PaneIDs(s.Left); len(ids) > 0 {
			return ids[0], s.Direction, layout.After, true
		}
		return "", "", "", false
	}
	if anchor, dir, pos, ok = restoreAnchor(s.Left, paneID); ok {
		return anchor, dir, pos, ok
	}
	return restoreAnchor(s.Right, paneID)
}

// retirePane parks a closing pane (and its resource) for possible undo.
func (e *Executor) retirePane(paneID string, expiry time.Time) {
	e.registry.Unregister(paneID)
	if h, ok := e.resources[paneID]; ok {
		e.collab.Detach(h.ResourceID, surface.DetachClose)
	}
	if err := e.store.MarkPendingUndo(paneID, expiry); err != nil {
		e.logger.Warn("pane not parked for undo", "pane", paneID, "error", err)
	}
}

// discardPane permanently destroys a pane's resource and purges it from
// the store. Safe to call for panes already gone.
func (e *Executor) discardPane(paneID string) {
	e.registry.Unregister(paneID)
	if h, ok := e.resources[paneID]; ok {
		e.collab.Destroy(h.ResourceID)
		delete(e.resources, paneID)
	}
	if st, _ := e.store.Snapshot(); st != nil {
		if _, ok := st.Panes[paneID]; ok {
			if err := e.store.PurgePane(paneID); err != nil {
				e.logger.Warn("pane not purged", "pane", paneID, "error", err)
			}
		}
	}
}

func (e *Executor) closePane(st *workspace.State, a action.Action) error {
	tab, ok := st.Tab(a.TabID)
	if !ok {
		return fmt.Errorf("tab %s not found", a.TabID)
	}
	pane, ok := st.Panes[a.PaneID]
	if !ok {
		return fmt.Errorf("pane %s not found", a.PaneID)
	}

	entry := &undoEntry{
		kind:     paneEntry,
		pane:     pane.Clone(),
		children: drawerChildren(st, pane),
		tabID:    a.TabID,
	}
	if arr := tab.ActiveArrangement(); arr != nil {
		entry.anchorID, entry.dir, entry.pos, _ = restoreAnchor(arr.Root, a.PaneID)
	}

	if err := e.store.RemovePaneFromTab(a.TabID, a.PaneID); err != nil {
		return err
	}

	expiry := e.nowFunc().Add(undoRetention)
	e.retirePane(a.PaneID, expiry)
	for _, c := range entry.children {
		e.retirePane(c.ID, expiry)
	}

	e.gcEvicted(e.undo.push(entry))
	return nil
}

func (e *Executor) closeTab(st *workspace.State, a action.Action) error {
	tab, ok := st.Tab(a.TabID)
	if !ok {
		return fmt.Errorf("tab %s not found", a.TabID)
	}

	entry := &undoEntry{kind: tabEntry, tab: tab.Clone()}
	for id := range tab.PaneSet() {
		p, ok := st.Panes[id]
		if !ok {
			continue
		}
		entry.panes = append(entry.panes, p.Clone())
		entry.children = append(entry.children, drawerChildren(st, p)...)
	}

	removed, index, err := e.store.RemoveTab(a.TabID)
	if err != nil {
		return err
	}
	entry.index = index

	// Every pane reachable from every arrangement goes down, drawer
	// children included, even panes only a non-default arrangement shows.
	expiry := e.nowFunc().Add(undoRetention)
	for _, p := range entry.panes {
		e.retirePane(p.ID, expiry)
	}
	for _, c := range entry.children {
		e.retirePane(c.ID, expiry)
	}

	e.logger.Info("tab closed", "tab", removed.ID, "panes", len(entry.panes))
	e.gcEvicted(e.undo.push(entry))
	return nil
}

func (e *Executor) backgroundPane(a action.Action) error {
	if err := e.store.BackgroundPane(a.PaneID); err != nil {
		return err
	}
	e.registry.Unregister(a.PaneID)
	if h, ok := e.resources[a.PaneID]; ok {
		e.collab.Detach(h.ResourceID, surface.DetachBackground)
	}
	return nil
}

func (e *Executor) reactivatePane(ctx context.Context, a action.Action) error {
	prev, _ := e.store.Snapshot()

	if err := e.store.ReactivatePane(a.PaneID, a.TabID, a.AnchorPaneID, a.Direction, a.Position); err != nil {
		return err
	}

	st, _ := e.store.Snapshot()
	pane, ok := st.Panes[a.PaneID]
	if !ok {
		e.store.Restore(prev)
		return fmt.Errorf("pane %s vanished during reactivation", a.PaneID)
	}
	if _, ok := e.revive(ctx, pane); !ok {
		// Re-background rather than leave a layout leaf with no surface.
		e.store.Restore(prev)
		return fmt.Errorf("surface for pane %s could not be reattached", a.PaneID)
	}
	return nil
}

// revive reattaches a pane's remembered resource, or creates a fresh one,
// and registers the view. Reports false when neither path produced a
// surface.
func (e *Executor) revive(ctx context.Context, p *workspace.Pane) (surface.View, bool) {
	if h, ok := e.resources[p.ID]; ok {
		if v, attached := e.collab.Attach(h.ResourceID, p.ID); attached {
			e.registry.Register(v, p.ID)
			return v, true
		}
		delete(e.resources, p.ID)
	}
	h, err := e.collab.CreateSurface(ctx, p.Content, e.metadataFor(p))
	if err != nil {
		e.logger.Warn("surface creation failed", "pane", p.ID, "error", err)
		return nil, false
	}
	v, ok := e.collab.Attach(h.ResourceID, p.ID)
	if !ok {
		e.collab.Destroy(h.ResourceID)
		return nil, false
	}
	e.resources[p.ID] = h
	e.registry.Register(v, p.ID)
	return v, true
}

func (e *Executor) applyUndo(ctx context.Context) error {
	entry, ok := e.undo.pop()
	if !ok {
		// Undo on an empty stack is a no-op.
		e.logger.Debug("undo stack empty")
		return nil
	}
	switch entry.kind {
	case tabEntry:
		return e.restoreTab(ctx, entry)
	case paneEntry:
		return e.restorePane(ctx, entry)
	}
	return nil
}

func (e *Executor) restoreTab(ctx context.Context, en *undoEntry) error {
	tab := en.tab.Clone()

	revived := make(map[string]bool)
	var failed []string
	for _, p := range en.panes {
		if _, ok := e.revive(ctx, p); ok {
			revived[p.ID] = true
		} else {
			failed = append(failed, p.ID)
		}
	}

	// If every pane in the snapshot fails, the tab is not restored.
	if len(revived) == 0 {
		for _, p := range en.panes {
			e.discardPane(p.ID)
		}
		for _, c := range en.children {
			e.discardPane(c.ID)
		}
		e.logger.Warn("tab not restored, every pane failed", "tab", tab.ID)
		return nil
	}

	for _, id := range failed {
		for _, a := range tab.Arrangements {
			a.Root = layout.Removing(a.Root, id)
		}
	}

	// Drop arrangements emptied by the failures. If the default emptied
	// but another arrangement survived, the tab lives on with the
	// surviving one promoted.
	kept := tab.Arrangements[:0]
	for _, a := range tab.Arrangements {
		if a.Root == nil && !a.IsDefault {
			continue
		}
		kept = append(kept, a)
	}
	tab.Arrangements = kept
	if d := tab.DefaultArrangement(); d == nil || d.Root == nil {
		promoted := false
		for _, a := range tab.Arrangements {
			if a.Root != nil {
				a.IsDefault = true
				tab.ActiveArrangementID = a.ID
				promoted = true
				break
			}
		}
		if !promoted {
			for _, p := range en.panes {
				e.discardPane(p.ID)
			}
			for _, c := range en.children {
				e.discardPane(c.ID)
			}
			e.logger.Warn("tab not restored, no arrangement survived", "tab", tab.ID)
			return nil
		}
		if d != nil {
			d.IsDefault = false
		}
	}

	// Drawer children of failed parents go with them.
	for _, c := range en.children {
		parentFailed := false
		for _, id := range failed {
			if c.ParentID == id {
				parentFailed = true
				break
			}
		}
		if parentFailed {
			e.discardPane(c.ID)
			continue
		}
		if _, ok := e.revive(ctx, c); ok {
			revived[c.ID] = true
		} else {
			e.discardPane(c.ID)
		}
	}

	// Store: revived panes return to service, failures are purged.
	st, _ := e.store.Snapshot()
	for id := range revived {
		if _, inStore := st.Panes[id]; inStore {
			if err := e.store.RestorePane(id); err != nil {
				e.logger.Warn("pane not restored", "pane", id, "error", err)
			}
		} else if p := en.findPane(id); p != nil {
			clone := p.Clone()
			clone.Residency = workspace.Residency{State: workspace.ResidencyActive}
			if err := e.store.AddPane(clone); err != nil {
				e.logger.Warn("pane not re-added", "pane", id, "error", err)
			}
		}
	}
	for _, id := range failed {
		e.discardPane(id)
	}

	if err := e.store.InsertTab(tab, en.index); err != nil {
		return fmt.Errorf("restore tab %s: %w", tab.ID, err)
	}
	if err := e.store.SetActiveTab(tab.ID); err != nil {
		return err
	}
	// The repair pass cleans dangling drawer refs and repoints stale
	// active pointers left by dropped panes.
	e.store.Repair()
	return nil
}

func (e *Executor) restorePane(ctx context.Context, en *undoEntry) error {
	st, _ := e.store.Snapshot()
	tab, ok := st.Tab(en.tabID)
	if !ok {
		// The owning tab was closed after this pane; likely its own undo
		// entry is above this one. Without a host tab, the entry is dead.
		e.discardPane(en.pane.ID)
		for _, c := range en.children {
			e.discardPane(c.ID)
		}
		e.logger.Warn("pane not restored, owning tab gone", "pane", en.pane.ID, "tab", en.tabID)
		return nil
	}

	if _, ok := e.revive(ctx, en.pane); !ok {
		e.discardPane(en.pane.ID)
		for _, c := range en.children {
			e.discardPane(c.ID)
		}
		e.logger.Warn("pane not restored, surface failed", "pane", en.pane.ID)
		return nil
	}

	anchor := en.anchorID
	dir, pos := en.dir, en.pos
	if anchor == "" || !tab.Contains(anchor) {
		anchor = tab.ActivePaneID
		if anchor == "" {
			if ids := tab.PaneIDs(); len(ids) > 0 {
				anchor = ids[0]
			}
		}
		dir, pos = layout.Horizontal, layout.After
	}

	prev, _ := e.store.Snapshot()
	if _, inStore := st.Panes[en.pane.ID]; inStore {
		if err := e.store.RestorePane(en.pane.ID); err != nil {
			return err
		}
	} else {
		clone := en.pane.Clone()
		clone.Residency = workspace.Residency{State: workspace.ResidencyActive}
		if err := e.store.AddPane(clone); err != nil {
			return err
		}
	}
	if err := e.store.InsertPane(en.tabID, en.pane.ID, anchor, dir, pos); err != nil {
		e.store.Restore(prev)
		return fmt.Errorf("restore pane %s: %w", en.pane.ID, err)
	}

	for _, c := range en.children {
		if _, ok := e.revive(ctx, c); ok {
			if err := e.store.RestorePane(c.ID); err != nil {
				e.logger.Warn("drawer child not restored", "pane", c.ID, "error", err)
				e.discardPane(c.ID)
			}
		} else {
			e.discardPane(c.ID)
		}
	}

	if err := e.store.SetActivePane(en.tabID, en.pane.ID); err != nil {
		return err
	}
	e.store.Repair()
	return nil
}

// --- drawer and view state ---

func (e *Executor) closeDrawerPane(st *workspace.State, a action.Action) error {
	parent, ok := st.DrawerParent(a.PaneID)
	if !ok {
		return fmt.Errorf("pane %s is not a drawer child", a.PaneID)
	}
	if err := e.store.RemoveDrawerPane(parent.ID, a.PaneID); err != nil {
		return err
	}
	// Drawer closes are immediate; they do not join the undo history.
	e.registry.Unregister(a.PaneID)
	if h, ok := e.resources[a.PaneID]; ok {
		e.collab.Destroy(h.ResourceID)
		delete(e.resources, a.PaneID)
	}
	return nil
}

func (e *Executor) toggleDrawer(st *workspace.State, a action.Action) error {
	p, ok := st.Panes[a.PaneID]
	if !ok {
		return fmt.Errorf("pane %s not found", a.PaneID)
	}
	if p.Drawer == nil {
		return fmt.Errorf("pane %s has no drawer", a.PaneID)
	}
	return e.store.SetDrawerExpanded(a.PaneID, !p.Drawer.IsExpanded)
}

func (e *Executor) minimizePane(st *workspace.State, a action.Action) error {
	tab, _ := st.Tab(a.TabID)
	wasMinimized := tab != nil && tab.MinimizedPaneIDs[a.PaneID]

	if err := e.store.ToggleMinimized(a.TabID, a.PaneID); err != nil {
		return err
	}
	if !wasMinimized {
		if h, ok := e.resources[a.PaneID]; ok {
			e.collab.Detach(h.ResourceID, surface.DetachMinimized)
		}
	}
	return nil
}

func (e *Executor) switchArrangement(a action.Action) error {
	trans, err := e.store.SwitchArrangement(a.TabID, a.ArrangementID)
	if err != nil {
		return err
	}
	for _, id := range trans.Hidden {
		if h, ok := e.resources[id]; ok {
			e.collab.Detach(h.ResourceID, surface.DetachHidden)
		}
	}
	// Views stay registered across switches; reattach only repairs panes
	// whose view went missing while hidden.
	for _, id := range trans.Reattach {
		if _, ok := e.registry.View(id); ok {
			continue
		}
		if h, ok := e.resources[id]; ok {
			if v, attached := e.collab.Attach(h.ResourceID, id); attached {
				e.registry.Register(v, id)
			}
		}
	}
	return nil
}

// --- garbage collection ---

// gcEvicted permanently destroys the panes of an evicted undo entry that
// nothing reachable still owns.
func (e *Executor) gcEvicted(evicted *undoEntry) {
	if evicted == nil {
		return
	}
	st, _ := e.store.Snapshot()
	for _, id := range evicted.paneIDs() {
		p, ok := st.Panes[id]
		if !ok {
			continue
		}
		if p.Residency.State == workspace.ResidencyPendingUndo {
			e.discardPane(id)
		}
	}
}

// ExpireUndo purges pendingUndo panes whose retention window has passed
// and drops them from the undo history. Called periodically by the shell.
func (e *Executor) ExpireUndo(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, _ := e.store.Snapshot()
	for id, p := range st.Panes {
		if p.Residency.State != workspace.ResidencyPendingUndo {
			continue
		}
		if p.Residency.UndoExpiresAt.IsZero() || now.Before(p.Residency.UndoExpiresAt) {
			continue
		}
		e.discardPane(id)
		e.undo.dropPane(id)
	}
}

// AttachAll creates surfaces for every active and backgrounded pane after
// a load, registering views for the active ones. Panes whose surface
// cannot be produced are orphaned, never dropped.
func (e *Executor) AttachAll(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, _ := e.store.Snapshot()
	for id, p := range st.Panes {
		switch p.Residency.State {
		case workspace.ResidencyActive, workspace.ResidencyBackgrounded:
		default:
			continue
		}
		if _, ok := e.revive(ctx, p); !ok {
			if err := e.store.OrphanPane(id, "surface unavailable at load"); err != nil {
				e.logger.Warn("pane not orphaned", "pane", id, "error", err)
			}
			continue
		}
		// Backgrounded panes keep a warm resource but no view.
		if p.Residency.State == workspace.ResidencyBackgrounded {
			e.registry.Unregister(id)
		}
	}
}

// findPane looks a pane snapshot up inside a tab entry.
func (e *undoEntry) findPane(id string) *workspace.Pane {
	for _, p := range e.panes {
		if p.ID == id {
			return p
		}
	}
	for _, c := range e.children {
		if c.ID == id {
			return c
		}
	}
	return nil
}
