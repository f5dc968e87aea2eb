// pattern: Imperative Shell

package workspace

import (
	"deskmux/internal/layout"
)

// repairStateLocked walks the aggregate and restores every structural
// invariant it can. It runs after load and after topology events. Every
// fix is logged at warning level and never raised as an error: the store
// must always reach a usable state. The pass is idempotent.
func (st *Store) repairStateLocked(s *State) {
	if s.Panes == nil {
		s.Panes = make(map[string]*Pane)
	}

	st.repairDrawers(s)
	st.repairTabs(s)
	st.repairActiveTab(s)
	st.repairDrawerExpansion(s)
}

// repairDrawers drops drawer references to panes missing from the pane map
// and clears orphaned parent links.
func (st *Store) repairDrawers(s *State) {
	for _, p := range s.Panes {
		if p.ParentID != "" {
			if _, ok := s.Panes[p.ParentID]; !ok {
				st.logger.Warn("repair: drawer child lost its parent", "pane", p.ID, "parent", p.ParentID)
				p.ParentID = ""
			}
		}
		if p.Drawer == nil {
			continue
		}
		d := p.Drawer
		kept := d.PaneIDs[:0]
		for _, childID := range d.PaneIDs {
			child, ok := s.Panes[childID]
			if !ok || child.ParentID != p.ID {
				st.logger.Warn("repair: pruned stale drawer child", "parent", p.ID, "child", childID)
				d.Root = layout.Removing(d.Root, childID)
				continue
			}
			kept = append(kept, childID)
		}
		d.PaneIDs = kept
		if len(d.PaneIDs) == 0 {
			p.Drawer = nil
			continue
		}
		if d.Root == nil || layout.Leaves(d.Root) != len(d.PaneIDs) {
			st.logger.Warn("repair: rebuilt drawer layout", "parent", p.ID)
			d.Root = layout.FromPaneIDs(d.PaneIDs, layout.Horizontal)
		}
		if d.ActivePaneID != "" && !d.Contains(d.ActivePaneID) {
			d.ActivePaneID = d.PaneIDs[0]
		}
	}
}

// repairTabs prunes stale pane references from arrangements, enforces the
// single-default invariant, de-duplicates panes across tabs, and drops
// tabs whose default arrangement ends up empty.
func (st *Store) repairTabs(s *State) {
	seen := make(map[string]string) // paneID -> owning tabID (first wins)
	keptTabs := s.Tabs[:0]

	for _, t := range s.Tabs {
		// Prune references to unknown panes from every arrangement.
		for _, a := range t.Arrangements {
			for _, paneID := range a.VisiblePaneIDs() {
				p, known := s.Panes[paneID]
				if !known || p.ParentID != "" {
					st.logger.Warn("repair: pruned unknown pane from layout",
						"tab", t.ID, "arrangement", a.ID, "pane", paneID)
					a.Root = layout.Removing(a.Root, paneID)
					continue
				}
				if owner, dup := seen[paneID]; dup && owner != t.ID {
					st.logger.Warn("repair: pane appeared in two tabs",
						"pane", paneID, "kept", owner, "removed_from", t.ID)
					a.Root = layout.Removing(a.Root, paneID)
					continue
				}
				seen[paneID] = t.ID
			}
		}

		// Drop empty non-default arrangements.
		keptArrs := t.Arrangements[:0]
		for _, a := range t.Arrangements {
			if a.Root == nil && !a.IsDefault {
				st.logger.Warn("repair: dropped empty arrangement", "tab", t.ID, "arrangement", a.ID)
				continue
			}
			keptArrs = append(keptArrs, a)
		}
		t.Arrangements = keptArrs

		// Exactly one default arrangement.
		st.repairDefaultFlag(t)

		d := t.DefaultArrangement()
		if d == nil || d.Root == nil {
			st.logger.Warn("repair: dropped tab with empty default arrangement", "tab", t.ID)
			continue
		}

		// Stale pointers.
		if _, ok := t.Arrangement(t.ActiveArrangementID); !ok {
			st.logger.Warn("repair: repointed active arrangement", "tab", t.ID)
			t.ActiveArrangementID = d.ID
		}
		active := t.ActiveArrangement()
		if t.ActivePaneID != "" && !layout.Contains(active.Root, t.ActivePaneID) {
			t.ActivePaneID = ""
		}
		if t.ActivePaneID == "" {
			if ids := active.VisiblePaneIDs(); len(ids) > 0 {
				t.ActivePaneID = ids[0]
			}
		}
		if t.ZoomedPaneID != "" && !layout.Contains(active.Root, t.ZoomedPaneID) {
			t.ZoomedPaneID = ""
		}
		for paneID := range t.MinimizedPaneIDs {
			if !layout.Contains(active.Root, paneID) {
				delete(t.MinimizedPaneIDs, paneID)
			}
		}

		keptTabs = append(keptTabs, t)
	}
	s.Tabs = keptTabs
}

// repairDefaultFlag ensures exactly one arrangement carries IsDefault.
func (st *Store) repairDefaultFlag(t *Tab) {
	defaults := 0
	for _, a := range t.Arrangements {
		if a.IsDefault {
			defaults++
		}
	}
	if defaults == 1 || len(t.Arrangements) == 0 {
		return
	}
	st.logger.Warn("repair: normalized default arrangement flag", "tab", t.ID, "defaults", defaults)
	if defaults == 0 {
		t.Arrangements[0].IsDefault = true
		return
	}
	first := true
	for _, a := range t.Arrangements {
		if a.IsDefault && first {
			first = false
			continue
		}
		a.IsDefault = false
	}
}

// repairActiveTab repoints a stale active tab id.
func (st *Store) repairActiveTab(s *State) {
	if s.ActiveTabID != "" {
		if _, ok := s.Tab(s.ActiveTabID); ok {
			return
		}
		st.logger.Warn("repair: repointed active tab", "was", s.ActiveTabID)
	}
	s.ActiveTabID = ""
	if len(s.Tabs) > 0 {
		s.ActiveTabID = s.Tabs[0].ID
	}
}

// repairDrawerExpansion enforces the at-most-one-expanded-drawer invariant.
func (st *Store) repairDrawerExpansion(s *State) {
	found := false
	// Map iteration order is random; pick deterministically via tabs order
	// first, then remaining panes.
	for _, t := range s.Tabs {
		for _, paneID := range t.PaneIDs() {
			p, ok := s.Panes[paneID]
			if !ok || p.Drawer == nil || !p.Drawer.IsExpanded {
				continue
			}
			if found {
				st.logger.Warn("repair: collapsed extra expanded drawer", "pane", p.ID)
				p.Drawer.IsExpanded = false
			}
			found = true
		}
	}
	for _, p := range s.Panes {
		if p.Drawer == nil || !p.Drawer.IsExpanded {
			continue
		}
		if in := paneInAnyTab(s, p.ID); !in {
			if found {
				st.logger.Warn("repair: collapsed extra expanded drawer", "pane", p.ID)
				p.Drawer.IsExpanded = false
			}
			found = true
		}
	}
}

func paneInAnyTab(s *State, paneID string) bool {
	for _, t := range s.Tabs {
		if t.Contains(paneID) {
			return true
		}
	}
	return false
}
