// pattern: Functional Core

// Package persist owns the on-disk workspace document: the versioned JSON
// codec, the legacy schema migration, atomic writes, and the debounced
// background writer.
package persist

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"deskmux/internal/catalog"
	"deskmux/internal/layout"
	"deskmux/internal/workspace"
)

// SchemaVersion is the current document schema.
const SchemaVersion = 2

// document is the persisted workspace shape. In-memory sets become sorted
// slices so documents diff cleanly, and layout trees use the wire codec.
type document struct {
	Version      int              `json:"version"`
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Repos        []catalog.Repo   `json:"repos,omitempty"`
	Panes        []wirePane       `json:"panes"`
	Tabs         []wireTab        `json:"tabs"`
	ActiveTabID  string           `json:"activeTabId,omitempty"`
	SidebarWidth int              `json:"sidebarWidth"`
	WindowFrame  *workspace.Frame `json:"windowFrame,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type wirePane struct {
	ID         string              `json:"id"`
	Content    workspace.Content   `json:"content"`
	Title      string              `json:"title,omitempty"`
	WorkingDir string              `json:"workingDir,omitempty"`
	SourceKind string              `json:"sourceKind,omitempty"`
	AgentKind  string              `json:"agentKind,omitempty"`
	WorktreeID string              `json:"worktreeId,omitempty"`
	ParentID   string              `json:"parentId,omitempty"`
	Residency  workspace.Residency `json:"residency"`
	Drawer     *wireDrawer         `json:"drawer,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

type wireDrawer struct {
	PaneIDs          []string        `json:"paneIds"`
	Layout           *layout.Encoded `json:"layout,omitempty"`
	ActivePaneID     string          `json:"activePaneId,omitempty"`
	MinimizedPaneIDs []string        `json:"minimizedPaneIds,omitempty"`
	IsExpanded       bool            `json:"isExpanded"`
}

type wireTab struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Arrangements        []wireArrangement `json:"arrangements"`
	ActiveArrangementID string            `json:"activeArrangementId,omitempty"`
	ActivePaneID        string            `json:"activePaneId,omitempty"`
	ZoomedPaneID        string            `json:"zoomedPaneId,omitempty"`
	MinimizedPaneIDs    []string          `json:"minimizedPaneIds,omitempty"`
}

type wireArrangement struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	IsDefault bool            `json:"isDefault"`
	Layout    *layout.Encoded `json:"layout,omitempty"`
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id, on := range set {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// encodeState converts the aggregate to its wire document. Panes are
// sorted by id for stable output.
func encodeState(st *workspace.State) *document {
	doc := &document{
		Version:      SchemaVersion,
		ID:           st.ID,
		Name:         st.Name,
		Repos:        st.Repos,
		ActiveTabID:  st.ActiveTabID,
		SidebarWidth: st.SidebarWidth,
		WindowFrame:  st.WindowFrame,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}

	ids := make([]string, 0, len(st.Panes))
	for id := range st.Panes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := st.Panes[id]
		wp := wirePane{
			ID:         p.ID,
			Content:    p.Content,
			Title:      p.Title,
			WorkingDir: p.WorkingDir,
			SourceKind: p.SourceKind,
			AgentKind:  p.AgentKind,
			WorktreeID: p.WorktreeID,
			ParentID:   p.ParentID,
			Residency:  p.Residency,
			CreatedAt:  p.CreatedAt,
		}
		if p.Drawer != nil {
			wp.Drawer = &wireDrawer{
				PaneIDs:          append([]string(nil), p.Drawer.PaneIDs...),
				Layout:           layout.Encode(p.Drawer.Root),
				ActivePaneID:     p.Drawer.ActivePaneID,
				MinimizedPaneIDs: sortedSet(p.Drawer.MinimizedPaneIDs),
				IsExpanded:       p.Drawer.IsExpanded,
			}
		}
		doc.Panes = append(doc.Panes, wp)
	}

	for _, t := range st.Tabs {
		wt := wireTab{
			ID:                  t.ID,
			Name:                t.Name,
			ActiveArrangementID: t.ActiveArrangementID,
			ActivePaneID:        t.ActivePaneID,
			ZoomedPaneID:        t.ZoomedPaneID,
			MinimizedPaneIDs:    sortedSet(t.MinimizedPaneIDs),
		}
		for _, a := range t.Arrangements {
			wt.Arrangements = append(wt.Arrangements, wireArrangement{
				ID:        a.ID,
				Name:      a.Name,
				IsDefault: a.IsDefault,
				Layout:    layout.Encode(a.Root),
			})
		}
		doc.Tabs = append(doc.Tabs, wt)
	}
	return doc
}

// decodeDocument rebuilds the aggregate. A layout that fails to decode
// drops its arrangement (or drawer tree) rather than failing the whole
// document; the store's repair pass settles the rest. Returned warnings
// describe what was dropped.
func decodeDocument(doc *document) (*workspace.State, []string, error) {
	if doc.Version > SchemaVersion {
		return nil, nil, fmt.Errorf("document schema %d is newer than supported %d", doc.Version, SchemaVersion)
	}

	st := &workspace.State{
		ID:           doc.ID,
		Name:         doc.Name,
		Repos:        doc.Repos,
		Panes:        make(map[string]*workspace.Pane, len(doc.Panes)),
		ActiveTabID:  doc.ActiveTabID,
		SidebarWidth: doc.SidebarWidth,
		WindowFrame:  doc.WindowFrame,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if st.SidebarWidth <= 0 {
		st.SidebarWidth = workspace.DefaultSidebarWidth
	}

	var warnings []string
	for _, wp := range doc.Panes {
		if wp.ID == "" {
			warnings = append(warnings, "pane without id dropped")
			continue
		}
		p := &workspace.Pane{
			ID:         wp.ID,
			Content:    normalizeContent(wp.Content),
			Title:      wp.Title,
			WorkingDir: wp.WorkingDir,
			SourceKind: wp.SourceKind,
			AgentKind:  wp.AgentKind,
			WorktreeID: wp.WorktreeID,
			ParentID:   wp.ParentID,
			Residency:  wp.Residency,
			CreatedAt:  wp.CreatedAt,
		}
		if p.Residency.State == "" {
			p.Residency.State = workspace.ResidencyActive
		}
		if wp.Drawer != nil {
			d := &workspace.Drawer{
				PaneIDs:          wp.Drawer.PaneIDs,
				ActivePaneID:     wp.Drawer.ActivePaneID,
				MinimizedPaneIDs: toSet(wp.Drawer.MinimizedPaneIDs),
				IsExpanded:       wp.Drawer.IsExpanded,
			}
			root, err := layout.Decode(wp.Drawer.Layout)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("drawer layout of pane %s dropped: %v", wp.ID, err))
				root = layout.FromPaneIDs(wp.Drawer.PaneIDs, layout.Horizontal)
			}
			d.Root = root
			p.Drawer = d
		}
		st.Panes[p.ID] = p
	}

	for _, wt := range doc.Tabs {
		t := &workspace.Tab{
			ID:                  wt.ID,
			Name:                wt.Name,
			ActiveArrangementID: wt.ActiveArrangementID,
			ActivePaneID:        wt.ActivePaneID,
			ZoomedPaneID:        wt.ZoomedPaneID,
			MinimizedPaneIDs:    toSet(wt.MinimizedPaneIDs),
		}
		for _, wa := range wt.Arrangements {
			root, err := layout.Decode(wa.Layout)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("arrangement %s of tab %s dropped: %v", wa.ID, wt.ID, err))
				continue
			}
			t.Arrangements = append(t.Arrangements, &workspace.Arrangement{
				ID:        wa.ID,
				Name:      wa.Name,
				IsDefault: wa.IsDefault,
				Root:      root,
			})
		}
		st.Tabs = append(st.Tabs, t)
	}
	return st, warnings, nil
}

// normalizeContent downgrades unknown content kinds to the unsupported
// variant so an older build can round-trip documents written by a newer
// one.
func normalizeContent(c workspace.Content) workspace.Content {
	switch c.Kind {
	case workspace.ContentTerminal, workspace.ContentBrowser,
		workspace.ContentCodeViewer, workspace.ContentDiff:
		return c
	case workspace.ContentUnsupported:
		return c
	}
	return workspace.Content{
		Kind: workspace.ContentUnsupported,
		Raw:  &workspace.RawContent{Kind: string(c.Kind)},
	}
}

// Marshal renders a state as its pretty-printed wire document.
func Marshal(st *workspace.State) ([]byte, error) {
	data, err := json.MarshalIndent(encodeState(st), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal parses a current-schema document.
func Unmarshal(data []byte) (*workspace.State, []string, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Version == 0 && len(doc.Panes) == 0 && len(doc.Tabs) == 0 {
		return nil, nil, fmt.Errorf("not a workspace document")
	}
	return decodeDocument(&doc)
}
