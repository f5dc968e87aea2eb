// pattern: Functional Core

package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"deskmux/internal/layout"
	"deskmux/internal/workspace"
)

// The legacy schema predates arrangements: a flat list of "sessions"
// (panes) and "views" (tabs), each view holding a single layout. Session
// and view identifiers must survive migration because external subsystems
// key surfaces and worktrees by them.

type legacyDocument struct {
	Sessions     []legacySession `json:"sessions"`
	Views        []legacyView    `json:"views"`
	ActiveViewID string          `json:"activeViewId,omitempty"`
	SidebarWidth int             `json:"sidebarWidth,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitzero"`
	UpdatedAt    time.Time       `json:"updatedAt,omitzero"`
}

type legacySession struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	Kind       string    `json:"kind"`
	Command    string    `json:"command,omitempty"`
	URL        string    `json:"url,omitempty"`
	Path       string    `json:"path,omitempty"`
	WorkingDir string    `json:"workingDir,omitempty"`
	WorktreeID string    `json:"worktreeId,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

type legacyView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Layout          *layout.Encoded `json:"layout"`
	ActiveSessionID string          `json:"activeSessionId,omitempty"`
}

// UnmarshalLegacy parses a sessions/views document and migrates it
// in-memory to the current shape. Pane and tab ids are the original
// session and view ids.
func UnmarshalLegacy(data []byte) (*workspace.State, []string, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if len(doc.Sessions) == 0 && len(doc.Views) == 0 {
		return nil, nil, fmt.Errorf("not a legacy workspace document")
	}

	st := workspace.NewState("workspace")
	st.SidebarWidth = doc.SidebarWidth
	if st.SidebarWidth <= 0 {
		st.SidebarWidth = workspace.DefaultSidebarWidth
	}
	if !doc.CreatedAt.IsZero() {
		st.CreatedAt = doc.CreatedAt
	}
	if !doc.UpdatedAt.IsZero() {
		st.UpdatedAt = doc.UpdatedAt
	}

	var warnings []string
	for _, s := range doc.Sessions {
		if s.ID == "" {
			warnings = append(warnings, "legacy session without id dropped")
			continue
		}
		st.Panes[s.ID] = &workspace.Pane{
			ID:         s.ID,
			Content:    legacyContent(s),
			Title:      s.Title,
			WorkingDir: s.WorkingDir,
			WorktreeID: s.WorktreeID,
			SourceKind: "legacySession",
			Residency:  workspace.Residency{State: workspace.ResidencyActive},
			CreatedAt:  s.CreatedAt,
		}
	}

	for _, v := range doc.Views {
		root, err := layout.Decode(v.Layout)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("legacy view %s dropped: %v", v.ID, err))
			continue
		}
		t := &workspace.Tab{
			ID:   v.ID,
			Name: v.Name,
			Arrangements: []*workspace.Arrangement{{
				ID:        workspace.NewPaneID(),
				Name:      "main",
				IsDefault: true,
				Root:      root,
			}},
			ActivePaneID: v.ActiveSessionID,
		}
		t.ActiveArrangementID = t.Arrangements[0].ID
		st.Tabs = append(st.Tabs, t)
	}
	st.ActiveTabID = doc.ActiveViewID
	return st, warnings, nil
}

func legacyContent(s legacySession) workspace.Content {
	switch s.Kind {
	case "terminal", "":
		return workspace.Content{
			Kind:     workspace.ContentTerminal,
			Terminal: &workspace.TerminalContent{Command: s.Command},
		}
	case "browser", "webview":
		return workspace.Content{
			Kind:    workspace.ContentBrowser,
			Browser: &workspace.BrowserContent{URL: s.URL},
		}
	case "codeViewer", "editor":
		return workspace.Content{
			Kind:       workspace.ContentCodeViewer,
			CodeViewer: &workspace.CodeViewerContent{Path: s.Path},
		}
	case "diff":
		return workspace.Content{
			Kind: workspace.ContentDiff,
			Diff: &workspace.DiffContent{RepoRoot: s.Path},
		}
	}
	return workspace.Content{
		Kind: workspace.ContentUnsupported,
		Raw:  &workspace.RawContent{Kind: s.Kind},
	}
}
