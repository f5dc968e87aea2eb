// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"deskmux/internal/catalog"
)

// sidebarItem is one row of the sidebar: a repo header when Worktree is
// nil, otherwise a worktree under the preceding repo.
type sidebarItem struct {
	Repo     catalog.Repo
	Worktree *catalog.Worktree
}

// Title returns the display name for the row.
func (i sidebarItem) Title() string {
	if i.Worktree != nil {
		return i.Worktree.Name
	}
	return i.Repo.Name
}

// Description returns the row detail line.
func (i sidebarItem) Description() string {
	if i.Worktree != nil {
		return i.Worktree.Branch
	}
	return i.Repo.Root
}

// FilterValue returns the value to filter on.
func (i sidebarItem) FilterValue() string {
	return i.Title()
}

// sidebarDelegate renders repo and worktree rows in the sidebar list.
type sidebarDelegate struct {
	styles *Styles
}

func newSidebarDelegate(styles *Styles) sidebarDelegate {
	return sidebarDelegate{styles: styles}
}

// Height returns the height of a single item.
func (d sidebarDelegate) Height() int {
	return 1
}

// Spacing returns the spacing between items.
func (d sidebarDelegate) Spacing() int {
	return 0
}

// Update handles item-specific updates.
func (d sidebarDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single sidebar row.
func (d sidebarDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(sidebarItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	indicator := "  "
	if isSelected {
		indicator = lipgloss.NewStyle().
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex)).
			Render("▸ ")
	}

	if si.Worktree == nil {
		repoStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(d.styles.flavor.Teal().Hex))
		if isSelected {
			repoStyle = repoStyle.Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
		}
		_, _ = fmt.Fprintf(w, "%s%s", indicator, repoStyle.Render(si.Repo.Name))
		return
	}

	nameStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Text().Hex))
	branchStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Overlay0().Hex))
	if isSelected {
		nameStyle = nameStyle.Bold(true).Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
	}

	_, _ = fmt.Fprintf(w, "%s  %s %s", indicator,
		nameStyle.Render(si.Worktree.Name),
		branchStyle.Render("("+si.Worktree.Branch+")"))
}

// toSidebarItems flattens the repo catalog into list rows: each repo
// header followed by its worktrees.
func toSidebarItems(repos []catalog.Repo) []list.Item {
	var items []list.Item
	for _, r := range repos {
		items = append(items, sidebarItem{Repo: r})
		for i := range r.Worktrees {
			items = append(items, sidebarItem{Repo: r, Worktree: &r.Worktrees[i]})
		}
	}
	return items
}
