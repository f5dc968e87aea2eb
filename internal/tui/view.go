// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"deskmux/internal/layout"
	"deskmux/internal/logging"
	"deskmux/internal/surface"
	"deskmux/internal/workspace"
)

// View renders the TUI.
func (m Model) View() string {
	// Confirmation dialog is a modal overlay
	if m.confirmOpen {
		return m.renderConfirmDialog()
	}

	lay := ComputeLayout(m.width, m.height, m.logPanelOpen, m.sidebarOpen)

	header := m.renderHeader(lay)
	tabBar := m.renderTabBar(lay)

	var content string
	ws := m.renderWorkspace(lay)
	if m.sidebarOpen {
		sidebar := m.renderSidebar(lay)
		content = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, ws)
	} else {
		content = ws
	}

	statusBar := lipgloss.NewStyle().Width(lay.StatusBar.Width).Render(m.renderStatusBar(lay.StatusBar.Width))

	var errorDisplay string
	if m.err != nil {
		errorDisplay = m.styles.ErrorStyle().Render("Error: " + m.err.Error())
	}

	parts := []string{header, tabBar, content}

	if m.logPanelOpen {
		separator := lipgloss.NewStyle().
			Width(lay.Separator.Width).
			Foreground(lipgloss.Color(m.styles.flavor.Surface1().Hex)).
			Render(strings.Repeat("─", lay.Separator.Width))
		parts = append(parts, separator)
		parts = append(parts, m.renderLogPanel(lay))
	}

	if errorDisplay != "" {
		parts = append(parts, errorDisplay)
	}
	parts = append(parts, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the title line and the workspace/listen line.
func (m Model) renderHeader(lay Layout) string {
	title := m.styles.TitleStyle().Render("deskmux")
	name := ""
	if m.state != nil {
		name = m.state.Name
	}
	title += " " + m.styles.SubtitleStyle().Render(name)

	var second string
	if len(m.listenURLs) > 0 {
		second = m.styles.HelpStyle().Render("web: " + strings.Join(m.listenURLs, "  "))
	} else {
		second = m.styles.HelpStyle().Render("workspace v" + fmt.Sprint(m.version))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(lay.Header.Width).Render(title),
		lipgloss.NewStyle().Width(lay.Header.Width).Render(second),
	)
}

// renderTabBar renders one cell per tab plus mode badges.
func (m Model) renderTabBar(lay Layout) string {
	if m.state == nil || len(m.state.Tabs) == 0 {
		return lipgloss.NewStyle().Width(lay.Tabs.Width).Render(
			m.styles.HelpStyle().Render("no tabs"))
	}

	var cells []string
	for _, t := range m.state.Tabs {
		label := t.Name
		if n := len(t.Arrangements); n > 1 {
			label = fmt.Sprintf("%s (%d)", t.Name, n)
		}
		if t.ID == m.state.ActiveTabID {
			cells = append(cells, m.styles.TabActiveStyle().Render(label))
		} else {
			cells = append(cells, m.styles.TabInactiveStyle().Render(label))
		}
	}

	if m.exec != nil && m.exec.ManagementMode() {
		cells = append(cells, m.styles.TabBadgeStyle().Render("manage"))
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	return lipgloss.NewStyle().Width(lay.Tabs.Width).Render(bar)
}

// renderWorkspace renders the pane grid of the active tab: the zoomed
// pane alone when one is set, otherwise the arrangement's split tree with
// minimized panes pruned into a strip at the bottom.
func (m Model) renderWorkspace(lay Layout) string {
	region := lay.Workspace
	tab, ok := m.activeTab()
	if !ok {
		return lipgloss.Place(region.Width, region.Height, lipgloss.Center, lipgloss.Center,
			m.styles.HelpStyle().Render("t: open a tab • b: repos • l: logs"))
	}

	arr := tab.ActiveArrangement()
	if arr == nil || arr.Root == nil {
		return lipgloss.Place(region.Width, region.Height, lipgloss.Center, lipgloss.Center,
			m.styles.HelpStyle().Render("empty tab"))
	}

	if tab.ZoomedPaneID != "" && layout.Contains(arr.Root, tab.ZoomedPaneID) {
		if v, found := m.registry.View(tab.ZoomedPaneID); found {
			return m.renderPane(v, region.Width, region.Height, tab)
		}
	}

	root := arr.Root
	var minimized []string
	for id := range tab.MinimizedPaneIDs {
		if layout.Contains(root, id) {
			root = layout.Removing(root, id)
			minimized = append(minimized, id)
		}
	}

	gridHeight := region.Height
	var strip string
	if len(minimized) > 0 {
		strip = m.renderMinimizedStrip(minimized, region.Width)
		gridHeight -= 1
	}

	var grid string
	node := m.registry.RenderTree(root)
	if node == nil {
		grid = lipgloss.Place(region.Width, gridHeight, lipgloss.Center, lipgloss.Center,
			m.styles.HelpStyle().Render("no attached surfaces"))
	} else {
		grid = m.renderPaneNode(node, region.Width, gridHeight, tab)
	}

	if strip != "" {
		return lipgloss.JoinVertical(lipgloss.Left, grid, strip)
	}
	return grid
}

// renderPaneNode recursively renders a split tree into the given box.
func (m Model) renderPaneNode(node *surface.RenderNode, width, height int, tab *workspace.Tab) string {
	if node.IsLeaf() {
		return m.renderPane(node.View, width, height, tab)
	}

	if node.Direction == layout.Horizontal {
		leftW := int(float64(width) * node.Ratio)
		if leftW < 4 {
			leftW = 4
		}
		if leftW > width-4 {
			leftW = width - 4
		}
		left := m.renderPaneNode(node.Left, leftW, height, tab)
		right := m.renderPaneNode(node.Right, width-leftW, height, tab)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	topH := int(float64(height) * node.Ratio)
	if topH < 3 {
		topH = 3
	}
	if topH > height-3 {
		topH = height - 3
	}
	top := m.renderPaneNode(node.Left, width, topH, tab)
	bottom := m.renderPaneNode(node.Right, width, height-topH, tab)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// renderPane renders one bordered pane cell with a title line.
func (m Model) renderPane(v surface.View, width, height int, tab *workspace.Tab) string {
	active := tab.ActivePaneID == v.PaneID()

	title := v.PaneID()
	if p, ok := m.state.Pane(v.PaneID()); ok && p.Title != "" {
		title = p.Title
	}

	innerW := width - 2
	innerH := height - 3
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	titleLine := m.styles.PaneTitleStyle(active).MaxWidth(innerW).Render(title)
	body := v.Render(innerW, innerH)

	inner := lipgloss.JoinVertical(lipgloss.Left, titleLine, body)
	return m.styles.PaneBorderStyle(active).
		Width(innerW).
		Height(height - 2).
		Render(inner)
}

// renderMinimizedStrip renders one line listing minimized panes.
func (m Model) renderMinimizedStrip(paneIDs []string, width int) string {
	labels := make([]string, 0, len(paneIDs))
	for _, id := range paneIDs {
		labels = append(labels, paneLabel(m.state, id))
	}
	text := "minimized: " + strings.Join(labels, ", ") + "  (m to restore)"
	return m.styles.MinimizedStyle().MaxWidth(width).Render(text)
}

// renderSidebar renders the repo/worktree panel.
func (m Model) renderSidebar(lay Layout) string {
	headerStyle := m.styles.PanelHeaderUnfocusedStyle()
	if m.panelFocus == FocusSidebar {
		headerStyle = m.styles.PanelHeaderFocusedStyle()
	}
	header := headerStyle.Width(lay.Sidebar.Width).Render(" Repos")

	var body string
	if len(m.sidebarList.Items()) == 0 {
		body = lipgloss.Place(lay.Sidebar.Width, lay.SidebarListHeight(), lipgloss.Center, lipgloss.Center,
			m.styles.HelpStyle().Render("no repos found"))
	} else {
		body = m.sidebarList.View()
	}

	return lipgloss.NewStyle().
		Width(lay.Sidebar.Width).
		Height(lay.Sidebar.Height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// renderConfirmDialog renders the modal confirmation box.
func (m Model) renderConfirmDialog() string {
	box := m.styles.BoxStyle().Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.InfoStyle().Render(m.confirmMessage),
		"",
		m.styles.HelpStyle().Render("y/enter: confirm • n/esc: cancel"),
	))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderStatusBar renders operation feedback and contextual help.
func (m Model) renderStatusBar(width int) string {
	var statusIcon string
	var messageStyle lipgloss.Style

	switch m.statusLevel {
	case StatusLoading:
		statusIcon = m.statusSpinner.View()
		messageStyle = m.styles.InfoStatusStyle()
	case StatusSuccess:
		statusIcon = m.styles.SuccessStyle().Render("✓")
		messageStyle = m.styles.SuccessStyle()
	case StatusError:
		statusIcon = m.styles.ErrorStyle().Render("✗")
		messageStyle = m.styles.ErrorStyle()
	default: // StatusInfo
		statusIcon = ""
		messageStyle = m.styles.InfoStatusStyle()
	}

	var statusText string
	if statusIcon != "" {
		statusText = statusIcon + " " + messageStyle.Render(m.statusMessage)
	} else if m.statusMessage != "" {
		statusText = messageStyle.Render(m.statusMessage)
	}

	if m.statusLevel == StatusError && m.err != nil {
		statusText += m.styles.HelpStyle().Render(" (esc to clear)")
	}

	help := m.renderContextualHelp()

	statusWidth := lipgloss.Width(statusText)
	helpWidth := lipgloss.Width(help)
	spacerWidth := width - statusWidth - helpWidth - 2
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := strings.Repeat(" ", spacerWidth)

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		statusText,
		spacer,
		help,
	)
}

// renderContextualHelp returns help text based on panel focus.
func (m Model) renderContextualHelp() string {
	var help string
	switch m.panelFocus {
	case FocusSidebar:
		help = "↑/↓: navigate • enter: open worktree • tab: next panel • esc: back"
	case FocusLogs:
		help = "↑/↓: scroll • g/G: top/bottom • 1-4: levels • tab: next panel • esc: back"
	default: // FocusWorkspace
		if m.state == nil || len(m.state.Tabs) == 0 {
			help = "t: new tab • b: repos • l: logs"
		} else {
			help = "←/→: focus • s/v: split • x: close • z: zoom • u: undo • [/]: tabs • l: logs"
		}
	}
	return m.styles.HelpStyle().Render(help)
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Timestamp.Format("15:04:05"))

	var level string
	switch entry.Level {
	case "DEBUG":
		level = m.styles.LogDebugStyle().Render("DEBUG")
	case "INFO":
		level = m.styles.LogInfoStyle().Render("INFO")
	case "WARN":
		level = m.styles.LogWarnStyle().Render("WARN")
	case "ERROR":
		level = m.styles.LogErrorStyle().Render("ERROR")
	default:
		level = m.styles.LogInfoStyle().Render(entry.Level)
	}

	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")

	return fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
}

// renderLogPanel renders the log panel content.
func (m Model) renderLogPanel(lay Layout) string {
	filterInfo := "all levels"
	if len(m.logLevelOff) > 0 {
		var off []string
		for _, lvl := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
			if m.logLevelOff[lvl] {
				off = append(off, lvl)
			}
		}
		filterInfo = "hiding " + strings.Join(off, ",")
	}
	headerStyle := m.styles.PanelHeaderUnfocusedStyle()
	if m.panelFocus == FocusLogs {
		headerStyle = m.styles.PanelHeaderFocusedStyle()
	}
	header := headerStyle.Width(lay.Logs.Width).Render(fmt.Sprintf(" Logs (%s)", filterInfo))

	if m.logReady {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.logViewport.View(),
		)
	}

	entries := m.filteredLogEntries()
	var lines []string
	for _, entry := range entries {
		lines = append(lines, m.renderLogEntry(entry))
	}
	if len(lines) == 0 {
		lines = []string{m.styles.InfoStyle().Render("No log entries")}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().
			Width(lay.Logs.Width).
			Height(lay.Logs.Height-1).
			Render(joinLines(lines)),
	)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
