// pattern: Imperative Shell

package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"deskmux/internal/action"
	"deskmux/internal/events"
	"deskmux/internal/layout"
	"deskmux/internal/logging"
	"deskmux/internal/workspace"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// workspaceRefreshedMsg carries a fresh store snapshot.
type workspaceRefreshedMsg struct {
	state   *workspace.State
	version uint64
}

// actionDoneMsg is sent when a dispatched action completes.
type actionDoneMsg struct {
	kind action.Kind
	err  error
}

type tickMsg struct {
	time time.Time
}

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		lay := ComputeLayout(m.width, m.height, m.logPanelOpen, m.sidebarOpen)
		m.sidebarList.SetSize(lay.Sidebar.Width-2, lay.SidebarListHeight())

		if m.logPanelOpen {
			if !m.logReady {
				m.logViewport = viewport.New(lay.Logs.Width, lay.Logs.Height-1)
				m.logReady = true
			} else {
				m.logViewport.Width = lay.Logs.Width
				m.logViewport.Height = lay.Logs.Height - 1
			}
			m.updateLogViewportContent()
		}
		return m, nil

	case spinner.TickMsg:
		if m.statusLevel == StatusLoading {
			var cmd tea.Cmd
			m.statusSpinner, cmd = m.statusSpinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case workspaceRefreshedMsg:
		m.state = msg.state
		m.version = msg.version
		m.sidebarList.SetItems(toSidebarItems(msg.state.Repos))
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case tickMsg:
		// Periodic upkeep: expire undo retention and resync the snapshot.
		m.exec.ExpireUndo(msg.time)
		return m, tea.Batch(m.refreshWorkspace(), m.tick())

	case events.WebStateChangedMsg:
		return m, m.refreshWorkspace()

	case events.WebListenURLMsg:
		m.listenURLs = append(m.listenURLs, msg.URL)
		return m, nil

	case logEntriesMsg:
		for _, entry := range msg.entries {
			m.addLogEntry(entry)
		}
		if m.logPanelOpen && m.logReady {
			m.updateLogViewportContent()
		}
		if m.entries != nil {
			return m, m.consumeLogs()
		}
		return m, nil

	case clearStatusMsg:
		if m.statusLevel == StatusInfo && m.statusMessage == "ctrl+c ctrl+c to quit" {
			m.clearStatus()
		}
		return m, nil
	}

	return m, nil
}

// handleActionDone translates an executor result into status feedback.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var rej *action.Rejection
		if errors.As(msg.err, &rej) {
			// Validation rejections are routine: surface the reason,
			// nothing changed.
			m.setError(rej.Error(), msg.err)
			return m, nil
		}
		m.logger.Error("action failed", "kind", string(msg.kind), "error", msg.err)
		m.setError(fmt.Sprintf("Failed to %s", msg.kind), msg.err)
		return m, m.refreshWorkspace()
	}

	doneNames := map[action.Kind]string{
		action.OpenTab:           "Tab opened",
		action.OpenPane:          "Pane opened",
		action.CloseTab:          "Tab closed (u to undo)",
		action.ClosePane:         "Pane closed (u to undo)",
		action.Undo:              "Undo applied",
		action.BackgroundPane:    "Pane backgrounded",
		action.ReactivatePane:    "Pane restored",
		action.SwitchArrangement: "Arrangement switched",
		action.EqualizeSplits:    "Splits equalized",
	}
	if name, ok := doneNames[msg.kind]; ok {
		m.setSuccess(name)
	} else {
		m.clearStatus()
	}
	return m, m.refreshWorkspace()
}

// handleKey routes a key press by panel focus and open overlays.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key pressed", "key", msg.String(), "focus", int(m.panelFocus), "confirmOpen", m.confirmOpen)

	// Quit shortcuts first (ctrl+d always, ctrl+c double-press).
	if msg.Type == tea.KeyCtrlD {
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlC {
		now := time.Now()
		if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlCTime = now
		return m, nil
	}

	// Clear error with Escape.
	if msg.Type == tea.KeyEscape && m.statusLevel == StatusError {
		m.clearStatus()
		m.quitHintCount = 0
		return m, nil
	}

	if m.confirmOpen {
		return m.handleConfirmKey(msg)
	}

	if m.panelFocus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}

	if m.panelFocus == FocusLogs && m.logPanelOpen && m.logReady {
		if handled, model, cmd := m.handleLogKey(msg); handled {
			return model, cmd
		}
	}

	// "q" nudges toward the real quit chord.
	if msg.String() == "q" {
		m.quitHintCount++
		if m.quitHintCount >= 2 {
			m.statusLevel = StatusInfo
			m.statusMessage = "ctrl+c ctrl+c to quit"
			m.quitHintCount = 0
			return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
				return clearStatusMsg{}
			})
		}
		return m, nil
	}
	m.quitHintCount = 0

	return m.handleWorkspaceKey(msg)
}

// handleWorkspaceKey handles the main pane-grid key map.
func (m Model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab, hasTab := m.activeTab()

	switch msg.Type {
	case tea.KeyLeft:
		if hasTab {
			return m, m.focusNeighbor(tab, -1)
		}
		return m, nil
	case tea.KeyRight:
		if hasTab {
			return m, m.focusNeighbor(tab, +1)
		}
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.panelFocus = m.nextFocus()
		return m, nil

	case "t":
		name := fmt.Sprintf("tab %d", len(m.state.Tabs)+1)
		cmd := m.setLoading("Opening " + name + "...")
		return m, tea.Batch(cmd, m.dispatch(action.Action{
			Kind:    action.OpenTab,
			Name:    name,
			Content: workspace.Content{Kind: workspace.ContentTerminal, Terminal: &workspace.TerminalContent{}},
		}))

	case "]":
		return m, m.selectAdjacentTab(+1)

	case "[":
		return m, m.selectAdjacentTab(-1)

	case "s", "v":
		if !hasTab || tab.ActivePaneID == "" {
			return m, nil
		}
		dir := layout.Horizontal
		if msg.String() == "v" {
			dir = layout.Vertical
		}
		cmd := m.setLoading("Splitting pane...")
		return m, tea.Batch(cmd, m.dispatch(action.Action{
			Kind:         action.OpenPane,
			TabID:        tab.ID,
			AnchorPaneID: tab.ActivePaneID,
			Direction:    dir,
			Position:     layout.After,
			Content:      workspace.Content{Kind: workspace.ContentTerminal, Terminal: &workspace.TerminalContent{}},
		}))

	case "x":
		if !hasTab || tab.ActivePaneID == "" {
			return m, nil
		}
		m.confirmOpen = true
		m.confirmAction = "closePane"
		m.confirmTarget = tab.ActivePaneID
		m.confirmMessage = fmt.Sprintf("Close pane %s?", paneLabel(m.state, tab.ActivePaneID))
		return m, nil

	case "X":
		if !hasTab {
			return m, nil
		}
		m.confirmOpen = true
		m.confirmAction = "closeTab"
		m.confirmTarget = tab.ID
		m.confirmMessage = fmt.Sprintf("Close tab '%s'?", tab.Name)
		return m, nil

	case "z":
		if !hasTab || tab.ActivePaneID == "" {
			return m, nil
		}
		target := tab.ActivePaneID
		if tab.ZoomedPaneID == target {
			target = "" // unzoom
		}
		return m, m.dispatch(action.Action{Kind: action.ZoomPane, TabID: tab.ID, PaneID: target})

	case "m":
		if !hasTab || tab.ActivePaneID == "" {
			return m, nil
		}
		return m, m.dispatch(action.Action{Kind: action.MinimizePane, TabID: tab.ID, PaneID: tab.ActivePaneID})

	case "u":
		return m, m.dispatch(action.Action{Kind: action.Undo})

	case "=":
		if !hasTab {
			return m, nil
		}
		return m, m.dispatch(action.Action{Kind: action.EqualizeSplits, TabID: tab.ID})

	case "o":
		if !hasTab || tab.ActivePaneID == "" {
			return m, nil
		}
		return m, m.dispatch(action.Action{Kind: action.ToggleDrawer, PaneID: tab.ActivePaneID})

	case "a":
		return m, m.switchToNextArrangement(tab, hasTab)

	case "B":
		if !hasTab || tab.ActivePaneID == "" {
			return m, nil
		}
		return m, m.dispatch(action.Action{Kind: action.BackgroundPane, TabID: tab.ID, PaneID: tab.ActivePaneID})

	case "M":
		on := !m.exec.ManagementMode()
		m.exec.SetManagementMode(on)
		if on {
			m.setSuccess("Arrangement management mode on")
		} else {
			m.setSuccess("Arrangement management mode off")
		}
		return m, nil

	case "b":
		m.sidebarOpen = !m.sidebarOpen
		if !m.sidebarOpen && m.panelFocus == FocusSidebar {
			m.panelFocus = FocusWorkspace
		}
		lay := ComputeLayout(m.width, m.height, m.logPanelOpen, m.sidebarOpen)
		m.sidebarList.SetSize(lay.Sidebar.Width-2, lay.SidebarListHeight())
		return m, nil

	case "l", "L":
		m.logPanelOpen = !m.logPanelOpen
		if !m.logPanelOpen && m.panelFocus == FocusLogs {
			m.panelFocus = FocusWorkspace
		}
		if m.logPanelOpen {
			lay := ComputeLayout(m.width, m.height, m.logPanelOpen, m.sidebarOpen)
			if !m.logReady {
				m.logViewport = viewport.New(lay.Logs.Width, lay.Logs.Height-1)
				m.logReady = true
			} else {
				m.logViewport.Width = lay.Logs.Width
				m.logViewport.Height = lay.Logs.Height - 1
			}
			m.updateLogViewportContent()
		}
		return m, nil

	case "r":
		return m, m.refreshWorkspace()
	}

	return m, nil
}

// focusNeighbor moves pane focus within the visible layout order.
func (m Model) focusNeighbor(tab *workspace.Tab, delta int) tea.Cmd {
	visible := m.visiblePaneIDs()
	if len(visible) == 0 {
		return nil
	}
	idx := 0
	for i, id := range visible {
		if id == tab.ActivePaneID {
			idx = i
			break
		}
	}
	next := visible[(idx+delta+len(visible))%len(visible)]
	if next == tab.ActivePaneID {
		return nil
	}
	return m.dispatch(action.Action{Kind: action.FocusPane, TabID: tab.ID, PaneID: next})
}

// selectAdjacentTab moves the active tab pointer left or right, wrapping.
func (m Model) selectAdjacentTab(delta int) tea.Cmd {
	if m.state == nil || len(m.state.Tabs) < 2 {
		return nil
	}
	idx := m.state.TabIndex(m.state.ActiveTabID)
	if idx < 0 {
		idx = 0
	}
	next := m.state.Tabs[(idx+delta+len(m.state.Tabs))%len(m.state.Tabs)]
	return m.dispatch(action.Action{Kind: action.SelectTab, TabID: next.ID})
}

// switchToNextArrangement cycles the active tab's arrangements.
func (m Model) switchToNextArrangement(tab *workspace.Tab, hasTab bool) tea.Cmd {
	if !hasTab || len(tab.Arrangements) < 2 {
		return nil
	}
	idx := 0
	for i, a := range tab.Arrangements {
		if a.ID == tab.ActiveArrangementID {
			idx = i
			break
		}
	}
	next := tab.Arrangements[(idx+1)%len(tab.Arrangements)]
	return m.dispatch(action.Action{Kind: action.SwitchArrangement, TabID: tab.ID, ArrangementID: next.ID})
}

// handleSidebarKey handles keys while the sidebar list is focused.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.panelFocus = FocusWorkspace
		m.quitHintCount = 0
		return m, nil
	case tea.KeyEnter:
		item, ok := m.sidebarList.SelectedItem().(sidebarItem)
		if !ok || item.Worktree == nil {
			return m, nil
		}
		wt := item.Worktree
		cmd := m.setLoading("Opening " + wt.Name + "...")
		return m, tea.Batch(cmd, m.dispatch(action.Action{
			Kind:       action.OpenTab,
			Name:       wt.Name,
			Title:      wt.Name,
			WorkingDir: wt.Path,
			WorktreeID: wt.ID,
			Content:    workspace.Content{Kind: workspace.ContentTerminal, Terminal: &workspace.TerminalContent{}},
		}))
	}

	if msg.String() == "tab" {
		m.panelFocus = m.nextFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.sidebarList, cmd = m.sidebarList.Update(msg)
	return m, cmd
}

// handleLogKey handles keys while the log panel is focused. Returns
// handled=false for keys that should fall through to the global map.
func (m Model) handleLogKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.toggleLogLevel("DEBUG")
		return true, m, nil
	case "2":
		m.toggleLogLevel("INFO")
		return true, m, nil
	case "3":
		m.toggleLogLevel("WARN")
		return true, m, nil
	case "4":
		m.toggleLogLevel("ERROR")
		return true, m, nil
	case "j":
		m.logViewport.SetYOffset(m.logViewport.YOffset + 1)
		m.logAutoScroll = m.logViewport.AtBottom()
		return true, m, nil
	case "k":
		if m.logViewport.YOffset > 0 {
			m.logViewport.SetYOffset(m.logViewport.YOffset - 1)
		}
		m.logAutoScroll = false
		return true, m, nil
	case "g":
		m.logViewport.GotoTop()
		m.logAutoScroll = false
		return true, m, nil
	case "G":
		m.logViewport.GotoBottom()
		m.logAutoScroll = true
		return true, m, nil
	}

	switch msg.Type {
	case tea.KeyUp:
		if m.logViewport.YOffset > 0 {
			m.logViewport.SetYOffset(m.logViewport.YOffset - 1)
		}
		m.logAutoScroll = false
		return true, m, nil
	case tea.KeyDown:
		m.logViewport.SetYOffset(m.logViewport.YOffset + 1)
		m.logAutoScroll = m.logViewport.AtBottom()
		return true, m, nil
	case tea.KeyEscape:
		m.panelFocus = FocusWorkspace
		m.quitHintCount = 0
		return true, m, nil
	}

	return false, m, nil
}

// handleConfirmKey resolves the pending confirmation dialog.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		confirmAction := m.confirmAction
		target := m.confirmTarget
		m.confirmOpen = false
		m.confirmAction = ""
		m.confirmTarget = ""
		m.confirmMessage = ""

		tab, hasTab := m.activeTab()
		switch confirmAction {
		case "closePane":
			if !hasTab {
				return m, nil
			}
			return m, m.dispatch(action.Action{Kind: action.ClosePane, TabID: tab.ID, PaneID: target})
		case "closeTab":
			return m, m.dispatch(action.Action{Kind: action.CloseTab, TabID: target})
		}
		return m, nil

	case "n", "esc":
		m.confirmOpen = false
		m.confirmAction = ""
		m.confirmTarget = ""
		m.confirmMessage = ""
		return m, nil
	}
	return m, nil
}

// paneLabel returns a short human label for a pane.
func paneLabel(state *workspace.State, paneID string) string {
	if p, ok := state.Pane(paneID); ok && p.Title != "" {
		return "'" + p.Title + "'"
	}
	if len(paneID) > 8 {
		return paneID[:8]
	}
	return paneID
}
