// pattern: Imperative Shell

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"deskmux/internal/action"
	"deskmux/internal/config"
	"deskmux/internal/coordinator"
	"deskmux/internal/logging"
	"deskmux/internal/surface"
	"deskmux/internal/workspace"
)

// PanelFocus identifies which panel receives navigation keys.
type PanelFocus int

const (
	FocusWorkspace PanelFocus = iota
	FocusSidebar
	FocusLogs
)

// StatusLevel is the severity of the status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// maxLogEntries bounds the in-memory log panel buffer.
const maxLogEntries = 500

// Model represents the TUI application state. All workspace reads go
// through the snapshot taken at the last refresh; mutations go through
// the executor.
type Model struct {
	width     int
	height    int
	themeName string
	styles    *Styles

	cfg      *config.Config
	store    *workspace.Store
	exec     *coordinator.Executor
	registry *surface.Registry
	logger   *logging.ScopedLogger
	entries  <-chan logging.LogEntry

	state   *workspace.State
	version uint64

	panelFocus  PanelFocus
	sidebarOpen bool
	sidebarList list.Model

	logPanelOpen  bool
	logReady      bool
	logViewport   viewport.Model
	logEntries    []logging.LogEntry
	logAutoScroll bool
	logLevelOff   map[string]bool

	statusLevel   StatusLevel
	statusMessage string
	statusSpinner spinner.Model
	err           error

	confirmOpen    bool
	confirmAction  string
	confirmTarget  string
	confirmMessage string

	lastCtrlCTime time.Time
	quitHintCount int
	listenURLs    []string
}

// NewModel creates a new TUI model over an already-wired engine. The
// entries channel feeds the log panel and may be nil.
func NewModel(cfg *config.Config, store *workspace.Store, exec *coordinator.Executor, registry *surface.Registry, provider logging.LoggerProvider, entries <-chan logging.LogEntry) Model {
	styles := NewStyles(cfg.Theme)

	delegate := newSidebarDelegate(styles)
	sidebarList := list.New([]list.Item{}, delegate, 0, 0)
	sidebarList.SetShowTitle(false)
	sidebarList.SetShowStatusBar(false)
	sidebarList.SetFilteringEnabled(false)
	sidebarList.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	state, version := store.Snapshot()
	sidebarList.SetItems(toSidebarItems(state.Repos))

	return Model{
		themeName:     cfg.Theme,
		styles:        styles,
		cfg:           cfg,
		store:         store,
		exec:          exec,
		registry:      registry,
		logger:        provider.For("tui"),
		entries:       entries,
		state:         state,
		version:       version,
		sidebarList:   sidebarList,
		statusSpinner: sp,
		logAutoScroll: true,
		logLevelOff:   make(map[string]bool),
	}
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.refreshWorkspace(),
		m.tick(),
	}
	if m.entries != nil {
		cmds = append(cmds, m.consumeLogs())
	}
	return tea.Batch(cmds...)
}

// refreshWorkspace returns a command that snapshots the store.
func (m Model) refreshWorkspace() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		state, version := store.Snapshot()
		return workspaceRefreshedMsg{state: state, version: version}
	}
}

// dispatch returns a command that executes an action through the
// coordinator. Rejections come back as actionDoneMsg errors.
func (m Model) dispatch(a action.Action) tea.Cmd {
	exec := m.exec
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return actionDoneMsg{kind: a.Kind, err: exec.Execute(ctx, a)}
	}
}

// tick returns a command for periodic upkeep.
func (m Model) tick() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg{time: t}
	})
}

// consumeLogs blocks for the next log entry, then drains whatever else is
// already buffered so a burst arrives as one message.
func (m Model) consumeLogs() tea.Cmd {
	entries := m.entries
	return func() tea.Msg {
		e, ok := <-entries
		if !ok {
			return nil
		}
		batch := []logging.LogEntry{e}
		for len(batch) < 32 {
			select {
			case e, ok := <-entries:
				if !ok {
					return logEntriesMsg{entries: batch}
				}
				batch = append(batch, e)
			default:
				return logEntriesMsg{entries: batch}
			}
		}
		return logEntriesMsg{entries: batch}
	}
}

// --- snapshot accessors ---

// activeTab returns the active tab from the last snapshot.
func (m Model) activeTab() (*workspace.Tab, bool) {
	if m.state == nil {
		return nil, false
	}
	return m.state.ActiveTab()
}

// visiblePaneIDs returns the panes shown by the active tab's active
// arrangement, in layout order.
func (m Model) visiblePaneIDs() []string {
	t, ok := m.activeTab()
	if !ok {
		return nil
	}
	a := t.ActiveArrangement()
	if a == nil {
		return nil
	}
	return a.VisiblePaneIDs()
}

// --- status bar ---

func (m *Model) setLoading(message string) tea.Cmd {
	m.statusLevel = StatusLoading
	m.statusMessage = message
	m.err = nil
	return m.statusSpinner.Tick
}

func (m *Model) setSuccess(message string) {
	m.statusLevel = StatusSuccess
	m.statusMessage = message
	m.err = nil
}

func (m *Model) setError(message string, err error) {
	m.statusLevel = StatusError
	m.statusMessage = message
	m.err = err
}

func (m *Model) clearStatus() {
	m.statusLevel = StatusInfo
	m.statusMessage = ""
	m.err = nil
}

// nextFocus cycles through the panels that are currently visible.
func (m Model) nextFocus() PanelFocus {
	order := []PanelFocus{FocusWorkspace}
	if m.sidebarOpen {
		order = append(order, FocusSidebar)
	}
	if m.logPanelOpen {
		order = append(order, FocusLogs)
	}
	for i, f := range order {
		if f == m.panelFocus {
			return order[(i+1)%len(order)]
		}
	}
	return FocusWorkspace
}

// --- log panel state ---

func (m *Model) addLogEntry(entry logging.LogEntry) {
	m.logEntries = append(m.logEntries, entry)
	if len(m.logEntries) > maxLogEntries {
		m.logEntries = m.logEntries[len(m.logEntries)-maxLogEntries:]
	}
}

// filteredLogEntries returns entries whose level has not been toggled off.
func (m Model) filteredLogEntries() []logging.LogEntry {
	if len(m.logLevelOff) == 0 {
		return m.logEntries
	}
	var out []logging.LogEntry
	for _, e := range m.logEntries {
		if !m.logLevelOff[e.Level] {
			out = append(out, e)
		}
	}
	return out
}

func (m *Model) toggleLogLevel(level string) {
	if m.logLevelOff[level] {
		delete(m.logLevelOff, level)
	} else {
		m.logLevelOff[level] = true
	}
	if m.logReady {
		m.updateLogViewportContent()
	}
}

func (m *Model) updateLogViewportContent() {
	entries := m.filteredLogEntries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.renderLogEntry(e))
	}
	m.logViewport.SetContent(joinLines(lines))
	if m.logAutoScroll {
		m.logViewport.GotoBottom()
	}
}
