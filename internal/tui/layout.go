// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // App title + workspace line (2 lines)
	Tabs      Region // Tab bar (1 line)
	Content   Region // Full content band between tab bar and status bar
	Sidebar   Region // Repo/worktree sidebar (left, when open)
	Workspace Region // Pane grid (right of sidebar, or full width)
	Logs      Region // Log panel when open (60% of content band)
	StatusBar Region // Status bar (1 line)
	Separator Region // Separator between workspace and logs (1 line when logs open)
}

// Fixed heights for chrome elements
const (
	headerHeight    = 2 // Title + workspace line
	tabsHeight      = 1 // Tab bar
	statusBarHeight = 1 // Status bar
	marginHeight    = 2 // Top + bottom margins
	separatorHeight = 1 // Separator when log panel open
)

// Sidebar width bounds in cells.
const (
	minSidebarCols = 20
	maxSidebarCols = 40
)

// ComputeLayout calculates regions based on terminal dimensions.
// When logPanelOpen is true, the content band splits 40/60 vertically
// (workspace/logs). When sidebarOpen is true, the sidebar takes 30% of the
// width, clamped to [minSidebarCols, maxSidebarCols].
func ComputeLayout(width, height int, logPanelOpen, sidebarOpen bool) Layout {
	fixedHeight := headerHeight + tabsHeight + statusBarHeight + marginHeight
	availableHeight := height - fixedHeight

	if availableHeight < 4 {
		availableHeight = 4
	}

	var contentHeight, logsHeight int
	if logPanelOpen {
		// The separator line comes out of the log allocation.
		contentHeight = int(float64(availableHeight) * 0.4)
		logsHeight = availableHeight - contentHeight - separatorHeight
	} else {
		contentHeight = availableHeight
		logsHeight = 0
	}

	y := 0

	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	tabs := Region{X: 0, Y: y, Width: width, Height: tabsHeight}
	y += tabsHeight

	content := Region{X: 0, Y: y, Width: width, Height: contentHeight}

	var sidebar, ws Region
	if sidebarOpen {
		sw := int(float64(width) * 0.3)
		if sw < minSidebarCols {
			sw = minSidebarCols
		}
		if sw > maxSidebarCols {
			sw = maxSidebarCols
		}
		if sw > width/2 {
			sw = width / 2
		}
		sidebar = Region{X: 0, Y: content.Y, Width: sw, Height: contentHeight}
		ws = Region{X: sw, Y: content.Y, Width: width - sw, Height: contentHeight}
	} else {
		sidebar = Region{X: 0, Y: content.Y, Width: 0, Height: 0}
		ws = Region{X: 0, Y: content.Y, Width: width, Height: contentHeight}
	}

	y += contentHeight

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight

		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}

	statusBar := Region{X: 0, Y: y, Width: width, Height: statusBarHeight}

	return Layout{
		Header:    header,
		Tabs:      tabs,
		Content:   content,
		Sidebar:   sidebar,
		Workspace: ws,
		Logs:      logs,
		StatusBar: statusBar,
		Separator: separator,
	}
}

// SidebarListHeight returns the height available for the worktree list
// after accounting for the sidebar header line.
func (l Layout) SidebarListHeight() int {
	h := l.Sidebar.Height - 1
	if h < 1 {
		h = 1
	}
	return h
}
