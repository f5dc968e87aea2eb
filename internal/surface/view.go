// pattern: Imperative Shell

package surface

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// terminalView renders the tail of a terminal session's output buffer.
// It is a plain scrollback view; cursor-addressed screen state is left to
// the web frontend's real emulator.
type terminalView struct {
	paneID string
	out    *OutputBuffer
}

func (v *terminalView) PaneID() string { return v.paneID }

func (v *terminalView) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	text := strings.TrimRight(string(v.out.Bytes()), "\r\n")
	lines := strings.Split(text, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ansi.Truncate(strings.TrimRight(line, "\r"), width, ""))
	}
	return b.String()
}

// placeholderView stands in for content kinds the terminal UI cannot
// embed (browser pages, code viewers, diffs). It renders a centered
// label.
type placeholderView struct {
	paneID string
	label  string
}

func (v *placeholderView) PaneID() string { return v.paneID }

func (v *placeholderView) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	label := ansi.Truncate(v.label, width, "…")
	pad := (width - ansi.StringWidth(label)) / 2
	if pad < 0 {
		pad = 0
	}
	line := strings.Repeat(" ", pad) + label

	rows := make([]string, height)
	rows[height/2] = line
	return strings.Join(rows, "\n")
}
