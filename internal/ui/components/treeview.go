package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/ui/style"
)

// TreeView renders the rows of one directory with a cursor, scrolled so the
// cursor stays on screen.
type TreeView struct {
	Theme  style.Theme
	Items  []model.MergedItem
	Cursor int
	Offset int
	Width  int
	Height int
}

// Render renders the visible window of rows, padded to Height lines.
func (tv *TreeView) Render() string {
	cols := columnsFor(tv.Width)

	if len(tv.Items) == 0 {
		empty := lipgloss.NewStyle().Foreground(tv.Theme.TextMuted).Render("  (empty directory)")
		return padLines([]string{padRight(empty, cols.width)}, tv.Height, cols.width)
	}

	end := min(tv.Offset+tv.Height, len(tv.Items))
	lines := make([]string, 0, tv.Height)
	for i := tv.Offset; i < end; i++ {
		indicator := "  "
		if i == tv.Cursor {
			indicator = tv.Theme.CursorIndicator.Render(" >")
		}
		row := renderRow(tv.Theme, tv.Items[i], indicator, cols)
		if i == tv.Cursor {
			row = tv.Theme.SelectedRow.Render(row)
		}
		lines = append(lines, row)
	}
	return padLines(lines, tv.Height, cols.width)
}

// EnsureVisible adjusts Offset to keep Cursor visible.
func (tv *TreeView) EnsureVisible() {
	if tv.Cursor < tv.Offset {
		tv.Offset = tv.Cursor
	}
	if tv.Cursor >= tv.Offset+tv.Height {
		tv.Offset = tv.Cursor - tv.Height + 1
	}
	if tv.Offset < 0 {
		tv.Offset = 0
	}
}

func padLines(lines []string, height, width int) string {
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
