package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/ui/style"
	"github.com/sadopc/disklens/internal/util"
)

// StatusInfo holds the current state for the status bar.
type StatusInfo struct {
	Dir        *model.Node
	ItemCount  int
	Sort       model.SortConfig
	ErrorCount int
	ShowErrors bool
	Message    string
}

var sortNames = map[model.SortField]string{
	model.SortBySize:  "size",
	model.SortByName:  "name",
	model.SortByCount: "count",
	model.SortByMtime: "mtime",
}

// RenderStatusBar renders the bottom line: directory totals and sort order
// on the left, key hints on the right.
func RenderStatusBar(theme style.Theme, info StatusInfo, width int) string {
	if info.Message != "" {
		msg := " " + theme.ErrorText.Bold(true).Render(info.Message)
		return theme.StatusBar.Width(width).Render(msg)
	}

	var parts []string
	if info.Dir != nil {
		parts = append(parts, fmt.Sprintf("%d rows", info.ItemCount))
		parts = append(parts, util.FormatSize(info.Dir.Size))
	}
	order := "desc"
	if info.Sort.Order == model.SortAsc {
		order = "asc"
	}
	parts = append(parts, fmt.Sprintf("sort: %s %s", sortNames[info.Sort.Field], order))
	if info.ErrorCount > 0 {
		parts = append(parts, theme.ErrorText.Render(fmt.Sprintf("! %d errors", info.ErrorCount)))
	}
	left := " " + strings.Join(parts, " | ")

	errHint := "errors"
	if info.ShowErrors {
		errHint = "tree"
	}
	hints := []struct{ key, desc string }{
		{"e", errHint},
		{"?", "help"},
		{"q", "quit"},
	}
	var rightParts []string
	for _, h := range hints {
		k := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(h.key)
		d := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" " + h.desc)
		rightParts = append(rightParts, k+d)
	}
	right := strings.Join(rightParts, "  ") + " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// RenderBreadcrumb renders the path of dir relative to root.
func RenderBreadcrumb(theme style.Theme, root, dir *model.Node, width int) string {
	crumb := root.Path
	if dir != nil && dir != root {
		if rel, err := filepath.Rel(root.Path, dir.Path); err == nil {
			crumb = filepath.Join(root.Name, rel)
		} else {
			crumb = dir.Path
		}
	}
	crumb = util.TruncateString(" "+crumb+"/", max(width, 10))
	return theme.Breadcrumb.Render(padRight(crumb, width))
}

// RenderErrorPanel lists errs starting at offset, at most height lines
// including the title.
func RenderErrorPanel(theme style.Theme, errs []model.ScanError, offset, width, height int) string {
	title := theme.ModalTitle.Render(fmt.Sprintf("  Scan errors (%d)", len(errs)))
	rows := max(height-1, 0)
	lines := []string{padRight(title, width)}
	if len(errs) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  no errors"))
		return padLines(lines, height, width)
	}
	if rows == 0 {
		return lines[0]
	}
	offset = min(max(offset, 0), max(len(errs)-1, 0))
	end := min(offset+rows, len(errs))
	for _, line := range strings.Split(RenderErrors(theme, errs[offset:end], width), "\n") {
		lines = append(lines, padRight(line, width))
	}
	return padLines(lines, height, width)
}
