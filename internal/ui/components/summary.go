package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/ui/style"
	"github.com/sadopc/disklens/internal/util"
)

// rowFixed is the width of the fixed cells of a row: indicator (2),
// percent (6), bar brackets with their spaces (4), the gap before the size
// (1) and the size column (10).
const rowFixed = 23

// columns splits a row width between the gradient bar and the name. The bar
// takes a third of what the fixed cells leave over, between 5 and 40 cells;
// the name gets the rest.
type columns struct {
	width, bar, name int
}

func columnsFor(width int) columns {
	width = max(width, rowFixed+13)
	free := width - rowFixed
	bar := min(max(free/3, 5), 40)
	return columns{width: width, bar: bar, name: free - bar}
}

// RenderSummary renders one row per item: percentage of the parent, a
// gradient bar, the name and the size.
func RenderSummary(theme style.Theme, items []model.MergedItem, width int) string {
	if len(items) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  (empty directory)")
	}

	cols := columnsFor(width)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, renderRow(theme, item, "  ", cols))
	}
	return strings.Join(lines, "\n")
}

// renderRow renders item behind a two-cell indicator, padded to cols.width.
func renderRow(theme style.Theme, item model.MergedItem, indicator string, cols columns) string {
	pctStr := fmt.Sprintf("%5.1f%%", item.Percentage)
	bar := theme.BarGradient(cols.bar, item.Percentage/100.0)

	name := item.Name
	switch {
	case item.Merged:
		name = fmt.Sprintf("%s (%d items)", item.Name, item.MergedCount)
	case item.Type == model.TypeDirectory:
		name += "/"
	}
	name = util.TruncateString(name, cols.name)

	var nameStyled string
	switch {
	case item.Merged:
		nameStyled = theme.MergedName.Render(name)
	case item.Type == model.TypeDirectory:
		nameStyled = theme.DirName.Render(name)
	default:
		nameStyled = theme.FileName.Render(name)
	}
	if item.Type == model.TypeSymlink {
		nameStyled += lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" ->")
	}

	pctStyled := theme.PercentText.Render(pctStr)
	sizeStyled := theme.SizeText.Width(10).Render(util.FormatSize(item.Size))

	row := fmt.Sprintf("%s%s [%s] %s %s", indicator, pctStyled, bar, nameStyled, sizeStyled)
	return padRight(row, cols.width)
}

// padRight pads s with spaces to width visible cells. Wider strings are
// returned unchanged.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RenderErrors lists the recorded scan errors, one per line.
func RenderErrors(theme style.Theme, errs []model.ScanError, width int) string {
	if len(errs) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextMuted).Render("no errors")
	}
	maxW := width - 22
	if maxW < 10 {
		maxW = 10
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		kind := theme.ErrorText.Render(fmt.Sprintf("%-18s", e.Kind))
		lines = append(lines, fmt.Sprintf("  %s %s", kind, util.TruncateString(e.Path+": "+e.Message, maxW)))
	}
	return strings.Join(lines, "\n")
}
