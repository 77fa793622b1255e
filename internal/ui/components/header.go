package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/ui/style"
	"github.com/sadopc/disklens/internal/util"
)

// RenderHeader renders the title line: tool name, scanned path and totals.
// cached marks a result served from the cache.
func RenderHeader(theme style.Theme, result *model.ScanResult, cached bool, width int) string {
	if result == nil || width < 10 {
		return ""
	}

	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("disklens")

	stats := fmt.Sprintf("%s files  %s dirs  %s",
		util.FormatCount(result.TotalFiles),
		util.FormatCount(result.TotalDirs),
		util.FormatSize(result.TotalSize),
	)
	if cached {
		stats += "  (cached)"
	}
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	// Path gets whatever space remains
	pathMaxW := width - titleW - statsW - 3 // 3 for "  " separator + safety
	pathStr := result.ScanPath
	if pathMaxW > 5 {
		pathStr = util.TruncateString(pathStr, pathMaxW)
	} else {
		pathStr = ""
	}

	pathStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + pathStr)
	pathW := lipgloss.Width(pathStyled)

	gap := width - titleW - pathW - statsW
	if gap < 1 {
		gap = 1
	}

	line := titleStyled + pathStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Render(line)
}

// RenderErrorIndicator renders the one-line error count, or nothing when
// the scan was clean.
func RenderErrorIndicator(theme style.Theme, result *model.ScanResult) string {
	if result == nil || len(result.Errors) == 0 {
		return ""
	}
	counts := result.ErrorsByKind()
	var parts []string
	for _, k := range []model.ErrorKind{model.ErrPermissionDenied, model.ErrNotFound, model.ErrSymlinkCycle, model.ErrIO, model.ErrOther} {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", k, n))
		}
	}
	line := fmt.Sprintf("! %d errors (%s)  use --errors to list", len(result.Errors), strings.Join(parts, ", "))
	return theme.ErrorText.Render(line)
}
