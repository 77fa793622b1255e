package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sadopc/disklens/internal/ui/style"
	"github.com/sadopc/disklens/internal/util"
)

// ScanStatus is what the progress overlay shows. It is assembled from scan
// events.
type ScanStatus struct {
	Path         string
	FilesScanned int64
	BytesFound   int64
	CurrentPath  string
	Errors       int64
	Elapsed      time.Duration
}

// FilesPerSecond returns the scan rate so far.
func (s ScanStatus) FilesPerSecond() float64 {
	if s.Elapsed < time.Millisecond {
		return 0
	}
	return float64(s.FilesScanned) / s.Elapsed.Seconds()
}

// RenderScanProgress renders the scanning progress box. spinner is the
// current spinner frame.
func RenderScanProgress(theme style.Theme, status ScanStatus, spinner string, width int) string {
	boxWidth := 60
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 0 {
		boxWidth = 0
	}

	var lines []string

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Render(spinner + " Scanning " + status.Path)
	lines = append(lines, ansi.Truncate(title, max(boxWidth-6, 1), "…"))
	lines = append(lines, "")

	filesLine := fmt.Sprintf("  Files:  %s", util.FormatCount(status.FilesScanned))
	sizeLine := fmt.Sprintf("  Size:   %s", util.FormatSize(status.BytesFound))
	speedLine := fmt.Sprintf("  Speed:  %s files/s", util.FormatCount(int64(status.FilesPerSecond())))

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	lines = append(lines, statStyle.Render(filesLine))
	lines = append(lines, statStyle.Render(sizeLine))
	lines = append(lines, statStyle.Render(speedLine))

	if status.Errors > 0 {
		errLine := fmt.Sprintf("  Errors: %d", status.Errors)
		lines = append(lines, theme.ErrorText.Render(errLine))
	}

	lines = append(lines, "")

	muted := lipgloss.NewStyle().Foreground(theme.TextMuted)
	if status.CurrentPath != "" {
		lines = append(lines, muted.Render(ansi.Truncate("  "+status.CurrentPath, max(boxWidth-6, 1), "…")))
	}
	elapsed := fmt.Sprintf("  Elapsed: %.1fs", status.Elapsed.Seconds())
	lines = append(lines, muted.Render(elapsed))

	content := strings.Join(lines, "\n")

	return theme.ModalStyle.
		Width(boxWidth).
		Render(content)
}
