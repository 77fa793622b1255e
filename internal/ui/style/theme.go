// Package style holds the colors and styles used to render scan summaries,
// the progress view and the browser.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the palette plus the styles built from it.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Error   lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Size bars blend from GradientStart to GradientEnd.
	GradientStart lipgloss.Color
	GradientEnd   lipgloss.Color

	HeaderStyle lipgloss.Style
	DirName     lipgloss.Style
	FileName    lipgloss.Style
	MergedName  lipgloss.Style
	SizeText    lipgloss.Style
	PercentText lipgloss.Style
	ErrorText   lipgloss.Style
	ModalStyle  lipgloss.Style
	ModalTitle  lipgloss.Style

	// Browser
	SelectedRow     lipgloss.Style
	CursorIndicator lipgloss.Style
	Breadcrumb      lipgloss.Style
	StatusBar       lipgloss.Style
}

// DefaultTheme returns the dark theme.
func DefaultTheme() Theme {
	t := Theme{
		Primary:       "#7B2FBE",
		Accent:        "#61AFEF",
		Error:         "#E06C75",
		TextPrimary:   "#CDD6F4",
		TextSecondary: "#BAC2DE",
		TextMuted:     "#6C7086",
		GradientStart: "#7B2FBE",
		GradientEnd:   "#00D4AA",
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	t.HeaderStyle = fg(t.TextPrimary).Bold(true)
	t.DirName = fg(t.Accent).Bold(true)
	t.FileName = fg(t.TextSecondary)
	t.MergedName = fg(t.TextMuted).Italic(true)
	t.SizeText = fg(t.TextMuted).Align(lipgloss.Right)
	t.PercentText = fg(t.TextMuted).Width(6).Align(lipgloss.Right)
	t.ErrorText = fg(t.Error)
	t.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2)
	t.ModalTitle = fg(t.Primary).Bold(true)

	t.SelectedRow = lipgloss.NewStyle().Background(lipgloss.Color("#313244"))
	t.CursorIndicator = fg(t.Primary).Bold(true)
	t.Breadcrumb = fg(t.TextSecondary)
	t.StatusBar = fg(t.TextSecondary).Background(lipgloss.Color("#1E1E2E"))

	return t
}

// GradientColor returns the bar color at ratio (0..1) along the gradient,
// blended in Lab space.
func (t Theme) GradientColor(ratio float64) lipgloss.Color {
	switch {
	case ratio <= 0:
		return t.GradientStart
	case ratio >= 1:
		return t.GradientEnd
	}
	from, _ := colorful.Hex(string(t.GradientStart))
	to, _ := colorful.Hex(string(t.GradientEnd))
	return lipgloss.Color(from.BlendLab(to, ratio).Hex())
}

// BarGradient renders a bar width cells wide with ratio of it filled. Every
// filled cell gets its own color from the gradient; the rest is a dim rule.
func (t Theme) BarGradient(width int, ratio float64) string {
	if width <= 0 {
		return ""
	}
	filled := int(max(ratio, 0) * float64(width))
	filled = min(filled, width)

	var b strings.Builder
	last := float64(max(width-1, 1))
	for i := range filled {
		b.WriteString(lipgloss.NewStyle().Foreground(t.GradientColor(float64(i) / last)).Render("━"))
	}
	if rest := width - filled; rest > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(strings.Repeat("─", rest)))
	}
	return b.String()
}
