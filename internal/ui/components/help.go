package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/disklens/internal/ui/style"
)

var helpSections = []struct {
	name  string
	binds []struct{ key, desc string }
}{
	{
		name: "Navigation",
		binds: []struct{ key, desc string }{
			{"j/k", "Move down/up"},
			{"PgDn/PgUp", "Move a page"},
			{"l/Enter", "Enter directory"},
			{"h/Backspace", "Go to parent"},
		},
	},
	{
		name: "Sorting",
		binds: []struct{ key, desc string }{
			{"s", "Sort by size"},
			{"n", "Sort by name"},
			{"C", "Sort by item count"},
			{"M", "Sort by modification time"},
		},
	},
	{
		name: "General",
		binds: []struct{ key, desc string }{
			{"e", "Show/hide scan errors"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		},
	},
}

// RenderHelp renders the key binding overlay centered in width x height.
func RenderHelp(theme style.Theme, width, height int) string {
	boxWidth := min(60, width-4)

	lines := []string{theme.ModalTitle.Render("  disklens - Keyboard Shortcuts"), ""}
	for _, sec := range helpSections {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("  "+sec.name))
		for _, b := range sec.binds {
			key := lipgloss.NewStyle().
				Foreground(theme.Primary).
				Bold(true).
				Width(16).
				Render("    " + b.key)
			desc := lipgloss.NewStyle().Foreground(theme.TextSecondary).Render(b.desc)
			lines = append(lines, fmt.Sprintf("%s %s", key, desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  Press ? or Esc to close"))

	box := theme.ModalStyle.Width(max(boxWidth, 10)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
