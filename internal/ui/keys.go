package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the progress view and the browser.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Enter    key.Binding
	Back     key.Binding

	SortSize  key.Binding
	SortName  key.Binding
	SortCount key.Binding
	SortMtime key.Binding

	Errors    key.Binding
	Help      key.Binding
	Close     key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("enter", "enter dir"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "h"),
			key.WithHelp("backspace", "parent"),
		),
		SortSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort: size"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort: name"),
		),
		SortCount: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "sort: count"),
		),
		SortMtime: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "sort: mtime"),
		),
		Errors: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "scan errors"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}
