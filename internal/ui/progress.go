// Package ui renders scan progress and results in the terminal.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/disklens/internal/events"
	"github.com/sadopc/disklens/internal/ui/components"
	"github.com/sadopc/disklens/internal/ui/style"
)

// EventMsg wraps one event read from the event channel.
type EventMsg struct {
	Event events.Event
}

// EventsClosedMsg is sent once the event channel has been closed.
type EventsClosedMsg struct{}

type tickMsg time.Time

// ProgressModel is a Bubble Tea model that shows live scan progress. It
// drains the event channel until it is closed and then quits; cancelling
// only calls cancel, the scan owner still closes the channel.
type ProgressModel struct {
	events <-chan events.Event
	cancel context.CancelFunc

	status    components.ScanStatus
	start     time.Time
	completed bool
	closed    bool
	canceled  bool
	width     int

	spinner spinner.Model
	theme   style.Theme
	keys    KeyMap
}

// NewProgressModel creates a progress view for a scan of path.
func NewProgressModel(path string, ch <-chan events.Event, cancel context.CancelFunc) *ProgressModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	theme := style.DefaultTheme()
	sp.Style = sp.Style.Foreground(theme.Primary)
	return &ProgressModel{
		events:  ch,
		cancel:  cancel,
		status:  components.ScanStatus{Path: path},
		start:   time.Now(),
		width:   80,
		spinner: sp,
		theme:   theme,
		keys:    DefaultKeyMap(),
	}
}

func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.spinner.Tick, tickCmd())
}

func (m *ProgressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case EventMsg:
		m.apply(msg.Event)
		return m, m.waitForEvent()

	case EventsClosedMsg:
		m.closed = true
		return m, tea.Quit

	case tickMsg:
		if m.closed {
			return m, nil
		}
		if !m.completed {
			m.status.Elapsed = time.Since(m.start)
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.ForceQuit) {
			if !m.canceled && m.cancel != nil {
				m.cancel()
			}
			m.canceled = true
		}
		return m, nil
	}
	return m, nil
}

func (m *ProgressModel) apply(ev events.Event) {
	switch e := ev.(type) {
	case events.ScanStarted:
		m.status.Path = e.Path
		m.start = time.Now()
	case events.Progress:
		m.status.FilesScanned = e.FilesScanned
		m.status.BytesFound = e.TotalBytes
		m.status.CurrentPath = e.CurrentPath
	case events.ScanError:
		m.status.Errors++
	case events.ScanCompleted:
		m.status.FilesScanned = e.TotalFiles
		m.status.BytesFound = e.TotalBytes
		m.status.Elapsed = e.Duration
		m.completed = true
	}
}

func (m *ProgressModel) View() string {
	if m.closed {
		return ""
	}
	spin := m.spinner.View()
	if m.canceled {
		spin = m.theme.ErrorText.Render("cancelling")
	}
	return components.RenderScanProgress(m.theme, m.status, spin, m.width) + "\n"
}

// Status returns what the view currently shows.
func (m *ProgressModel) Status() components.ScanStatus { return m.status }

// Canceled reports whether the user asked to stop the scan.
func (m *ProgressModel) Canceled() bool { return m.canceled }
