package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/disklens/internal/events"
)

func TestProgressModel_AppliesEvents(t *testing.T) {
	m := NewProgressModel("/start", make(chan events.Event), nil)

	_, cmd := m.Update(EventMsg{Event: events.ScanStarted{Path: "/data"}})
	if cmd == nil {
		t.Fatal("expected to keep waiting for events")
	}
	m.Update(EventMsg{Event: events.Progress{FilesScanned: 10, TotalBytes: 100, CurrentPath: "/data/x"}})
	m.Update(EventMsg{Event: events.ScanError{Path: "/data/y", Message: "denied"}})
	m.Update(EventMsg{Event: events.ScanError{Path: "/data/z", Message: "denied"}})

	s := m.Status()
	if s.Path != "/data" || s.FilesScanned != 10 || s.BytesFound != 100 || s.CurrentPath != "/data/x" || s.Errors != 2 {
		t.Fatalf("unexpected status %+v", s)
	}

	m.Update(EventMsg{Event: events.ScanCompleted{TotalFiles: 12, TotalBytes: 150, Duration: time.Second}})
	s = m.Status()
	if s.FilesScanned != 12 || s.BytesFound != 150 || s.Elapsed != time.Second {
		t.Fatalf("unexpected final status %+v", s)
	}
	if m.View() == "" {
		t.Fatal("expected a view before the channel closes")
	}
}

func TestProgressModel_QuitsWhenChannelCloses(t *testing.T) {
	ch := make(chan events.Event)
	close(ch)
	m := NewProgressModel("/data", ch, nil)

	msg := m.waitForEvent()()
	if _, ok := msg.(EventsClosedMsg); !ok {
		t.Fatalf("expected EventsClosedMsg, got %T", msg)
	}

	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after close")
	}
}

func TestProgressModel_QuitKeyCancelsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	m := NewProgressModel("/data", make(chan events.Event), func() {
		calls++
		cancel()
	})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if !m.Canceled() {
		t.Fatal("expected model to be canceled")
	}
	if calls != 1 {
		t.Fatalf("expected cancel to be called once, got %d", calls)
	}
	if ctx.Err() == nil {
		t.Fatal("expected context to be canceled")
	}
}

func TestProgressModel_ForwardsQueueEvents(t *testing.T) {
	q := events.NewQueue()
	m := NewProgressModel("/data", q.Events(), nil)
	q.Send(events.Progress{FilesScanned: 3})
	q.Close()

	for {
		msg := m.waitForEvent()()
		m.Update(msg)
		if _, ok := msg.(EventsClosedMsg); ok {
			break
		}
	}
	if m.Status().FilesScanned != 3 {
		t.Fatalf("FilesScanned = %d, want 3", m.Status().FilesScanned)
	}
}
