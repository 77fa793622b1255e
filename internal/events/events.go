// Package events carries scan lifecycle and progress notifications from the
// scanner to whoever is presenting them.
package events

import (
	"sync"
	"time"
)

// Event is one notification. The concrete types below are the full set.
type Event interface {
	event()
}

// ScanStarted is sent once before any directory is read.
type ScanStarted struct {
	Path string
}

// Progress is sent at most once per throttle window.
type Progress struct {
	FilesScanned int64
	TotalBytes   int64
	CurrentPath  string
}

// ScanError is sent immediately for every recorded scan error.
type ScanError struct {
	Path    string
	Message string
}

// ScanCompleted is sent once after the root directory has been aggregated.
type ScanCompleted struct {
	TotalFiles int64
	TotalBytes int64
	Duration   time.Duration
}

func (ScanStarted) event()   {}
func (Progress) event()      {}
func (ScanError) event()     {}
func (ScanCompleted) event() {}

// Sink accepts events without blocking.
type Sink interface {
	Send(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Send(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Queue is an unbounded, single-direction event channel. Send never blocks;
// events are delivered on Events in send order. After Close, further sends
// are dropped and Events is closed once the backlog has been delivered.
// The consumer must drain Events until it is closed.
type Queue struct {
	mu     sync.Mutex
	buf    []Event
	closed bool
	wake   chan struct{}
	out    chan Event
}

// NewQueue creates a queue and starts its delivery goroutine.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
	}
	go q.pump()
	return q
}

// Send enqueues e. It is safe for concurrent use.
func (q *Queue) Send(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.buf = append(q.buf, e)
	q.mu.Unlock()
	q.signal()
}

// Events returns the receive side of the queue.
func (q *Queue) Events() <-chan Event {
	return q.out
}

// Close stops accepting events. It is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) pump() {
	for {
		q.mu.Lock()
		if len(q.buf) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				close(q.out)
				return
			}
			<-q.wake
			continue
		}
		batch := q.buf
		q.buf = nil
		q.mu.Unlock()

		for _, e := range batch {
			q.out <- e
		}
	}
}
