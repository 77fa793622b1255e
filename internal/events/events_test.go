package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DeliversInOrderAfterClose(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 1000; i++ {
		q.Send(Progress{FilesScanned: int64(i)})
	}
	q.Close()

	var got []int64
	for e := range q.Events() {
		p, ok := e.(Progress)
		require.True(t, ok, "unexpected event %T", e)
		got = append(got, p.FilesScanned)
	}

	require.Len(t, got, 1000)
	for i, v := range got {
		assert.Equal(t, int64(i), v)
	}
}

func TestQueue_SendNeverBlocksWithoutReader(t *testing.T) {
	q := NewQueue()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			q.Send(ScanError{Path: "/x", Message: "denied"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Send blocked with no reader")
	}

	q.Close()
	n := 0
	for range q.Events() {
		n++
	}
	assert.Equal(t, 10000, n)
}

func TestQueue_ConcurrentSenders(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				q.Send(ScanStarted{Path: "/"})
			}
		}()
	}

	received := make(chan int)
	go func() {
		n := 0
		for range q.Events() {
			n++
		}
		received <- n
	}()

	wg.Wait()
	q.Close()
	assert.Equal(t, 2000, <-received)
}

func TestQueue_SendAfterCloseIsDropped(t *testing.T) {
	q := NewQueue()
	q.Send(ScanStarted{Path: "/a"})
	q.Close()
	q.Close()
	q.Send(ScanStarted{Path: "/b"})

	var got []Event
	for e := range q.Events() {
		got = append(got, e)
	}
	require.Len(t, got, 1)
	assert.Equal(t, ScanStarted{Path: "/a"}, got[0])
}

func TestSinkFunc(t *testing.T) {
	var got []Event
	var s Sink = SinkFunc(func(e Event) { got = append(got, e) })
	s.Send(ScanCompleted{TotalFiles: 3})
	Discard.Send(ScanCompleted{})
	require.Len(t, got, 1)
	assert.Equal(t, ScanCompleted{TotalFiles: 3}, got[0])
}
