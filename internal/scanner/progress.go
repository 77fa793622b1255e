package scanner

import (
	"sync/atomic"
	"time"
)

// Progress is a point-in-time copy of a Tracker. Each field is read
// atomically on its own; fields are not mutually consistent.
type Progress struct {
	// CurrentPath is the directory most recently finished.
	CurrentPath string
	// FilesScanned is the total files scanned so far.
	FilesScanned int64
	// DirsScanned is the total directories scanned so far.
	DirsScanned int64
	// BytesFound is the total bytes found so far.
	BytesFound int64
	// Errors is the count of errors encountered.
	Errors int64
	// StartTime is when the scan began.
	StartTime time.Time
	// Duration is elapsed time.
	Duration time.Duration
	// FilesPerSecond is FilesScanned over Duration.
	FilesPerSecond float64
}

// ItemsPerSecond returns the combined file and directory rate.
func (p Progress) ItemsPerSecond() float64 {
	if p.Duration < time.Microsecond {
		return 0
	}
	return float64(p.FilesScanned+p.DirsScanned) / p.Duration.Seconds()
}

// Tracker holds the live counters of one scan. All methods are safe for
// concurrent use without further locking.
type Tracker struct {
	filesScanned atomic.Int64
	dirsScanned  atomic.Int64
	bytesFound   atomic.Int64
	errCount     atomic.Int64
	currentPath  atomic.Pointer[string]
	startTime    time.Time
}

// NewTracker returns a zeroed tracker whose clock starts now.
func NewTracker() *Tracker {
	return &Tracker{startTime: time.Now()}
}

func (t *Tracker) IncFiles() { t.filesScanned.Add(1) }

func (t *Tracker) IncDirs() { t.dirsScanned.Add(1) }

func (t *Tracker) AddBytes(n int64) { t.bytesFound.Add(n) }

func (t *Tracker) IncErrors() { t.errCount.Add(1) }

// Elapsed returns the time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration { return time.Since(t.startTime) }

// SetCurrentPath records the path being worked on. Concurrent writers race;
// the last one wins.
func (t *Tracker) SetCurrentPath(path string) {
	t.currentPath.Store(&path)
}

// Snapshot copies the counters.
func (t *Tracker) Snapshot() Progress {
	p := Progress{
		FilesScanned: t.filesScanned.Load(),
		DirsScanned:  t.dirsScanned.Load(),
		BytesFound:   t.bytesFound.Load(),
		Errors:       t.errCount.Load(),
		StartTime:    t.startTime,
		Duration:     t.Elapsed(),
	}
	if cp := t.currentPath.Load(); cp != nil {
		p.CurrentPath = *cp
	}
	if p.Duration >= time.Microsecond {
		p.FilesPerSecond = float64(p.FilesScanned) / p.Duration.Seconds()
	}
	return p
}
