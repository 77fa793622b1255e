package scanner

import (
	"context"

	"github.com/sadopc/disklens/internal/events"
	"github.com/sadopc/disklens/internal/model"
)

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// MaxDepth stops descending below this many levels; directories at the
	// limit appear without children. nil means unlimited; 0 returns a childless
	// root and 1 lists the root's entries only.
	MaxDepth *int
	// MaxConcurrentIO bounds simultaneous directory reads (0 = auto)
	MaxConcurrentIO int
	// FollowSymlinks follows symbolic links (default: false)
	FollowSymlinks bool
	// DisableGC disables garbage collection during scan for speed
	DisableGC bool
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() ScanOptions {
	return ScanOptions{
		MaxDepth:        nil,
		MaxConcurrentIO: 0,
		FollowSymlinks:  false,
		DisableGC:       false,
	}
}

// Depth is a convenience for setting ScanOptions.MaxDepth.
func Depth(n int) *int {
	return &n
}

// Scanner is the interface for directory scanning.
type Scanner interface {
	// Scan builds the tree under path. Lifecycle and progress events are sent
	// to sink, which may be nil.
	Scan(ctx context.Context, path string, opts ScanOptions, sink events.Sink) (*model.ScanResult, error)
}
