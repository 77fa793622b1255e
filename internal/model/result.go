package model

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// ErrorKind classifies a recoverable scan failure.
type ErrorKind uint8

const (
	ErrPermissionDenied ErrorKind = iota
	ErrNotFound
	ErrSymlinkCycle
	ErrIO
	ErrOther
)

var errorKindNames = [...]string{
	ErrPermissionDenied: "permission_denied",
	ErrNotFound:         "not_found",
	ErrSymlinkCycle:     "symlink_cycle",
	ErrIO:               "io_error",
	ErrOther:            "other",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	if int(k) >= len(errorKindNames) {
		return nil, fmt.Errorf("unknown error kind %d", uint8(k))
	}
	return []byte(errorKindNames[k]), nil
}

func (k *ErrorKind) UnmarshalText(text []byte) error {
	for i, name := range errorKindNames {
		if name == string(text) {
			*k = ErrorKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// ClassifyError maps an OS error onto the scan error taxonomy.
func ClassifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	default:
		return ErrIO
	}
}

// ScanError records one entry or directory that could not be read.
type ScanError struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
}

// ScanResult is the complete, immutable output of one scan. The totals
// duplicate the root's aggregates for constant-time access.
type ScanResult struct {
	Root       *Node         `json:"root"`
	TotalSize  int64         `json:"total_size"`
	TotalFiles int64         `json:"total_files"`
	TotalDirs  int64         `json:"total_dirs"`
	Duration   time.Duration `json:"duration"`
	Errors     []ScanError   `json:"errors"`
	Timestamp  time.Time     `json:"timestamp"`
	ScanPath   string        `json:"scan_path"`
}

// NewScanResult assembles a result whose totals are taken from root.
func NewScanResult(root *Node, scanPath string, duration time.Duration, errs []ScanError, ts time.Time) *ScanResult {
	return &ScanResult{
		Root:       root,
		TotalSize:  root.Size,
		TotalFiles: root.FileCount,
		TotalDirs:  root.DirCount,
		Duration:   duration,
		Errors:     errs,
		Timestamp:  ts,
		ScanPath:   scanPath,
	}
}

// ErrorsByKind counts the recorded errors per kind.
func (r *ScanResult) ErrorsByKind() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, e := range r.Errors {
		counts[e.Kind]++
	}
	return counts
}
