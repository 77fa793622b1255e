//go:build linux || darwin

package config

import (
	"math"

	"golang.org/x/sys/unix"
)

// fdLimit returns the soft RLIMIT_NOFILE, or 0 when it is unknown or
// effectively unlimited.
func fdLimit() uint64 {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0
	}
	if rlim.Cur > math.MaxInt32 {
		return 0
	}
	return rlim.Cur
}
