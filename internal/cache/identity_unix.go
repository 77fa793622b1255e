//go:build !windows

package cache

import (
	"os"
	"syscall"
)

// rootInode returns the inode of info when the platform exposes one.
func rootInode(info os.FileInfo) (uint64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return stat.Ino, true
}
