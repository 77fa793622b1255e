//go:build windows

package cache

import "os"

// rootInode is unavailable on Windows; validation falls back to mtime.
func rootInode(info os.FileInfo) (uint64, bool) {
	return 0, false
}
