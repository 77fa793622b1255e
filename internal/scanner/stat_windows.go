//go:build windows

package scanner

import "os"

// statInfo holds platform-specific file metadata.
type statInfo struct {
	inode uint64
	dev   uint64
	ok    bool // true if platform stat was available
}

// getStatInfo on Windows reports no inode; cache validation then relies on
// mtime alone.
func getStatInfo(info os.FileInfo) statInfo {
	return statInfo{}
}
