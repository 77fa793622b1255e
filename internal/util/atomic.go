package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// TempSuffix marks files that are still being written. Readers must never
// treat a file with this suffix as complete.
const TempSuffix = ".tmp"

// WriteFileAtomic writes path through a temporary sibling file which is
// synced and then renamed over path, so readers see either the old content
// or the new content and never a partial file. write receives a buffered
// writer; if it fails, the temporary file is removed and path is untouched.
func WriteFileAtomic(path string, perm os.FileMode, write func(w io.Writer) error) (retErr error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("cannot create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil && runtime.GOOS != "windows" {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}
