package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/sadopc/disklens/internal/util"
)

// PruneStats reports what Prune removed.
type PruneStats struct {
	EntriesRemoved int
	TempRemoved    int
	BytesFreed     int64
	BytesKept      int64
}

// entryFiles groups the files that share one cache key.
type entryFiles struct {
	paths    []string
	size     int64
	modified time.Time
}

// removeFile is replaced in tests to simulate files that cannot be deleted.
var removeFile = os.Remove

// Prune evicts cache entries from dir: first every entry older than
// maxAgeDays, then the oldest remaining entries until the total size is at
// most maxSizeMB. Stray temporary files older than maxAgeDays are removed
// too. A bound of zero or less disables that bound. Load and Save never
// call this.
func Prune(dir string, maxSizeMB int64, maxAgeDays int, logger zerolog.Logger) (PruneStats, error) {
	logger = logger.With().Str("pkg", "cache").Logger()
	dir = filepath.Clean(dir)
	var stats PruneStats

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, err
	}

	var mu sync.Mutex
	entries := make(map[string]*entryFiles)
	var temps []entryFiles

	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir {
				return fastwalk.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !isCacheFile(name) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if strings.HasSuffix(name, util.TempSuffix) {
			temps = append(temps, entryFiles{paths: []string{path}, size: info.Size(), modified: info.ModTime()})
			return nil
		}
		key := strings.TrimSuffix(strings.TrimSuffix(name, TreeExt), MetaExt)
		e, ok := entries[key]
		if !ok {
			e = &entryFiles{}
			entries[key] = e
		}
		e.paths = append(e.paths, path)
		e.size += info.Size()
		if info.ModTime().After(e.modified) {
			e.modified = info.ModTime()
		}
		return nil
	}
	if err := fastwalk.Walk(&fastwalk.Config{Follow: false}, dir, walk); err != nil {
		return stats, err
	}

	var cutoff time.Time
	if maxAgeDays > 0 {
		cutoff = time.Now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	}
	expired := func(t time.Time) bool { return !cutoff.IsZero() && t.Before(cutoff) }

	var errs []error
	remove := func(e entryFiles) bool {
		ok := true
		for _, p := range e.paths {
			if err := removeFile(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
				ok = false
			}
		}
		if ok {
			stats.BytesFreed += e.size
		}
		return ok
	}

	for _, t := range temps {
		if expired(t.modified) && remove(t) {
			stats.TempRemoved++
		}
	}

	live := make([]entryFiles, 0, len(entries))
	var total int64
	for _, e := range entries {
		if expired(e.modified) {
			if remove(*e) {
				stats.EntriesRemoved++
			}
			continue
		}
		live = append(live, *e)
		total += e.size
	}

	if maxSizeMB > 0 {
		limit := maxSizeMB * 1024 * 1024
		sort.Slice(live, func(i, j int) bool { return live[i].modified.Before(live[j].modified) })
		for len(live) > 0 && total > limit {
			if remove(live[0]) {
				stats.EntriesRemoved++
				total -= live[0].size
			}
			live = live[1:]
		}
	}
	stats.BytesKept = total

	logger.Info().
		Str("dir", dir).
		Int("entries_removed", stats.EntriesRemoved).
		Int("temp_removed", stats.TempRemoved).
		Str("freed", humanize.IBytes(uint64(stats.BytesFreed))).
		Str("kept", humanize.IBytes(uint64(stats.BytesKept))).
		Msg("cache pruned")
	return stats, errors.Join(errs...)
}

// DefaultDir returns the per-user cache directory for this tool.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "disklens")
	}
	return filepath.Join(os.TempDir(), "disklens-cache")
}
