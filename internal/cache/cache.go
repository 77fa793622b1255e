// Package cache persists completed scan results keyed by their root path and
// hands them back only while the root is provably unchanged.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Version is bumped whenever the tree or meta encoding changes.
	Version = 1

	TreeExt = ".tree"
	MetaExt = ".meta"
)

// meta is the structured half of a cache entry.
type meta struct {
	Version       int               `json:"version"`
	OriginalPath  string            `json:"original_path"`
	ScanTimestamp time.Time         `json:"scan_timestamp"`
	Duration      time.Duration     `json:"duration_ns"`
	TotalSize     int64             `json:"total_size"`
	TotalFiles    int64             `json:"total_files"`
	TotalDirs     int64             `json:"total_dirs"`
	Errors        []model.ScanError `json:"errors,omitempty"`
	RootMtime     *time.Time        `json:"root_mtime,omitempty"`
	RootInode     *uint64           `json:"root_inode,omitempty"`
}

// Cache stores scan results under a directory as <hash>.tree and
// <hash>.meta pairs. It never evicts; see Prune.
type Cache struct {
	dir    string
	logger zerolog.Logger
}

// New returns a cache rooted at dir. The directory is created on first Save.
func New(dir string, logger zerolog.Logger) *Cache {
	return &Cache{
		dir:    dir,
		logger: logger.With().Str("pkg", "cache").Logger(),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Key returns the file stem used for path.
func Key(path string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(path))
}

func (c *Cache) files(path string) (tree, metaFile string) {
	stem := filepath.Join(c.dir, Key(path))
	return stem + TreeExt, stem + MetaExt
}

// Load returns the cached result for path if every validity check passes.
// Anything else, including unreadable or corrupt files, is a miss.
func (c *Cache) Load(path string) (*model.ScanResult, bool) {
	treeFile, metaFile := c.files(path)

	if _, err := os.Stat(treeFile); err != nil {
		return c.miss(path, "tree file missing")
	}
	data, err := os.ReadFile(metaFile)
	if err != nil {
		return c.miss(path, "meta file missing")
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return c.miss(path, "meta file corrupt")
	}
	if m.Version != Version {
		return c.miss(path, "version mismatch")
	}
	if m.OriginalPath != path {
		return c.miss(path, "path mismatch")
	}

	info, err := os.Stat(path)
	if err != nil {
		return c.miss(path, "root not readable")
	}
	if m.RootMtime != nil && !info.ModTime().Equal(*m.RootMtime) {
		return c.miss(path, "root modified")
	}
	if ino, ok := rootInode(info); ok && m.RootInode != nil && ino != *m.RootInode {
		return c.miss(path, "root inode changed")
	}

	root, err := readTree(treeFile)
	if err != nil {
		c.logger.Debug().Str("path", path).Err(err).Msg("tree decode failed")
		return c.miss(path, "tree file corrupt")
	}
	if root.Path != path {
		return c.miss(path, "tree root mismatch")
	}

	c.logger.Debug().Str("path", path).Msg("cache hit")
	return &model.ScanResult{
		Root:       root,
		TotalSize:  m.TotalSize,
		TotalFiles: m.TotalFiles,
		TotalDirs:  m.TotalDirs,
		Duration:   m.Duration,
		Errors:     m.Errors,
		Timestamp:  m.ScanTimestamp,
		ScanPath:   m.OriginalPath,
	}, true
}

func (c *Cache) miss(path, reason string) (*model.ScanResult, bool) {
	c.logger.Debug().Str("path", path).Str("reason", reason).Msg("cache miss")
	return nil, false
}

// Save writes result under its scan path. Each file is replaced atomically.
func (c *Cache) Save(result *model.ScanResult) error {
	if result == nil || result.Root == nil {
		return errors.New("cache: nothing to save")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	m := meta{
		Version:       Version,
		OriginalPath:  result.ScanPath,
		ScanTimestamp: result.Timestamp,
		Duration:      result.Duration,
		TotalSize:     result.TotalSize,
		TotalFiles:    result.TotalFiles,
		TotalDirs:     result.TotalDirs,
		Errors:        result.Errors,
	}
	// Prefer the identity captured during the scan; fall back to the
	// current root metadata.
	if !result.Root.Modified.IsZero() {
		mt := result.Root.Modified
		m.RootMtime = &mt
	}
	if result.Root.Inode != 0 {
		ino := result.Root.Inode
		m.RootInode = &ino
	}
	if m.RootMtime == nil || m.RootInode == nil {
		if info, err := os.Stat(result.ScanPath); err == nil {
			if m.RootMtime == nil {
				mt := info.ModTime()
				m.RootMtime = &mt
			}
			if ino, ok := rootInode(info); ok && m.RootInode == nil {
				m.RootInode = &ino
			}
		}
	}

	treeFile, metaFile := c.files(result.ScanPath)
	if err := util.WriteFileAtomic(treeFile, 0o644, func(w io.Writer) error {
		sw := snappy.NewBufferedWriter(w)
		if err := gob.NewEncoder(sw).Encode(result.Root); err != nil {
			return err
		}
		return sw.Close()
	}); err != nil {
		return fmt.Errorf("write cache tree: %w", err)
	}

	data, err := json.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode cache meta: %w", err)
	}
	if err := util.WriteFileAtomic(metaFile, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}

	c.logger.Debug().Str("path", result.ScanPath).Str("key", Key(result.ScanPath)).Msg("cache saved")
	return nil
}

func readTree(file string) (*model.Node, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var root model.Node
	if err := gob.NewDecoder(snappy.NewReader(f)).Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// isCacheFile reports whether name is a tree, meta or temporary file
// written by this package.
func isCacheFile(name string) bool {
	return strings.HasSuffix(name, TreeExt) ||
		strings.HasSuffix(name, MetaExt) ||
		strings.HasSuffix(name, util.TempSuffix)
}

// Clear removes every cache file in the cache directory. A missing
// directory is not an error.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}

	var errs []error
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFile(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	c.logger.Debug().Str("dir", c.dir).Int("removed", removed).Msg("cache cleared")
	return errors.Join(errs...)
}
