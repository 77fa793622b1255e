// Package config holds the settings consumed by the scanner, the cache and
// the presentation layer, with defaults tuned to the local machine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/sadopc/disklens/internal/cache"
)

const (
	configDirName  = "disklens"
	configFileName = "config.yaml"

	minConcurrentIO = 16
)

// StorageType is the detected medium behind the scanned filesystem.
type StorageType int

const (
	StorageUnknown StorageType = iota
	StorageSSD
	StorageHDD
)

func (t StorageType) String() string {
	switch t {
	case StorageSSD:
		return "ssd"
	case StorageHDD:
		return "hdd"
	default:
		return "unknown"
	}
}

// LogSettings selects the log level and output format.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Settings is the full runtime configuration.
type Settings struct {
	MaxDepth        *int        `yaml:"max_depth,omitempty"`
	MaxConcurrentIO int         `yaml:"max_concurrent_io"`
	FollowSymlinks  bool        `yaml:"follow_symlinks"`
	MergeThreshold  float64     `yaml:"merge_threshold"`
	IgnorePatterns  []string    `yaml:"ignore_patterns"`
	CacheDir        string      `yaml:"cache_dir"`
	CacheMaxSizeMB  int64       `yaml:"cache_max_size_mb"`
	CacheMaxAgeDays int         `yaml:"cache_max_age_days"`
	Log             LogSettings `yaml:"log"`
}

// fileSettings mirrors Settings with pointers so absent keys keep defaults.
type fileSettings struct {
	MaxDepth        *int     `yaml:"max_depth"`
	MaxConcurrentIO *int     `yaml:"max_concurrent_io"`
	FollowSymlinks  *bool    `yaml:"follow_symlinks"`
	MergeThreshold  *float64 `yaml:"merge_threshold"`
	IgnorePatterns  []string `yaml:"ignore_patterns"`
	CacheDir        *string  `yaml:"cache_dir"`
	CacheMaxSizeMB  *int64   `yaml:"cache_max_size_mb"`
	CacheMaxAgeDays *int     `yaml:"cache_max_age_days"`
	Log             *struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns settings for this machine: I/O concurrency follows the
// detected storage medium and is capped below the open-file limit.
func Default() Settings {
	return Settings{
		MaxDepth:        nil,
		MaxConcurrentIO: capConcurrency(concurrencyFor(detectStorage()), fdLimit()),
		FollowSymlinks:  false,
		MergeThreshold:  0.01,
		IgnorePatterns:  nil,
		CacheDir:        cache.DefaultDir(),
		CacheMaxSizeMB:  512,
		CacheMaxAgeDays: 7,
		Log: LogSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// Storage returns the detected storage medium.
func Storage() StorageType {
	return detectStorage()
}

func concurrencyFor(t StorageType) int {
	switch t {
	case StorageSSD:
		return 128
	case StorageHDD:
		return 32
	default:
		return 64
	}
}

// capConcurrency keeps a quarter of the descriptor limit free, without
// going below minConcurrentIO. A zero limit means unknown.
func capConcurrency(n int, limit uint64) int {
	if limit == 0 {
		return n
	}
	usable := int(limit * 3 / 4)
	if n > usable {
		n = usable
	}
	if n < minConcurrentIO {
		n = minConcurrentIO
	}
	return n
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads a YAML file over Default. An empty path means DefaultPath; a
// missing file yields the defaults.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return settings, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config %s: %w", path, err)
	}

	var stored fileSettings
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return settings, fmt.Errorf("parse config %s: %w", path, err)
	}
	settings = merge(settings, stored)
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("config %s: %w", path, err)
	}
	return settings, nil
}

func merge(base Settings, stored fileSettings) Settings {
	merged := base
	if stored.MaxDepth != nil {
		d := *stored.MaxDepth
		merged.MaxDepth = &d
	}
	if stored.MaxConcurrentIO != nil {
		merged.MaxConcurrentIO = *stored.MaxConcurrentIO
	}
	if stored.FollowSymlinks != nil {
		merged.FollowSymlinks = *stored.FollowSymlinks
	}
	if stored.MergeThreshold != nil {
		merged.MergeThreshold = *stored.MergeThreshold
	}
	if stored.IgnorePatterns != nil {
		merged.IgnorePatterns = stored.IgnorePatterns
	}
	if stored.CacheDir != nil {
		merged.CacheDir = *stored.CacheDir
	}
	if stored.CacheMaxSizeMB != nil {
		merged.CacheMaxSizeMB = *stored.CacheMaxSizeMB
	}
	if stored.CacheMaxAgeDays != nil {
		merged.CacheMaxAgeDays = *stored.CacheMaxAgeDays
	}
	if stored.Log != nil {
		if stored.Log.Level != nil {
			merged.Log.Level = *stored.Log.Level
		}
		if stored.Log.Format != nil {
			merged.Log.Format = *stored.Log.Format
		}
	}
	return merged
}

// Validate rejects values the scanner or cache cannot work with.
func (s Settings) Validate() error {
	var errs []error
	if s.MaxDepth != nil && *s.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must be non-negative, got %d", *s.MaxDepth))
	}
	if s.MaxConcurrentIO < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_io must be at least 1, got %d", s.MaxConcurrentIO))
	}
	if s.MergeThreshold < 0 || s.MergeThreshold > 1 {
		errs = append(errs, fmt.Errorf("merge_threshold must be within [0, 1], got %g", s.MergeThreshold))
	}
	if s.CacheMaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("cache_max_size_mb must be non-negative, got %d", s.CacheMaxSizeMB))
	}
	if s.CacheMaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("cache_max_age_days must be non-negative, got %d", s.CacheMaxAgeDays))
	}
	for _, p := range s.IgnorePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("ignore_patterns: bad pattern %q", p))
		}
	}
	return errors.Join(errs...)
}

// Ignored reports whether name matches one of the ignore patterns.
func (s Settings) Ignored(name string) bool {
	for _, p := range s.IgnorePatterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
