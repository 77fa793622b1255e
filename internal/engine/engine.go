// Package engine ties the scanner to the cache: a root that is provably
// unchanged is served from disk, anything else is scanned and stored.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sadopc/disklens/internal/cache"
	"github.com/sadopc/disklens/internal/config"
	"github.com/sadopc/disklens/internal/events"
	"github.com/sadopc/disklens/internal/model"
	"github.com/sadopc/disklens/internal/scanner"
)

// Engine runs analyses. It is safe for concurrent use; concurrent analyses
// of the same root share one scan.
type Engine struct {
	scanner scanner.Scanner
	cache   *cache.Cache
	opts    scanner.ScanOptions
	logger  zerolog.Logger
	group   singleflight.Group
}

// New returns an engine. A nil cache disables caching.
func New(s scanner.Scanner, c *cache.Cache, opts scanner.ScanOptions, logger zerolog.Logger) *Engine {
	return &Engine{
		scanner: s,
		cache:   c,
		opts:    opts,
		logger:  logger.With().Str("pkg", "engine").Logger(),
	}
}

// ScanOptions maps settings onto scanner options.
func ScanOptions(s config.Settings) scanner.ScanOptions {
	opts := scanner.DefaultOptions()
	if s.MaxDepth != nil {
		opts.MaxDepth = scanner.Depth(*s.MaxDepth)
	}
	opts.MaxConcurrentIO = s.MaxConcurrentIO
	opts.FollowSymlinks = s.FollowSymlinks
	return opts
}

// NewFromSettings builds the parallel scanner and, unless noCache is set,
// the cache described by s.
func NewFromSettings(s config.Settings, noCache bool, logger zerolog.Logger) *Engine {
	var c *cache.Cache
	if !noCache {
		c = cache.New(s.CacheDir, logger)
	}
	ps := scanner.NewParallelScanner().WithLogger(logger)
	return New(ps, c, ScanOptions(s), logger)
}

// Cache returns the engine's cache, or nil when caching is disabled.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// Canonical resolves path to the absolute, symlink-free form used as the
// scan and cache key.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

// Analyze returns the scan result for path and whether it came from the
// cache. Events go to sink only when this call performs the scan itself;
// a call that joins an in-flight scan of the same root, or is served from
// the cache, sends nothing. A canceled scan is returned with its error and
// is not cached. A call that joined a scan canceled by another caller's
// context starts a scan of its own while its own context is live.
func (e *Engine) Analyze(ctx context.Context, path string, sink events.Sink) (*model.ScanResult, bool, error) {
	root, err := Canonical(path)
	if err != nil {
		return nil, false, err
	}

	if e.cache != nil {
		if result, ok := e.cache.Load(root); ok {
			e.logger.Info().Str("path", root).Msg("using cached scan")
			return result, true, nil
		}
	}

	for {
		v, err, shared := e.group.Do(root, func() (any, error) {
			result, err := e.scanner.Scan(ctx, root, e.opts, sink)
			if err != nil {
				return result, err
			}
			if e.cache != nil {
				if err := e.cache.Save(result); err != nil {
					e.logger.Warn().Str("path", root).Err(err).Msg("cache save failed")
				}
			}
			return result, nil
		})
		if shared {
			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				e.logger.Debug().Str("path", root).Msg("joined scan was canceled, rescanning")
				continue
			}
			e.logger.Debug().Str("path", root).Msg("joined in-flight scan")
		}
		result, _ := v.(*model.ScanResult)
		return result, false, err
	}
}
