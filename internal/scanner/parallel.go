package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/disklens/internal/events"
	"github.com/sadopc/disklens/internal/model"
)

// progressInterval is the minimum spacing between Progress events.
const progressInterval = 100 * time.Millisecond

// ParallelScanner implements Scanner with goroutine-per-directory parallelism.
// Directory reads are bounded by a permit pool; the permit is held only for
// the read and released before subdirectories are spawned.
type ParallelScanner struct {
	logger  zerolog.Logger
	tracker atomic.Pointer[Tracker]
}

// NewParallelScanner creates a new parallel scanner.
func NewParallelScanner() *ParallelScanner {
	return &ParallelScanner{logger: zerolog.Nop()}
}

// WithLogger sets the logger used for per-error debug output.
func (s *ParallelScanner) WithLogger(l zerolog.Logger) *ParallelScanner {
	s.logger = l.With().Str("pkg", "scanner").Logger()
	return s
}

// Progress returns a snapshot of the current or most recent scan. It is the
// zero Progress before the first scan starts.
func (s *ParallelScanner) Progress() Progress {
	t := s.tracker.Load()
	if t == nil {
		return Progress{}
	}
	return t.Snapshot()
}

// Scan walks path and returns the finished tree. Per-entry failures are
// recorded in the result and never abort the scan. If ctx ends early the
// partial result is returned together with ctx.Err().
func (s *ParallelScanner) Scan(ctx context.Context, path string, opts ScanOptions, sink events.Sink) (*model.ScanResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	absPath = resolved

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "scan", Path: absPath, Err: os.ErrInvalid}
	}

	// Optionally disable GC during scan
	if opts.DisableGC {
		oldGC := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(oldGC)
	}

	concurrency := opts.MaxConcurrentIO
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0) * 3
	}
	if sink == nil {
		sink = events.Discard
	}

	tracker := NewTracker()
	s.tracker.Store(tracker)

	w := &walker{
		opts:    opts,
		permits: newPermitPool(concurrency),
		tracker: tracker,
		sink:    sink,
		logger:  s.logger,
	}
	w.visited.Insert(absPath)

	s.logger.Debug().Str("path", absPath).Int("concurrency", concurrency).Msg("scan started")
	sink.Send(events.ScanStarted{Path: absPath})

	root := w.scanDir(ctx, absPath, rootName(absPath), info, 0)

	result := model.NewScanResult(root, absPath, tracker.Elapsed(), w.errs.Snapshot(), time.Now())
	if err := ctx.Err(); err != nil {
		s.logger.Debug().Str("path", absPath).Err(err).Msg("scan aborted")
		return result, err
	}

	sink.Send(events.ScanCompleted{
		TotalFiles: result.TotalFiles,
		TotalBytes: result.TotalSize,
		Duration:   result.Duration,
	})
	s.logger.Debug().
		Str("path", absPath).
		Int64("files", result.TotalFiles).
		Int64("dirs", result.TotalDirs).
		Int64("bytes", result.TotalSize).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("scan completed")
	return result, nil
}

func rootName(absPath string) string {
	name := filepath.Base(absPath)
	if name == string(filepath.Separator) || name == "." {
		return absPath
	}
	return name
}

// walker is the state shared by every directory task of one scan.
type walker struct {
	opts         ScanOptions
	permits      *permitPool
	visited      visitedSet
	errs         errorList
	tracker      *Tracker
	sink         events.Sink
	logger       zerolog.Logger
	lastProgress atomic.Int64
}

// entry is one directory entry with its lstat metadata.
type entry struct {
	path string
	name string
	info fs.FileInfo
}

// scanDir builds the node for one directory, scanning subdirectories in
// their own goroutines and joining them before aggregating.
func (w *walker) scanDir(ctx context.Context, path, name string, info fs.FileInfo, depth int) *model.Node {
	w.tracker.IncDirs()

	if w.opts.MaxDepth != nil && depth >= *w.opts.MaxDepth {
		return w.dirNode(path, name, info, nil)
	}
	if ctx.Err() != nil {
		return w.dirNode(path, name, info, nil)
	}

	var entries []entry
	var entryErrs []model.ScanError
	var readErr error
	if err := w.permits.Do(ctx, func() {
		entries, entryErrs, readErr = readDir(path)
	}); err != nil {
		return w.dirNode(path, name, info, nil)
	}
	if readErr != nil {
		w.recordError(path, model.ClassifyError(readErr), readErr)
		return w.dirNode(path, name, info, nil)
	}
	for _, e := range entryErrs {
		w.addError(e)
	}

	children := make([]*model.Node, 0, len(entries))
	var subdirs []entry
	var links []entry

	// Plain subdirectories claim their paths before any symlink is resolved,
	// so a link back into this level is always the one flagged as a cycle.
	for _, e := range entries {
		mode := e.info.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
			links = append(links, e)
		case mode.IsDir():
			// Already scanned through a followed link.
			if !w.visited.Insert(e.path) {
				continue
			}
			subdirs = append(subdirs, e)
		case mode.IsRegular():
			st := getStatInfo(e.info)
			children = append(children, model.NewFile(e.path, e.name, e.info.Size(), e.info.ModTime(), st.inode))
			w.tracker.IncFiles()
			w.tracker.AddBytes(e.info.Size())
		default:
			st := getStatInfo(e.info)
			children = append(children, model.NewOther(e.path, e.name, e.info.ModTime(), st.inode))
		}
	}

	for _, l := range links {
		node, dir := w.symlink(l)
		switch {
		case node != nil:
			children = append(children, node)
		case dir != nil:
			subdirs = append(subdirs, *dir)
		}
	}

	results := make([]*model.Node, len(subdirs))
	var wg sync.WaitGroup
	for i, d := range subdirs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					w.recordError(d.path, model.ErrOther, fmt.Errorf("scan task failed: %v", r))
					results[i] = w.dirNode(d.path, d.name, d.info, nil)
				}
			}()
			results[i] = w.scanDir(ctx, d.path, d.name, d.info, depth+1)
		}()
	}
	wg.Wait()
	children = append(children, results...)

	node := w.dirNode(path, name, info, children)
	w.tracker.SetCurrentPath(path)
	w.maybeSendProgress(path)
	return node
}

// symlink resolves a link entry. Exactly one of the results is non-nil when
// the entry contributes to the tree; both are nil when it was recorded as an
// error instead.
func (w *walker) symlink(e entry) (*model.Node, *entry) {
	if !w.opts.FollowSymlinks {
		st := getStatInfo(e.info)
		return model.NewSymlink(e.path, e.name, e.info.Size(), e.info.ModTime(), st.inode), nil
	}

	realPath, err := filepath.EvalSymlinks(e.path)
	if err != nil {
		w.recordError(e.path, model.ClassifyError(err), err)
		return nil, nil
	}
	target, err := os.Stat(realPath)
	if err != nil {
		w.recordError(e.path, model.ClassifyError(err), err)
		return nil, nil
	}

	if target.IsDir() {
		if !w.visited.Insert(realPath) {
			w.recordError(e.path, model.ErrSymlinkCycle,
				fmt.Errorf("symlink cycle detected: %s -> %s", e.path, realPath))
			return nil, nil
		}
		return nil, &entry{path: realPath, name: filepath.Base(realPath), info: target}
	}

	st := getStatInfo(target)
	w.tracker.IncFiles()
	w.tracker.AddBytes(target.Size())
	return model.NewFile(e.path, e.name, target.Size(), target.ModTime(), st.inode), nil
}

func (w *walker) dirNode(path, name string, info fs.FileInfo, children []*model.Node) *model.Node {
	n := model.NewDirectory(path, name, children)
	if info != nil {
		n.Modified = info.ModTime()
		n.Inode = getStatInfo(info).inode
	}
	return n
}

func (w *walker) recordError(path string, kind model.ErrorKind, err error) {
	w.addError(model.ScanError{Path: path, Kind: kind, Message: err.Error()})
}

func (w *walker) addError(e model.ScanError) {
	w.errs.Append(e)
	w.tracker.IncErrors()
	w.sink.Send(events.ScanError{Path: e.Path, Message: e.Message})
	w.logger.Debug().Str("path", e.Path).Stringer("kind", e.Kind).Msg(e.Message)
}

// maybeSendProgress emits a Progress event unless one was sent within the
// last progressInterval. Only the caller that wins the swap sends.
func (w *walker) maybeSendProgress(path string) {
	now := time.Now().UnixNano()
	last := w.lastProgress.Load()
	if now-last < int64(progressInterval) {
		return
	}
	if !w.lastProgress.CompareAndSwap(last, now) {
		return
	}
	p := w.tracker.Snapshot()
	w.sink.Send(events.Progress{
		FilesScanned: p.FilesScanned,
		TotalBytes:   p.BytesFound,
		CurrentPath:  path,
	})
}

// readDir is swapped out by tests that need a failing directory task.
var readDir = readDirBatch

// readDirBatch lists a directory and lstats every entry in one pass. The
// error result is set only when nothing could be listed; failures on
// individual entries, and a listing cut short after some entries were read,
// are returned as scan errors alongside the entries that succeeded.
func readDirBatch(dirPath string) ([]entry, []model.ScanError, error) {
	f, err := os.Open(dirPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	dirents, err := f.ReadDir(-1)
	var errs []model.ScanError
	if err != nil {
		if len(dirents) == 0 {
			return nil, nil, err
		}
		errs = append(errs, scanError(dirPath, err))
	}

	entries := make([]entry, 0, len(dirents))
	for _, d := range dirents {
		p := filepath.Join(dirPath, d.Name())
		info, err := d.Info()
		if err != nil {
			errs = append(errs, scanError(p, err))
			continue
		}
		entries = append(entries, entry{path: p, name: d.Name(), info: info})
	}
	return entries, errs, nil
}

func scanError(path string, err error) model.ScanError {
	return model.ScanError{Path: path, Kind: model.ClassifyError(err), Message: err.Error()}
}
