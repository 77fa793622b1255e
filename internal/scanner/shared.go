package scanner

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/sadopc/disklens/internal/model"
)

// visitedSet holds canonical directory paths seen during one scan. Insert is
// the only mutation; its result is the cycle signal.
type visitedSet struct {
	m sync.Map
}

// Insert adds path and reports whether it was not already present.
func (v *visitedSet) Insert(path string) bool {
	_, loaded := v.m.LoadOrStore(path, struct{}{})
	return !loaded
}

// errorList is an append-only list of scan errors.
type errorList struct {
	mu   sync.Mutex
	errs []model.ScanError
}

func (l *errorList) Append(e model.ScanError) {
	l.mu.Lock()
	l.errs = append(l.errs, e)
	l.mu.Unlock()
}

// Snapshot returns a copy of the errors recorded so far.
func (l *errorList) Snapshot() []model.ScanError {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) == 0 {
		return nil
	}
	out := make([]model.ScanError, len(l.errs))
	copy(out, l.errs)
	return out
}

// permitPool bounds how many directory reads run at once.
type permitPool struct {
	sem *semaphore.Weighted
}

func newPermitPool(n int) *permitPool {
	return &permitPool{sem: semaphore.NewWeighted(int64(n))}
}

// Do runs fn while holding one permit. The permit is released when fn
// returns or panics. An error means ctx ended before a permit was free and
// fn did not run.
func (p *permitPool) Do(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	fn()
	return nil
}
