package indexer

import "sync/atomic"

// IndexLock guards full reindex runs with non-blocking acquire semantics,
// so a second caller fails fast instead of queueing behind the first.
type IndexLock struct {
	state atomic.Int32 // 0 = free, 1 = reindex running
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *IndexLock) Release() {
	l.state.Store(0)
}

// Held reports whether a reindex currently owns the lock
func (l *IndexLock) Held() bool {
	return l.state.Load() == 1
}
