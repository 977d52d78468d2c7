package indexer

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/bookcatalog/pkg/types"
)

// Entry is the indexed form of one book
type Entry struct {
	BookID      int64
	Fingerprint Fingerprint
	Metadata    types.BookMetadata // Snapshot taken at index time
	Content     string             // Text the fingerprint was built from
	IndexedAt   time.Time
}

// Index is the in-memory lexical index, keyed by book ID.
// It starts empty, is safe for concurrent use and keeps the last write per key.
type Index struct {
	mu      sync.RWMutex
	entries map[int64]Entry
	version atomic.Uint64
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{entries: make(map[int64]Entry)}
}

// Put stores or replaces the entry for e.BookID
func (x *Index) Put(e Entry) {
	x.mu.Lock()
	x.entries[e.BookID] = e
	x.mu.Unlock()
	x.version.Add(1)
}

// Get returns the entry for bookID
func (x *Index) Get(bookID int64) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[bookID]
	return e, ok
}

// Delete removes the entry for bookID and reports whether one existed
func (x *Index) Delete(bookID int64) bool {
	x.mu.Lock()
	_, ok := x.entries[bookID]
	delete(x.entries, bookID)
	x.mu.Unlock()
	if ok {
		x.version.Add(1)
	}
	return ok
}

// Retain drops every entry indexed before cutoff whose ID is not in keep and
// returns how many were dropped. Entries written at or after cutoff survive.
func (x *Index) Retain(keep map[int64]struct{}, cutoff time.Time) int {
	x.mu.Lock()
	dropped := 0
	for id, e := range x.entries {
		if _, ok := keep[id]; !ok && e.IndexedAt.Before(cutoff) {
			delete(x.entries, id)
			dropped++
		}
	}
	x.mu.Unlock()
	if dropped > 0 {
		x.version.Add(1)
	}
	return dropped
}

// Len returns the number of indexed books
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Snapshot returns a copy of all entries ordered by book ID
func (x *Index) Snapshot() []Entry {
	x.mu.RLock()
	out := make([]Entry, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, e)
	}
	x.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out
}

// Version changes every time the index content changes.
// Callers use it to detect stale derived data such as cached search results.
func (x *Index) Version() uint64 {
	return x.version.Load()
}
