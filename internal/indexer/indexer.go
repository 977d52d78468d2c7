package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

// ErrReindexInProgress is returned when a full reindex is already running
var ErrReindexInProgress = errors.New("reindex already in progress")

// Indexer keeps the lexical index in step with the catalog: book -> content -> fingerprint -> index
type Indexer struct {
	storage storage.Storage
	index   *Index
	logger  *slog.Logger

	workers        int
	reindexWorkers int
	queue          chan int64
	lock           IndexLock

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Config contains configuration for the indexer
type Config struct {
	Workers        int // Background index workers (default: 2)
	QueueSize      int // Pending background requests before Submit drops (default: 256)
	ReindexWorkers int // Concurrent books during ReindexAll (default: runtime.NumCPU())
}

// Statistics contains statistics about a full reindex
type Statistics struct {
	Message       string
	TotalBooks    int
	IndexedCount  int
	FailedCount   int
	PrunedCount   int // Entries dropped because their book no longer exists
	TotalInStore  int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates an Indexer writing into index
func New(store storage.Storage, index *Index, logger *slog.Logger, config *Config) *Indexer {
	if config == nil {
		config = &Config{}
	}
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.ReindexWorkers <= 0 {
		config.ReindexWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Indexer{
		storage:        store,
		index:          index,
		logger:         logger.With("component", "indexer"),
		workers:        config.Workers,
		reindexWorkers: config.ReindexWorkers,
		queue:          make(chan int64, config.QueueSize),
	}
}

// Index returns the index this indexer writes into
func (idx *Indexer) Index() *Index {
	return idx.index
}

// IndexBook loads a book with its relations and stores its entry.
// A book that no longer exists has its entry removed.
func (idx *Indexer) IndexBook(ctx context.Context, bookID int64) error {
	book, err := idx.storage.GetBook(ctx, bookID)
	if errors.Is(err, storage.ErrNotFound) {
		idx.index.Delete(bookID)
		return fmt.Errorf("book %d: %w", bookID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to load book %d: %w", bookID, err)
	}

	reviews, err := idx.storage.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to load reviews for book %d: %w", bookID, err)
	}

	content := ExtractContent(book, reviews)
	idx.index.Put(Entry{
		BookID:      book.ID,
		Fingerprint: ComputeFingerprint(content),
		Metadata:    types.NewBookMetadata(book.ID, book.Title, book.AuthorName, book.GenreName),
		Content:     content,
		IndexedAt:   time.Now(),
	})
	return nil
}

// RemoveBook drops a deleted book from the index
func (idx *Indexer) RemoveBook(bookID int64) {
	if idx.index.Delete(bookID) {
		idx.logger.Debug("removed book from index", "book_id", bookID)
	}
}

// Start launches the background index workers. It returns immediately.
func (idx *Indexer) Start(ctx context.Context) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.running {
		return
	}
	idx.running = true
	idx.stopCh = make(chan struct{})

	for i := 0; i < idx.workers; i++ {
		idx.wg.Add(1)
		go idx.worker(ctx, idx.stopCh)
	}
}

// Stop waits for in-flight index requests to finish. Queued requests are dropped;
// a later ReindexAll recovers them.
func (idx *Indexer) Stop() {
	idx.mu.Lock()
	if !idx.running {
		idx.mu.Unlock()
		return
	}
	idx.running = false
	close(idx.stopCh)
	idx.mu.Unlock()

	idx.wg.Wait()
}

// Submit schedules a best-effort background index of bookID.
// It never blocks and reports whether the request was accepted.
func (idx *Indexer) Submit(bookID int64) bool {
	idx.mu.Lock()
	running := idx.running
	idx.mu.Unlock()
	if !running {
		idx.logger.Warn("index workers not running, request dropped", "book_id", bookID)
		return false
	}

	select {
	case idx.queue <- bookID:
		return true
	default:
		idx.logger.Warn("index queue full, request dropped", "book_id", bookID)
		return false
	}
}

// worker drains the queue; failures are logged and never surface to the submitter
func (idx *Indexer) worker(ctx context.Context, stopCh <-chan struct{}) {
	defer idx.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case bookID := <-idx.queue:
			if err := idx.IndexBook(ctx, bookID); err != nil {
				idx.logger.Error("failed to index book", "book_id", bookID, "error", err)
			}
		}
	}
}

// ReindexAll indexes every persisted book and waits for all of them.
// Per-book failures are logged and counted without aborting the batch.
func (idx *Indexer) ReindexAll(ctx context.Context) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrReindexInProgress
	}
	defer idx.lock.Release()

	startTime := time.Now()
	ids, err := idx.storage.ListBookIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	stats := &Statistics{
		TotalBooks:    len(ids),
		ErrorMessages: make([]string, 0),
	}

	var (
		indexed int32
		failed  int32
		mu      sync.Mutex // Protect stats.ErrorMessages
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.reindexWorkers)

	for _, bookID := range ids {
		g.Go(func() error {
			if err := idx.IndexBook(gctx, bookID); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("book %d: %v", bookID, err))
				mu.Unlock()
				idx.logger.Warn("failed to index book", "book_id", bookID, "error", err)
				return nil
			}
			atomic.AddInt32(&indexed, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	keep := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	// Books indexed by Submit while this run was listing are not in ids
	stats.PrunedCount = idx.index.Retain(keep, startTime)

	stats.IndexedCount = int(indexed)
	stats.FailedCount = int(failed)
	stats.TotalInStore = idx.index.Len()
	stats.Message = fmt.Sprintf("Reindexed %d books successfully", stats.IndexedCount)
	stats.Duration = time.Since(startTime)

	idx.logger.Info("reindex complete",
		"total_books", stats.TotalBooks,
		"indexed", stats.IndexedCount,
		"failed", stats.FailedCount,
		"pruned", stats.PrunedCount,
		"duration", stats.Duration)

	return stats, nil
}

// Reindexing reports whether a full reindex is running
func (idx *Indexer) Reindexing() bool {
	return idx.lock.Held()
}
