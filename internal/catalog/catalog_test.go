package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/bookcatalog/internal/blob"
	"github.com/dshills/bookcatalog/internal/storage"
)

// recordingIndexer remembers every index request
type recordingIndexer struct {
	mu        sync.Mutex
	submitted []int64
	removed   []int64
}

func (r *recordingIndexer) Submit(bookID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, bookID)
	return true
}

func (r *recordingIndexer) RemoveBook(bookID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, bookID)
}

type fixture struct {
	svc     *Service
	store   *storage.SQLiteStorage
	indexer *recordingIndexer
	blobs   *blob.LocalStore
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := blob.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	idx := &recordingIndexer{}
	return &fixture{
		svc:     New(store, idx, blobs, nil),
		store:   store,
		indexer: idx,
		blobs:   blobs,
	}
}

// seed creates an author and a genre for book tests
func (f *fixture) seed(t *testing.T) (*storage.Author, *storage.Genre) {
	t.Helper()
	ctx := context.Background()
	a, err := f.svc.CreateAuthor(ctx, "Ursula K. Le Guin")
	require.NoError(t, err)
	g, err := f.svc.CreateGenre(ctx, "Science Fiction")
	require.NoError(t, err)
	return a, g
}
