package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDocument(t *testing.T, s *SQLiteStorage, filename string) *Document {
	t.Helper()
	doc := &Document{Filename: filename, StorageKey: "docs/" + filename, FileSize: 128}
	require.NoError(t, s.CreateDocument(context.Background(), doc))
	return doc
}

func TestDocumentLifecycle(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	doc := seedDocument(t, storage, "manuscript.pdf")
	assert.Equal(t, DocumentStatusUploaded, doc.Status)

	require.NoError(t, storage.UpdateDocumentStatus(ctx, doc.ID, DocumentStatusIngested))
	got, err := storage.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, DocumentStatusIngested, got.Status)
	assert.Equal(t, "docs/manuscript.pdf", got.StorageKey)

	job := &IngestionJob{DocumentID: doc.ID, Status: JobStatusRunning}
	require.NoError(t, storage.CreateJob(ctx, job))

	// Jobs are never deleted, so their document stays too
	err = storage.DeleteDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrInUse)
	_, err = storage.GetJob(ctx, job.ID)
	assert.NoError(t, err)
	_, err = storage.GetDocument(ctx, doc.ID)
	assert.NoError(t, err)

	unused := seedDocument(t, storage, "draft.txt")
	require.NoError(t, storage.DeleteDocument(ctx, unused.ID))
	_, err = storage.GetDocument(ctx, unused.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateJob_MissingDocument(t *testing.T) {
	storage := setupTestDB(t)

	err := storage.CreateJob(context.Background(), &IngestionJob{DocumentID: 77, Status: JobStatusRunning})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateJobStatus(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	doc := seedDocument(t, storage, "a.txt")
	job := &IngestionJob{DocumentID: doc.ID, Status: JobStatusRunning}
	require.NoError(t, storage.CreateJob(ctx, job))

	require.NoError(t, storage.UpdateJobStatus(ctx, job.ID, JobStatusCompleted))
	got, err := storage.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, got.Status)
	assert.WithinDuration(t, job.CreatedAt, got.CreatedAt, time.Microsecond)

	assert.ErrorIs(t, storage.UpdateJobStatus(ctx, 9999, JobStatusCompleted), ErrNotFound)
}

// TestListJobs_NewestFirst verifies ordering and filename annotation
func TestListJobs_NewestFirst(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	first := seedDocument(t, storage, "first.txt")
	second := seedDocument(t, storage, "second.txt")
	now := time.Now()

	older := &IngestionJob{DocumentID: first.ID, Status: JobStatusCompleted, CreatedAt: now.Add(-time.Hour)}
	newer := &IngestionJob{DocumentID: second.ID, Status: JobStatusRunning, CreatedAt: now}
	require.NoError(t, storage.CreateJob(ctx, older))
	require.NoError(t, storage.CreateJob(ctx, newer))

	jobs, err := storage.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)
	assert.Equal(t, "second.txt", jobs[0].Filename)
	assert.Equal(t, older.ID, jobs[1].ID)
	assert.Equal(t, "first.txt", jobs[1].Filename)
}

// TestCompleteStuckJobs verifies only old unfinished jobs are completed
func TestCompleteStuckJobs(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	doc := seedDocument(t, storage, "stuck.txt")
	now := time.Now()

	stuck := &IngestionJob{DocumentID: doc.ID, Status: JobStatusRunning, CreatedAt: now.Add(-10 * time.Minute)}
	recent := &IngestionJob{DocumentID: doc.ID, Status: JobStatusRunning, CreatedAt: now.Add(-1 * time.Minute)}
	queued := &IngestionJob{DocumentID: doc.ID, Status: JobStatusPending, CreatedAt: now.Add(-20 * time.Minute)}
	done := &IngestionJob{DocumentID: doc.ID, Status: JobStatusCompleted, CreatedAt: now.Add(-time.Hour)}
	failed := &IngestionJob{DocumentID: doc.ID, Status: JobStatusFailed, CreatedAt: now.Add(-time.Hour)}
	for _, job := range []*IngestionJob{stuck, recent, queued, done, failed} {
		require.NoError(t, storage.CreateJob(ctx, job))
	}

	n, err := storage.CompleteStuckJobs(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := storage.GetJob(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, got.Status)

	got, err = storage.GetJob(ctx, recent.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRunning, got.Status)

	got, err = storage.GetJob(ctx, queued.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, got.Status)

	got, err = storage.GetJob(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, got.Status)

	// Second sweep finds nothing left
	n, err = storage.CompleteStuckJobs(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestJobCounts(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	doc := seedDocument(t, storage, "count.txt")
	now := time.Now()

	require.NoError(t, storage.CreateJob(ctx, &IngestionJob{DocumentID: doc.ID, Status: JobStatusCompleted, CreatedAt: now}))
	require.NoError(t, storage.CreateJob(ctx, &IngestionJob{DocumentID: doc.ID, Status: JobStatusCompleted, CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, storage.CreateJob(ctx, &IngestionJob{DocumentID: doc.ID, Status: JobStatusRunning, CreatedAt: now}))

	n, err := storage.CountJobsSince(ctx, JobStatusCompleted, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := storage.CountJobsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[JobStatusCompleted])
	assert.Equal(t, 1, counts[JobStatusRunning])
	assert.Zero(t, counts[JobStatusFailed])
}
