package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/bookcatalog/internal/storage"
)

func setupTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createDocument(t *testing.T, store storage.Storage, filename string) *storage.Document {
	t.Helper()
	doc := &storage.Document{
		Filename:   filename,
		StorageKey: "key-" + filename,
		FileSize:   42,
		Status:     storage.DocumentStatusUploaded,
	}
	require.NoError(t, store.CreateDocument(context.Background(), doc))
	return doc
}

func startedRunner(t *testing.T, store storage.Storage, delay time.Duration) *Runner {
	t.Helper()
	r := NewRunner(store, nil, RunnerConfig{Workers: 2, Delay: delay})
	r.Start()
	t.Cleanup(r.Stop)
	return r
}

func TestTrigger_CompletesInBackground(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "catalog.csv")
	tracker := NewTracker(store, startedRunner(t, store, 20*time.Millisecond), nil)

	res, err := tracker.Trigger(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ingestion started", res.Message)
	assert.NotZero(t, res.JobID)

	require.Eventually(t, func() bool {
		st, err := tracker.GetStatus(ctx, res.JobID)
		return err == nil && st.Status == storage.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.DocumentStatusIngested, got.Status)
}

func TestTrigger_ReturnsBeforeCompletion(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "slow.csv")
	tracker := NewTracker(store, startedRunner(t, store, time.Hour), nil)

	res, err := tracker.Trigger(ctx, doc.ID)
	require.NoError(t, err)

	st, err := tracker.GetStatus(ctx, res.JobID)
	require.NoError(t, err)
	assert.Equal(t, storage.JobStatusRunning, st.Status)
	assert.False(t, st.CreatedAt.IsZero())
}

func TestTrigger_MissingDocument(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	tracker := NewTracker(store, nil, nil)

	_, err := tracker.Trigger(ctx, 404)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	jobs, err := tracker.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestTrigger_PoolUnavailableLeavesPending(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "orphan.csv")

	// Runner never started
	tracker := NewTracker(store, NewRunner(store, nil, RunnerConfig{}), nil)
	res, err := tracker.Trigger(ctx, doc.ID)
	require.NoError(t, err)

	st, err := tracker.GetStatus(ctx, res.JobID)
	require.NoError(t, err)
	assert.Equal(t, storage.JobStatusPending, st.Status)
}

func TestGetStatus_NotFound(t *testing.T) {
	tracker := NewTracker(setupTestStorage(t), nil, nil)
	_, err := tracker.GetStatus(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListJobs_NewestFirst(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	first := createDocument(t, store, "first.csv")
	second := createDocument(t, store, "second.csv")

	tracker := NewTracker(store, nil, nil)
	base := time.Now()
	tracker.now = func() time.Time { return base }
	r1, err := tracker.Trigger(ctx, first.ID)
	require.NoError(t, err)
	tracker.now = func() time.Time { return base.Add(time.Second) }
	r2, err := tracker.Trigger(ctx, second.ID)
	require.NoError(t, err)

	jobs, err := tracker.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, r2.JobID, jobs[0].ID)
	assert.Equal(t, "second.csv", jobs[0].Filename)
	assert.Equal(t, r1.JobID, jobs[1].ID)
	assert.Equal(t, first.ID, jobs[1].DocumentID)
}

func TestSweepStuckJobs(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "stuck.csv")
	now := time.Now()

	old := &storage.IngestionJob{DocumentID: doc.ID, Status: storage.JobStatusRunning, CreatedAt: now.Add(-10 * time.Minute)}
	fresh := &storage.IngestionJob{DocumentID: doc.ID, Status: storage.JobStatusRunning, CreatedAt: now.Add(-2 * time.Minute)}
	require.NoError(t, store.CreateJob(ctx, old))
	require.NoError(t, store.CreateJob(ctx, fresh))

	tracker := NewTracker(store, nil, nil)
	tracker.now = func() time.Time { return now }

	res, err := tracker.SweepStuckJobs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedJobs)
	assert.Equal(t, "Completed 1 stuck jobs", res.Message)

	st, err := tracker.GetStatus(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.JobStatusRunning, st.Status)

	// A smaller threshold reaches the fresh job too
	res, err = tracker.SweepStuckJobs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedJobs)

	res, err = tracker.SweepStuckJobs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Completed 0 stuck jobs", res.Message)
}

func TestSweepStuckJobs_CompletesPending(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "queued.csv")
	now := time.Now()

	job := &storage.IngestionJob{DocumentID: doc.ID, Status: storage.JobStatusPending, CreatedAt: now.Add(-10 * time.Minute)}
	require.NoError(t, store.CreateJob(ctx, job))

	tracker := NewTracker(store, nil, nil)
	tracker.now = func() time.Time { return now }

	res, err := tracker.SweepStuckJobs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedJobs)

	st, err := tracker.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.JobStatusCompleted, st.Status)
}

func TestSweepStuckJobs_DefaultThreshold(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "stuck.csv")
	now := time.Now()

	require.NoError(t, store.CreateJob(ctx, &storage.IngestionJob{DocumentID: doc.ID, Status: storage.JobStatusRunning, CreatedAt: now.Add(-4 * time.Minute)}))
	require.NoError(t, store.CreateJob(ctx, &storage.IngestionJob{DocumentID: doc.ID, Status: storage.JobStatusRunning, CreatedAt: now.Add(-6 * time.Minute)}))

	tracker := NewTracker(store, nil, nil)
	tracker.now = func() time.Time { return now }

	for _, threshold := range []int{0, -3} {
		res, err := tracker.SweepStuckJobs(ctx, threshold)
		require.NoError(t, err)
		if threshold == 0 {
			assert.Equal(t, 1, res.CompletedJobs)
		} else {
			assert.Equal(t, 0, res.CompletedJobs)
		}
	}
}

func TestSweepStuckJobs_StoreError(t *testing.T) {
	store := setupTestStorage(t)
	tracker := NewTracker(store, nil, nil)
	require.NoError(t, store.Close())

	_, err := tracker.SweepStuckJobs(context.Background(), 5)
	assert.Error(t, err)
}

func TestTodayCount(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "today.csv")

	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	jobs := []*storage.IngestionJob{
		{DocumentID: doc.ID, Status: storage.JobStatusCompleted, CreatedAt: now.Add(-time.Hour)},
		{DocumentID: doc.ID, Status: storage.JobStatusCompleted, CreatedAt: now.Add(-14 * time.Hour)},
		{DocumentID: doc.ID, Status: storage.JobStatusCompleted, CreatedAt: now.Add(-16 * time.Hour)},
		{DocumentID: doc.ID, Status: storage.JobStatusRunning, CreatedAt: now},
	}
	for _, j := range jobs {
		require.NoError(t, store.CreateJob(ctx, j))
	}

	tracker := NewTracker(store, nil, nil)
	tracker.now = func() time.Time { return now }

	res, err := tracker.TodayCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TodayProcessed)
}
