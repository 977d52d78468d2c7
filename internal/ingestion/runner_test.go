package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/bookcatalog/internal/storage"
)

// completionFailingStorage refuses to mark jobs completed
type completionFailingStorage struct {
	storage.Storage
}

func (s *completionFailingStorage) UpdateJobStatus(ctx context.Context, jobID int64, status storage.JobStatus) error {
	if status == storage.JobStatusCompleted {
		return errors.New("write rejected")
	}
	return s.Storage.UpdateJobStatus(ctx, jobID, status)
}

func TestRunner_MarksFailedWhenCompletionFails(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "broken.csv")

	runner := NewRunner(&completionFailingStorage{Storage: store}, nil, RunnerConfig{Delay: time.Millisecond})
	runner.Start()
	defer runner.Stop()

	tracker := NewTracker(store, runner, nil)
	res, err := tracker.Trigger(ctx, doc.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := tracker.GetStatus(ctx, res.JobID)
		return err == nil && st.Status == storage.JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.DocumentStatusFailed, got.Status)
}

func TestRunner_SubmitWhenStopped(t *testing.T) {
	runner := NewRunner(setupTestStorage(t), nil, RunnerConfig{})
	assert.False(t, runner.Submit(1, 1))

	runner.Start()
	runner.Stop()
	runner.Stop()
	assert.False(t, runner.Submit(1, 1))
}

func TestRunner_QueueFull(t *testing.T) {
	runner := NewRunner(setupTestStorage(t), nil, RunnerConfig{QueueSize: 1})
	// Running without workers so nothing drains the queue
	runner.running = true

	assert.True(t, runner.Submit(1, 1))
	assert.False(t, runner.Submit(2, 1))
}

func TestRunner_StopAbandonsSleepingJob(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	doc := createDocument(t, store, "long.csv")

	runner := NewRunner(store, nil, RunnerConfig{Workers: 1, Delay: time.Hour})
	runner.Start()

	tracker := NewTracker(store, runner, nil)
	res, err := tracker.Trigger(ctx, doc.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	st, err := tracker.GetStatus(ctx, res.JobID)
	require.NoError(t, err)
	assert.Equal(t, storage.JobStatusRunning, st.Status)
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(nil, nil, RunnerConfig{})
	assert.Equal(t, 2, r.workers)
	assert.Equal(t, DefaultDelay, r.delay)
	assert.Equal(t, 64, cap(r.queue))

	r = NewRunner(nil, nil, RunnerConfig{Delay: -1})
	assert.Zero(t, r.delay)
}
