package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/bookcatalog/internal/storage"
)

// DefaultStuckThresholdMinutes applies when a sweep is asked for a threshold <= 0
const DefaultStuckThresholdMinutes = 5

// TriggerResult is returned when a job has been accepted
type TriggerResult struct {
	Message string `json:"message"`
	JobID   int64  `json:"job_id"`
}

// StatusResult is the observable state of one job
type StatusResult struct {
	Status    storage.JobStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// SweepResult reports how many stuck jobs a sweep completed
type SweepResult struct {
	Message       string `json:"message"`
	CompletedJobs int    `json:"completed_jobs"`
}

// TodayResult counts jobs completed today
type TodayResult struct {
	TodayProcessed int `json:"today_processed"`
}

// Tracker records ingestion jobs and drives them through their lifecycle
type Tracker struct {
	store  storage.Storage
	runner *Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker creates a Tracker. A nil runner leaves every new job pending.
func NewTracker(store storage.Storage, runner *Runner, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  store,
		runner: runner,
		logger: logger.With("component", "ingestion"),
		now:    time.Now,
	}
}

// Trigger starts ingestion of a document and returns without waiting for it.
// A missing document yields storage.ErrNotFound and records no job.
func (t *Tracker) Trigger(ctx context.Context, documentID int64) (*TriggerResult, error) {
	if _, err := t.store.GetDocument(ctx, documentID); err != nil {
		return nil, fmt.Errorf("document %d: %w", documentID, err)
	}

	job := &storage.IngestionJob{
		DocumentID: documentID,
		Status:     storage.JobStatusRunning,
		CreatedAt:  t.now(),
	}
	if err := t.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create ingestion job: %w", err)
	}

	if t.runner == nil || !t.runner.Submit(job.ID, documentID) {
		t.logger.Warn("ingestion pool unavailable, job left pending", "job_id", job.ID)
		if err := t.store.UpdateJobStatus(ctx, job.ID, storage.JobStatusPending); err != nil {
			t.logger.Error("failed to mark job pending", "job_id", job.ID, "error", err)
		}
	}

	t.logger.Info("ingestion triggered", "job_id", job.ID, "document_id", documentID)
	return &TriggerResult{Message: "Ingestion started", JobID: job.ID}, nil
}

// GetStatus returns the status and creation time of a job
func (t *Tracker) GetStatus(ctx context.Context, jobID int64) (*StatusResult, error) {
	job, err := t.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job %d: %w", jobID, err)
	}
	return &StatusResult{Status: job.Status, CreatedAt: job.CreatedAt}, nil
}

// ListJobs returns every job with its document filename, newest first
func (t *Tracker) ListJobs(ctx context.Context) ([]*storage.JobListing, error) {
	return t.store.ListJobs(ctx)
}

// SweepStuckJobs completes every unfinished job older than thresholdMinutes.
// Pending jobs are swept as well as running ones: a job still pending past the
// threshold was never picked up by the worker pool and will not run.
func (t *Tracker) SweepStuckJobs(ctx context.Context, thresholdMinutes int) (*SweepResult, error) {
	if thresholdMinutes <= 0 {
		thresholdMinutes = DefaultStuckThresholdMinutes
	}
	cutoff := t.now().Add(-time.Duration(thresholdMinutes) * time.Minute)

	n, err := t.store.CompleteStuckJobs(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		t.logger.Info("completed stuck jobs", "count", n, "threshold_minutes", thresholdMinutes)
	}
	return &SweepResult{
		Message:       fmt.Sprintf("Completed %d stuck jobs", n),
		CompletedJobs: n,
	}, nil
}

// TodayCount counts jobs completed that were created since local midnight
func (t *Tracker) TodayCount(ctx context.Context) (*TodayResult, error) {
	now := t.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	n, err := t.store.CountJobsSince(ctx, storage.JobStatusCompleted, midnight)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	return &TodayResult{TodayProcessed: n}, nil
}
