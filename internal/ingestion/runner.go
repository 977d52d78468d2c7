package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/bookcatalog/internal/storage"
)

// DefaultDelay is the simulated processing time of one ingestion
const DefaultDelay = 2 * time.Second

// RunnerConfig configures the completion worker pool
type RunnerConfig struct {
	Workers   int           // Concurrent completions (default: 2)
	QueueSize int           // Accepted jobs waiting for a worker (default: 64)
	Delay     time.Duration // Processing time before a job completes (default: DefaultDelay)
	Timeout   time.Duration // Bound on the status writes of one job (default: 30s)
}

type task struct {
	jobID      int64
	documentID int64
}

// Runner completes ingestion jobs in the background. It owns its context,
// so request cancellation never abandons a job that was already accepted.
type Runner struct {
	store   storage.Storage
	logger  *slog.Logger
	workers int
	delay   time.Duration
	timeout time.Duration
	queue   chan task

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRunner creates a stopped Runner
func NewRunner(store storage.Storage, logger *slog.Logger, config RunnerConfig) *Runner {
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if config.Delay < 0 {
		config.Delay = 0
	} else if config.Delay == 0 {
		config.Delay = DefaultDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		store:   store,
		logger:  logger.With("component", "ingestion-runner"),
		workers: config.Workers,
		delay:   config.Delay,
		timeout: config.Timeout,
		queue:   make(chan task, config.QueueSize),
	}
}

// Start launches the workers. It returns immediately.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(r.stopCh)
	}
}

// Stop waits for the workers to exit. Queued and sleeping jobs are left
// running in the store for the stuck-job sweep to reclaim.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
}

// Submit hands a job to the pool without blocking and reports whether it was accepted
func (r *Runner) Submit(jobID, documentID int64) bool {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return false
	}

	select {
	case r.queue <- task{jobID: jobID, documentID: documentID}:
		return true
	default:
		return false
	}
}

func (r *Runner) worker(stopCh <-chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case <-stopCh:
			return
		case t := <-r.queue:
			r.process(t, stopCh)
		}
	}
}

func (r *Runner) process(t task, stopCh <-chan struct{}) {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-stopCh:
		return
	case <-timer.C:
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.UpdateJobStatus(ctx, t.jobID, storage.JobStatusCompleted); err != nil {
		r.logger.Error("failed to complete ingestion job", "job_id", t.jobID, "error", err)
		if ferr := r.store.UpdateJobStatus(ctx, t.jobID, storage.JobStatusFailed); ferr != nil {
			r.logger.Error("failed to mark ingestion job failed", "job_id", t.jobID, "error", ferr)
		}
		if derr := r.store.UpdateDocumentStatus(ctx, t.documentID, storage.DocumentStatusFailed); derr != nil {
			r.logger.Warn("failed to update document status", "document_id", t.documentID, "error", derr)
		}
		return
	}

	if err := r.store.UpdateDocumentStatus(ctx, t.documentID, storage.DocumentStatusIngested); err != nil {
		r.logger.Warn("failed to update document status", "document_id", t.documentID, "error", err)
	}
	r.logger.Info("ingestion job completed", "job_id", t.jobID, "document_id", t.documentID)
}
