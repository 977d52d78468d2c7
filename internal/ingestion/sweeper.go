package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically completes stuck jobs
type Sweeper struct {
	tracker   *Tracker
	interval  time.Duration
	threshold int
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewSweeper creates a sweeper. An interval <= 0 disables it.
func NewSweeper(tracker *Tracker, interval time.Duration, thresholdMinutes int, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		tracker:   tracker,
		interval:  interval,
		threshold: thresholdMinutes,
		logger:    logger.With("component", "sweeper"),
	}
}

// Start runs the sweep loop. It blocks until Stop is called or ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop ends the loop started by Start
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.tracker.SweepStuckJobs(ctx, s.threshold); err != nil {
		// Retried on the next tick
		s.logger.Error("stuck job sweep failed", "error", err)
	}
}
