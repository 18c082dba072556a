package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PruneScheduler runs Cache.Prune on a cron schedule (e.g. every 15 minutes).
// The cache itself enforces expiry lazily on read; the scheduler exists for
// callers who want proactive memory reclamation between reads.
type PruneScheduler struct {
	cache    *Cache
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewPruneScheduler creates a scheduler that prunes the given cache.
//
// Common cron expressions:
//   - "*/15 * * * *" - Every 15 minutes
//   - "0 * * * *"    - Hourly
//   - "0 3 * * *"    - Daily at 3 AM
func NewPruneScheduler(c *Cache, schedule string) *PruneScheduler {
	return &PruneScheduler{
		cache:    c,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "cache.scheduler"),
	}
}

// Start begins scheduled pruning. If the schedule expression is empty, the
// scheduler does nothing. The scheduler stops when the context is cancelled
// or Stop is called.
func (s *PruneScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runPrune); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("cache prune scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPrune executes one pruning cycle.
func (s *PruneScheduler) runPrune() {
	removed := s.cache.Prune()
	if removed > 0 {
		s.logger.Info("scheduled cache prune completed", "removed", removed)
	} else {
		s.logger.Debug("scheduled cache prune completed, nothing expired")
	}
}

// Stop stops the scheduler and waits for any running prune to complete.
func (s *PruneScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("cache prune scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *PruneScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune time, or nil if none is scheduled.
func (s *PruneScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
