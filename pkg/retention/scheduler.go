package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"camkeep-hq/camkeep/pkg/lock"

	"github.com/robfig/cron/v3"
)

// RunFunc performs one run.
type RunFunc func(ctx context.Context) (*Summary, error)

// Scheduler triggers runs on a cron schedule. A trigger that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	run      RunFunc
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler that calls run on schedule, a standard
// 5-field cron expression.
func NewScheduler(schedule string, run RunFunc) *Scheduler {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{
		run:      run,
		schedule: schedule,
		cron:     c,
		logger:   slog.Default().With("component", "scheduler"),
	}
}

// Start begins scheduled runs. Runs receive ctx, and the scheduler stops
// when ctx is canceled.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "30 2 * * 0"   - Weekly on Sunday at 2:30 AM
//
// If the schedule is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("retention schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runScheduled(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule retention runs: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	s.logger.Info("starting scheduled retention run")

	summary, err := s.run(ctx)
	switch {
	case errors.Is(err, lock.ErrLocked):
		s.logger.Warn("scheduled run skipped, archive is locked")
	case err != nil:
		s.logger.Error("scheduled run failed", "error", err)
	default:
		s.logger.Info("scheduled run completed",
			"run_id", summary.RunID,
			"files_removed", summary.FilesRemoved,
			"folders_removed", summary.FoldersRemoved,
			"failures", summary.Failures,
		)
	}
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run time, or nil if nothing is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
