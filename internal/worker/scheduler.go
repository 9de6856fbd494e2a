package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fortis/internal/store"
)

// ResetSweeper advances stale budget checkpoints for every user.
type ResetSweeper interface {
	SweepResets(ctx context.Context, users store.UserLister) (int, error)
}

// ReportPublisher publishes weekly reports for every opted-in user.
type ReportPublisher interface {
	PublishWeekly(ctx context.Context, users store.UserLister) (int, error)
}

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	// ResetInterval is how often stale budgets are reset (default: 1h)
	ResetInterval time.Duration

	// ReportInterval is how often weekly reports are published (default: 168h)
	ReportInterval time.Duration
}

// DefaultSchedulerConfig returns sensible defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ResetInterval:  time.Hour,
		ReportInterval: 7 * 24 * time.Hour,
	}
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	d := DefaultSchedulerConfig()
	if c.ResetInterval <= 0 {
		c.ResetInterval = d.ResetInterval
	}
	if c.ReportInterval <= 0 {
		c.ReportInterval = d.ReportInterval
	}
	return c
}

// Scheduler runs the periodic ledger jobs: the budget reset sweep and weekly
// report publishing. Reports are optional.
type Scheduler struct {
	users   store.UserLister
	resets  ResetSweeper
	reports ReportPublisher
	config  SchedulerConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(users store.UserLister, resets ResetSweeper, reports ReportPublisher, config SchedulerConfig) *Scheduler {
	return &Scheduler{
		users:   users,
		resets:  resets,
		reports: reports,
		config:  config.withDefaults(),
	}
}

// Start begins the scheduling loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Ledger scheduler started",
		"reset_interval", s.config.ResetInterval,
		"report_interval", s.config.ReportInterval,
		"reports_enabled", s.reports != nil)

	return nil
}

// Stop gracefully stops the scheduler and waits for the running job.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
		slog.InfoContext(ctx, "Ledger scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Ledger scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	resetTicker := time.NewTicker(s.config.ResetInterval)
	defer resetTicker.Stop()

	reportTicker := time.NewTicker(s.config.ReportInterval)
	defer reportTicker.Stop()

	// Catch up on resets missed while the worker was down
	s.RunResets(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-resetTicker.C:
			s.RunResets(ctx)
		case <-reportTicker.C:
			s.RunReports(ctx)
		}
	}
}

// RunResets performs one reset sweep and returns how many budgets were reset.
func (s *Scheduler) RunResets(ctx context.Context) int {
	n, err := s.resets.SweepResets(ctx, s.users)
	if err != nil {
		slog.ErrorContext(ctx, "Reset sweep finished with errors", "reset", n, "error", err)
		return n
	}
	if n > 0 {
		slog.InfoContext(ctx, "Reset sweep completed", "reset", n)
	}
	return n
}

// RunReports publishes one round of weekly reports.
func (s *Scheduler) RunReports(ctx context.Context) int {
	if s.reports == nil {
		return 0
	}
	n, err := s.reports.PublishWeekly(ctx, s.users)
	if err != nil {
		slog.ErrorContext(ctx, "Weekly report round finished with errors", "sent", n, "error", err)
		return n
	}
	slog.InfoContext(ctx, "Weekly reports published", "sent", n)
	return n
}
