package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/application/notification"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Rollover starts a new billing cycle for fully paid tenants
type Rollover interface {
	RolloverAll(ctx context.Context, asOf time.Time) (*ledger.RolloverReport, error)
}

// StatusRefresher re-derives every tenant's status
type StatusRefresher interface {
	RefreshAll(ctx context.Context, today time.Time) (*ledger.StatusRefreshReport, error)
}

// ReminderSender texts tenants whose rent falls due soon
type ReminderSender interface {
	SendUpcomingReminders(ctx context.Context, today time.Time, daysBefore int) (*notification.BulkResult, error)
}

// RunReport is the outcome of one daily run. Jobs that did not run are nil.
type RunReport struct {
	Date      string                      `json:"date"`
	Rollover  *ledger.RolloverReport      `json:"rollover,omitempty"`
	Refresh   *ledger.StatusRefreshReport `json:"refresh,omitempty"`
	Reminders *notification.BulkResult    `json:"reminders,omitempty"`
	Duration  time.Duration               `json:"duration"`
}

// BillingCycleScheduler runs the ledger's daily jobs at config.RunHour:
// the rollover on config.RolloverDay, then the status refresh, then the
// reminder sweep.
type BillingCycleScheduler struct {
	rollover  Rollover
	refresher StatusRefresher
	reminders ReminderSender
	config    config.SchedulerConfig
	logger    *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	runMu       sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewBillingCycleScheduler creates a new BillingCycleScheduler. reminders
// may be nil, which turns the sweep off.
func NewBillingCycleScheduler(
	rollover Rollover,
	refresher StatusRefresher,
	reminders ReminderSender,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *BillingCycleScheduler {
	return &BillingCycleScheduler{
		rollover:  rollover,
		refresher: refresher,
		reminders: reminders,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
		after:     time.After,
	}
}

// Start launches the daily loop. A disabled scheduler starts as a no-op.
func (s *BillingCycleScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Billing cycle scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Billing cycle scheduler started",
		zap.Int("run_hour", s.config.RunHour),
		zap.Int("rollover_day", s.config.RolloverDay),
		zap.Bool("status_refresh", s.config.StatusRefresh),
		zap.Bool("reminder_sweep", s.config.ReminderSweep && s.reminders != nil))
	return nil
}

// Stop ends the loop and waits for an in-flight run, up to ctx's deadline
func (s *BillingCycleScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing cycle scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing cycle scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the daily loop is active
func (s *BillingCycleScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *BillingCycleScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := s.now()
		next := nextRunAt(now, s.config.RunHour)
		s.logger.Debug("Next billing cycle run scheduled", zap.Time("next_run", next))

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
		}

		at := s.now()
		date := at.Format("2006-01-02")
		s.mu.Lock()
		already := s.lastRunDate == date
		s.lastRunDate = date
		s.mu.Unlock()
		if already {
			continue
		}

		if _, err := s.RunDaily(ctx, at); err != nil {
			s.logger.Error("Billing cycle run finished with errors", zap.Error(err))
		}
	}
}

// nextRunAt returns the next time at hour:00 strictly after now
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunDaily runs every job due on at's date. Runs never overlap. A failing
// job does not stop the ones after it; their errors are joined.
func (s *BillingCycleScheduler) RunDaily(ctx context.Context, at time.Time) (*RunReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	report := &RunReport{Date: at.Format("2006-01-02")}
	var errs []error

	if at.Day() == s.config.RolloverDay {
		err := s.withTimeout(ctx, "rollover", func(ctx context.Context) (err error) {
			report.Rollover, err = s.rollover.RolloverAll(ctx, at)
			return err
		})
		errs = append(errs, err)
	}

	if s.config.StatusRefresh {
		err := s.withTimeout(ctx, "status_refresh", func(ctx context.Context) (err error) {
			report.Refresh, err = s.refresher.RefreshAll(ctx, at)
			return err
		})
		errs = append(errs, err)
	}

	if s.config.ReminderSweep && s.reminders != nil {
		err := s.withTimeout(ctx, "reminder_sweep", func(ctx context.Context) (err error) {
			report.Reminders, err = s.reminders.SendUpcomingReminders(ctx, at, s.config.ReminderDaysBefore)
			return err
		})
		errs = append(errs, err)
	}

	report.Duration = time.Since(start)
	s.logger.Info("Billing cycle run completed",
		zap.String("date", report.Date),
		zap.Bool("rollover", report.Rollover != nil),
		zap.Bool("status_refresh", report.Refresh != nil),
		zap.Bool("reminder_sweep", report.Reminders != nil),
		zap.Duration("duration", report.Duration))

	return report, errors.Join(errs...)
}

// TriggerRollover runs the rollover now, outside the daily schedule
func (s *BillingCycleScheduler) TriggerRollover(ctx context.Context, asOf time.Time) (*ledger.RolloverReport, error) {
	if !s.IsRunning() {
		return nil, ErrSchedulerNotRunning
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	var report *ledger.RolloverReport
	err := s.withTimeout(ctx, "rollover", func(ctx context.Context) (err error) {
		report, err = s.rollover.RolloverAll(ctx, asOf)
		return err
	})
	return report, err
}

// TriggerStatusRefresh runs the status refresh now
func (s *BillingCycleScheduler) TriggerStatusRefresh(ctx context.Context, today time.Time) (*ledger.StatusRefreshReport, error) {
	if !s.IsRunning() {
		return nil, ErrSchedulerNotRunning
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	var report *ledger.StatusRefreshReport
	err := s.withTimeout(ctx, "status_refresh", func(ctx context.Context) (err error) {
		report, err = s.refresher.RefreshAll(ctx, today)
		return err
	})
	return report, err
}

// withTimeout runs one job under the configured per-run timeout
func (s *BillingCycleScheduler) withTimeout(ctx context.Context, job string, fn func(context.Context) error) error {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", job),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("%s: %w", job, err)
	}
	s.logger.Info("Scheduled job completed",
		zap.String("job", job),
		zap.Duration("duration", time.Since(start)))
	return nil
}
