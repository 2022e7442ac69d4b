// Package scheduler runs the periodic back-office jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultReminderSpec fires every day at 09:00
const DefaultReminderSpec = "0 9 * * *"

// ReminderRunner sends the stalled checklist reminders and the REINS
// registration deadline alerts
type ReminderRunner interface {
	SendIncompleteReminders(ctx context.Context, now time.Time) (int, error)
	SendAgreementDeadlineAlerts(ctx context.Context, now time.Time) (int, error)
}

// Config holds the scheduler settings
type Config struct {
	ReminderSpec string
	Location     *time.Location
}

// Scheduler triggers the daily notification jobs on a cron schedule
type Scheduler struct {
	spec     string
	location *time.Location
	reminder ReminderRunner
	logger   *zap.Logger
	now      func() time.Time
}

// New validates the cron spec and creates a scheduler
func New(cfg Config, reminder ReminderRunner, logger *zap.Logger) (*Scheduler, error) {
	spec := cfg.ReminderSpec
	if spec == "" {
		spec = DefaultReminderSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		spec:     spec,
		location: loc,
		reminder: reminder,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run starts the cron loop and blocks until ctx is cancelled. A job that is
// still running when ctx ends is waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(
			cron.Recover(cronLogger{s.logger}),
			cron.SkipIfStillRunning(cronLogger{s.logger}),
		),
	)

	if _, err := c.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to add reminder job: %w", err)
	}

	c.Start()
	s.logger.Info("Scheduler started", zap.String("reminder_spec", s.spec))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("Scheduler stopped")
	return nil
}

// RunOnce executes the reminder and deadline alert jobs a single time.
// A failure in one job does not skip the other.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.runJob(ctx, "reminder", s.reminder.SendIncompleteReminders)
	s.runJob(ctx, "deadline_alert", s.reminder.SendAgreementDeadlineAlerts)
}

func (s *Scheduler) runJob(ctx context.Context, name string, job func(ctx context.Context, now time.Time) (int, error)) {
	start := s.now()
	s.logger.Info("Running scheduled job", zap.String("job", name))

	sent, err := job(ctx, start)
	if err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", name),
			zap.Int("sent", sent),
			zap.Error(err))
		return
	}

	s.logger.Info("Scheduled job finished",
		zap.String("job", name),
		zap.Int("sent", sent),
		zap.Duration("elapsed", s.now().Sub(start)))
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
