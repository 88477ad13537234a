package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/config"
	"github.com/mamadbah2/libdesk/internal/service/reporting"
)

// DuesSource lists the dues rows reminders are built from.
type DuesSource interface {
	DuesTable() []reporting.DuesRow
}

// Notifier delivers a text message to a student's mobile.
type Notifier interface {
	Notify(ctx context.Context, mobile, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReminderConfig
	dues     DuesSource
	notifier Notifier
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. Jobs run in loc so that a schedule such as
// "0 9 5 * *" means 09:00 library time.
func NewScheduler(cfg config.ReminderConfig, loc *time.Location, dues DuesSource, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		dues:     dues,
		notifier: notifier,
		logger:   logger,
	}
}

// Start registers the reminder job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDuesReminders); err != nil {
		s.logger.Error("failed to schedule dues reminders", zap.Error(err))
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDuesReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent := s.RunOnce(ctx)
	s.logger.Info("dues reminders sent", zap.Int("count", sent))
}

// RunOnce sends one reminder to every student with an outstanding balance and returns how
// many were delivered. Delivery failures are logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	sent := 0
	for _, row := range s.dues.DuesTable() {
		if ctx.Err() != nil {
			s.logger.Warn("reminder run cancelled", zap.Error(ctx.Err()))
			break
		}

		msg := reporting.ReminderMessage(row)
		if msg == "" {
			continue
		}
		if err := s.notifier.Notify(ctx, row.Mobile, msg); err != nil {
			s.logger.Error("failed to send reminder", zap.String("mobile", row.Mobile), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
