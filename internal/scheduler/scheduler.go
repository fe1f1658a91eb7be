// Package scheduler sends periodic practice reminders.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
)

// ErrNoSchedule is returned by Start when no cron expression is configured
var ErrNoSchedule = errors.New("no reminder schedule configured")

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	logger    *slog.Logger
}

// Notifier delivers a reminder to the user
type Notifier interface {
	SendReminder() error
}

// New creates a scheduler using the local time zone
func New(notifier Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start schedules the reminder with a standard 5-field cron expression and
// runs the scheduler in the background
func (s *Scheduler) Start(cronExpr string) error {
	cronExpr = strings.TrimSpace(cronExpr)
	if cronExpr == "" {
		return ErrNoSchedule
	}

	if _, err := s.scheduler.Cron(cronExpr).Do(s.remind); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", cronExpr, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("practice reminders scheduled", "cron", cronExpr)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) remind() {
	if err := s.notifier.SendReminder(); err != nil {
		s.logger.Error("failed to send reminder", "error", err)
	}
}
