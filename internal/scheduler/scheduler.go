// Package scheduler runs the periodic jobs of the wallet service.
package scheduler

import (
	"context"
	"sync"
	"time"

	"oruswallet/internal/logger"
	"oruswallet/internal/services/transfer"

	"github.com/robfig/cron/v3"
)

// AutoPayRunner is the part of the transfer engine the scheduler drives.
type AutoPayRunner interface {
	RunAutoPay(ctx context.Context, now time.Time) (transfer.AutoPayReport, error)
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	autoPay  AutoPayRunner
	schedule string
	timeout  time.Duration
	now      func() time.Time

	// one sweep at a time even if a run overlaps the next tick
	running sync.Mutex
}

// New creates a scheduler that runs the auto-pay sweep on schedule.
func New(autoPay AutoPayRunner, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(logger.Logger())
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		autoPay:  autoPay,
		schedule: schedule,
		timeout:  10 * time.Minute,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunAutoPay); err != nil {
		logger.Errorf("failed to schedule auto-pay job: %v", err)
		return err
	}
	logger.WithField("schedule", s.schedule).Info("scheduled auto-pay job")
	s.cron.Start()
	return nil
}

// Stop gracefully stops the cron scheduler. The returned context is done
// once running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunAutoPay performs a single auto-pay sweep.
func (s *Scheduler) RunAutoPay() {
	if !s.running.TryLock() {
		logger.Warn("auto-pay sweep already running")
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := s.now()
	report, err := s.autoPay.RunAutoPay(ctx, start)
	if err != nil {
		logger.WithField("paid", report.Paid).Errorf("auto-pay sweep aborted: %v", err)
		return
	}
	logger.WithField("duration", time.Since(start).String()).Infof(
		"auto-pay sweep: %d paid, %d skipped, %d failed", report.Paid, report.Skipped, report.Failed)
}
