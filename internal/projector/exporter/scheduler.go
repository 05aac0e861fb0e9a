package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/propdesk-cashbook/internal/config"
	"github.com/robfig/cron/v3"
)

// Job is a scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs named jobs on six-field cron expressions in the business time zone
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	logger *slog.Logger
}

func NewScheduler(loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(config.ScheduleParser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:    context.Background(),
		logger: logger,
	}
}

// Add registers job on a cron schedule. An empty schedule disables the job.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	if schedule == "" {
		s.logger.Info("Scheduled job disabled", "job", name)
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		started := time.Now()
		if err := job(s.ctx); err != nil {
			s.logger.Error("Scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("Scheduled job finished", "job", name, "duration", time.Since(started).String())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", name, schedule, err)
	}

	s.logger.Info("Scheduled job registered", "job", name, "schedule", schedule)
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for running jobs
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("Scheduler started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()

	s.logger.Info("Scheduler stopping, waiting for running jobs")
	<-s.cron.Stop().Done()
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
