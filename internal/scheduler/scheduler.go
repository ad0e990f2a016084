// Package scheduler runs periodic jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron   *cron.Cron
	logger *logging.Logger
}

func New(logger *logging.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	cl := cronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Add registers fn on a cron expression. Each run gets its own context bounded by
// timeout.
func (s *Scheduler) Add(name, expr string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = time.Minute
	}

	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		started := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.InfoContext(ctx, "scheduled job finished", "job", name, "duration", time.Since(started).String())
	})
	if err != nil {
		return fmt.Errorf("add job %s with cron %q: %w", name, expr, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
