package parserutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Vodeneev/nbaprops/internal/pkg/interfaces"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
	"github.com/Vodeneev/nbaprops/internal/pkg/storage"
)

// RunOptions configures how a parser run is wrapped.
type RunOptions struct {
	// Lock serializes runs across processes. Nil means no lock.
	Lock storage.RunLock
	// Notifier is told about every finished run. Optional.
	Notifier interfaces.RunNotifier
	// Tracker collects reports for the status server. Optional.
	Tracker *performance.Tracker
	// Timeout bounds a single run; 0 means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// CreateCycleContext creates a context for one run with optional timeout.
func CreateCycleContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// RunOnce takes the run lock, runs p once, records the report and sends the notification.
// It returns storage.ErrLockHeld without running when another run holds the lock.
func RunOnce(ctx context.Context, p interfaces.Parser, opts RunOptions) (*performance.RunReport, error) {
	logger := opts.logger().With("parser", p.GetName())
	ctx, cancel := CreateCycleContext(ctx, opts.Timeout)
	defer cancel()

	if opts.Lock != nil {
		release, err := opts.Lock.Acquire(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrLockHeld) {
				logger.Warn("run skipped, another run holds the lock")
			}
			return nil, err
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := release(releaseCtx); err != nil {
				logger.Error("failed to release run lock", "error", err)
			}
		}()
	}

	start := time.Now()
	report, err := p.ParseOnce(ctx)
	if err != nil {
		logger.Error("run failed", "error", err, "duration", time.Since(start))
	}
	if report == nil {
		return nil, err
	}
	if opts.Tracker != nil {
		opts.Tracker.Record(report)
	}
	if opts.Notifier != nil {
		if nerr := opts.Notifier.NotifyRun(ctx, report); nerr != nil {
			logger.Warn("failed to send run notification", "error", nerr)
		}
	}
	return report, err
}

// Scheduler runs a parser on a cron schedule. A tick that fires while the previous run is
// still going is skipped.
type Scheduler struct {
	cron      *cron.Cron
	job       cron.Job
	triggered sync.WaitGroup
	logger    *slog.Logger
}

// NewScheduler parses schedule (standard 5-field cron or descriptors like "@every 30m").
// Every run gets a child context of ctx.
func NewScheduler(ctx context.Context, schedule string, p interfaces.Parser, opts RunOptions) (*Scheduler, error) {
	logger := opts.logger()
	cl := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(cl))

	run := cron.FuncJob(func() {
		if _, err := RunOnce(ctx, p, opts); err != nil && !errors.Is(err, storage.ErrLockHeld) {
			logger.Error("scheduled run finished with error", "error", err)
		}
	})
	// Ticks and Trigger share one wrapper so they share its running flag.
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(run)
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c, job: job, logger: logger}, nil
}

// Trigger starts an extra run now unless one is already in progress. It does not wait.
func (s *Scheduler) Trigger() {
	s.triggered.Add(1)
	go func() {
		defer s.triggered.Done()
		s.job.Run()
	}()
}

// Run starts the schedule and blocks until ctx is done, then waits for running jobs,
// scheduled or triggered.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("scheduler started", "next_run", s.Next())
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.triggered.Wait()
	s.logger.Info("scheduler stopped")
}

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
