package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
)

// Job is one scheduled run. It must honor ctx cancellation.
type Job func(ctx context.Context) error

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs a single named job on a cron schedule. Overlapping runs
// are skipped.
type Scheduler struct {
	name     string
	schedule cron.Schedule
	spec     string
	job      Job

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func New(name string, spec string, job Job) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errs.Wrapf(err, "parse schedule %q", spec)
	}
	return &Scheduler{
		name:     name,
		schedule: schedule,
		spec:     spec,
		job:      job,
	}, nil
}

// Start schedules the job until ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler %s already running", s.name)
	}

	runCtx, cancel := context.WithCancel(logging.WithAttrs(logging.WithComponent(ctx, "scheduler"), slog.String("job", s.name)))
	logger := cronLogger{ctx: runCtx}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		_ = s.RunNow(runCtx)
	}))
	c.Start()

	s.cron = c
	s.cancel = cancel
	s.running = true
	logging.Info(runCtx, "scheduler started", slog.String("schedule", s.spec))
	return nil
}

// Stop cancels the in-flight run, if any, and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false
}

// RunNow runs the job once, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if err := s.job(ctx); err != nil {
		logging.Error(ctx, "scheduled job failed", slog.String("job", s.name), slog.Any("err", errs.Loggable(err)))
		return err
	}
	return nil
}

type cronLogger struct {
	ctx context.Context
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	logging.Logger(l.ctx).Log(l.ctx, slog.LevelDebug, msg, append(attrsAsArgs(logging.Attrs(l.ctx)), keysAndValues...)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append(attrsAsArgs(logging.Attrs(l.ctx)), keysAndValues...)
	args = append(args, slog.Any("err", errs.Loggable(err)))
	logging.Logger(l.ctx).Log(l.ctx, slog.LevelError, msg, args...)
}

func attrsAsArgs(attrs []slog.Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	return out
}
