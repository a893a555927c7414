// Package cronjob runs the background sweeps on cron schedules.
package cronjob

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"task-scheduling-assistant/pkg/log"
)

// Job is one unit of background work.
type Job func(ctx context.Context) error

var ErrUnknownJob = errors.New("unknown job")

// Runner schedules named jobs. A job whose previous run is still going is skipped,
// and a panicking job is recovered and logged.
type Runner struct {
	l       log.Logger
	cron    *cron.Cron
	timeout time.Duration

	mu     sync.Mutex
	jobs   map[string]Job
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Runner. Each run gets its own context bounded by timeout (0 = unbounded).
func New(l log.Logger, timeout time.Duration) *Runner {
	logger := cronLogger{l: l}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		l:       l,
		cron:    cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		timeout: timeout,
		jobs:    make(map[string]Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under name with a standard 5-field cron spec or a descriptor like "@every 10s".
func (r *Runner) Add(name, spec string, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[name]; ok {
		return fmt.Errorf("cronjob: %s already registered", name)
	}
	if _, err := r.cron.AddFunc(spec, func() { _ = r.run(name, job) }); err != nil {
		return fmt.Errorf("cronjob: %s: invalid schedule %q: %w", name, spec, err)
	}
	r.jobs[name] = job
	return nil
}

// RunOnce runs a registered job immediately, outside the schedule.
func (r *Runner) RunOnce(name string) error {
	r.mu.Lock()
	job, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return r.run(name, job)
}

func (r *Runner) run(name string, job Job) error {
	ctx := r.ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := time.Now()
	err := job(ctx)
	if err != nil {
		r.l.Errorf(ctx, "cronjob.%s: failed after %s: %v", name, time.Since(started).Round(time.Millisecond), err)
		return err
	}
	r.l.Debugf(ctx, "cronjob.%s: done in %s", name, time.Since(started).Round(time.Millisecond))
	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop stops scheduling, cancels running jobs and waits for them until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	r.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	l log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugf(context.Background(), "cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorf(context.Background(), "cron: %s %v: %v", msg, keysAndValues, err)
}
