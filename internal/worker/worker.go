// Package worker drives the evaluation and delivery cycles on cron
// schedules.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-giftminder/internal/config"
)

// parser accepts standard 5-field expressions and descriptors like @hourly.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSpec reports whether spec is a usable cron expression.
func ValidateSpec(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrCronSpec, spec, err)
	}
	return nil
}

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Runner owns the cron engine. Evaluate recomputes the plan; Deliver fires
// due notifications. A job that is still running when its next tick comes
// is skipped rather than stacked.
type Runner struct {
	EvaluateSpec string
	DeliverSpec  string
	Evaluate     Job
	Deliver      Job
	Location     *time.Location // zone the specs are read in; nil means Local
}

// Run evaluates once immediately, then follows the schedules until ctx is
// cancelled. It waits for in-flight jobs before returning.
func (r *Runner) Run(ctx context.Context) error {
	if err := ValidateSpec(r.EvaluateSpec); err != nil {
		return err
	}
	if err := ValidateSpec(r.DeliverSpec); err != nil {
		return err
	}

	log := slogLogger{}
	opts := []cron.Option{
		cron.WithParser(parser),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	}
	if r.Location != nil {
		opts = append(opts, cron.WithLocation(r.Location))
	}
	c := cron.New(opts...)

	jobs := []struct {
		name string
		spec string
		job  Job
	}{
		{config.JobEvaluate, r.EvaluateSpec, r.Evaluate},
		{config.JobDeliver, r.DeliverSpec, r.Deliver},
	}
	for _, j := range jobs {
		if j.job == nil {
			continue
		}
		if _, err := c.AddFunc(j.spec, run(ctx, j.name, j.job)); err != nil {
			return fmt.Errorf("%s %q: %w", config.ErrCronSpec, j.spec, err)
		}
		slog.Debug(config.MsgJobScheduled,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyJob, j.name,
			config.LogKeySpec, j.spec,
		)
	}

	slog.Info(config.MsgWorkerStart, config.LogKeyComponent, config.CompWorker)

	if r.Evaluate != nil {
		run(ctx, config.JobEvaluate, r.Evaluate)()
	}
	if r.Deliver != nil {
		run(ctx, config.JobDeliver, r.Deliver)()
	}

	c.Start()
	<-ctx.Done()

	slog.Info(config.MsgWorkerStop, config.LogKeyComponent, config.CompWorker)
	<-c.Stop().Done()
	return nil
}

// run adapts a Job to a cron func, logging its outcome.
func run(ctx context.Context, name string, job Job) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := job(ctx); err != nil {
			slog.Error(config.MsgJobFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyJob, name,
				config.LogKeyError, err,
			)
			return
		}
		slog.Debug(config.MsgJobDone,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyJob, name,
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	}
}

// slogLogger routes cron's internal logging to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, append([]any{config.LogKeyComponent, config.CompWorker}, keysAndValues...)...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append([]any{config.LogKeyComponent, config.CompWorker, config.LogKeyError, err}, keysAndValues...)...)
}
