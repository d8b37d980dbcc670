// Package jobs holds the scheduled background jobs run by the worker binary.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"finwise/internal/core"

	"golang.org/x/sync/errgroup"
)

// Job is one scheduled unit of work. Run receives the tick time so job logic
// stays deterministic under test.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// NotificationSink records a user notification. *notify.Notifier is the
// production implementation.
type NotificationSink interface {
	Notify(ctx context.Context, userID int64, message string, typ core.NotificationType) error
}

// Scheduled pairs a job with its tick interval.
type Scheduled struct {
	Job      Job
	Interval time.Duration
}

// Run executes every scheduled job on its own ticker until the context ends.
// Each job fires once immediately so a restart never waits a full interval.
// Job errors are logged, never fatal.
func Run(ctx context.Context, schedule []Scheduled) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range schedule {
		g.Go(func() error {
			runOnce(ctx, s.Job, time.Now())

			ticker := time.NewTicker(s.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					slog.InfoContext(ctx, "Job loop stopping", "job", s.Job.Name())
					return ctx.Err()
				case now := <-ticker.C:
					runOnce(ctx, s.Job, now)
				}
			}
		})
	}

	return g.Wait()
}

func runOnce(ctx context.Context, job Job, now time.Time) {
	if err := job.Run(ctx, now); err != nil {
		slog.ErrorContext(ctx, "Job run failed", "job", job.Name(), "error", err)
		return
	}
	slog.DebugContext(ctx, "Job run completed", "job", job.Name())
}
