// Package workers runs background maintenance jobs for the API server.
package workers

import (
	"context"
	"log/slog"
	"time"

	"clubboard/internal/observability"

	"github.com/go-co-op/gocron/v2"
)

// Purger hard-deletes profiles soft-deleted for longer than retention.
type Purger interface {
	PurgeDeleted(ctx context.Context, retention time.Duration) ([]string, error)
}

// PurgeJob removes expired soft-deleted profiles.
type PurgeJob struct {
	purger    Purger
	retention time.Duration
	timeout   time.Duration
}

func NewPurgeJob(p Purger, retention time.Duration) *PurgeJob {
	return &PurgeJob{purger: p, retention: retention, timeout: time.Minute}
}

// Run purges once and returns the number of profiles removed.
func (j *PurgeJob) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	ids, err := j.purger.PurgeDeleted(ctx, j.retention)
	if err != nil {
		slog.ErrorContext(ctx, "Profile purge failed", slog.String("error", err.Error()))
		return 0, err
	}
	if len(ids) > 0 {
		observability.ProfilesPurged.Add(float64(len(ids)))
		slog.InfoContext(ctx, "Purged soft-deleted profiles",
			slog.Int("count", len(ids)),
			slog.Duration("retention", j.retention),
		)
	}
	return len(ids), nil
}

// StartPurgeScheduler runs the purge every interval until the returned
// scheduler is shut down. A zero retention disables purging and returns a
// nil scheduler.
func StartPurgeScheduler(ctx context.Context, p Purger, retention, interval time.Duration) (gocron.Scheduler, error) {
	if retention <= 0 {
		return nil, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	job := NewPurgeJob(p, retention)
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { _, _ = job.Run(ctx) }),
		gocron.WithName("purge-soft-deleted-profiles"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	slog.Info("Profile purge scheduled",
		slog.Duration("retention", retention),
		slog.Duration("interval", interval),
	)
	return sched, nil
}
