package utils

import (
	"context"
	"fmt"
	"lms/config"
	"time"

	"github.com/robfig/cron/v3"
)

// Recalculator rebuilds stored enrollment progress.
type Recalculator interface {
	RecalculateAll(ctx context.Context) (int, error)
}

var schedulerLog = config.Log.WithField("component", "progress-scheduler")

// NewProgressScheduler returns a cron that runs RecalculateAll on the cron schedule in tz.
// The caller starts and stops it.
func NewProgressScheduler(r Recalculator, schedule, tz string) (*cron.Cron, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() { RunProgressRecalculation(context.Background(), r) }); err != nil {
		return nil, fmt.Errorf("schedule progress recalculation %q: %w", schedule, err)
	}
	return c, nil
}

// RunProgressRecalculation runs one recalculation pass and logs the outcome.
func RunProgressRecalculation(ctx context.Context, r Recalculator) {
	started := time.Now()
	schedulerLog.Info("Running enrollment progress recalculation...")

	n, err := r.RecalculateAll(ctx)
	if err != nil {
		schedulerLog.WithError(err).Error("Enrollment progress recalculation failed")
		return
	}
	schedulerLog.WithField("enrollments", n).
		WithField("took", time.Since(started).String()).
		Info("Enrollment progress recalculation finished")
}
