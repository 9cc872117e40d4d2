package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a recurring task run by the scheduler.
type Job struct {
	Name string
	Spec string // standard five-field cron expression
	Run  func(ctx context.Context) error
}

// JobTimeout bounds a single run.
const JobTimeout = 5 * time.Minute

// NewScheduler registers jobs on a cron scheduler running in loc. The caller starts and stops it.
// PRE: every Spec parses as a standard cron expression
// POST: a panicking job is recovered and logged; other jobs keep running
func NewScheduler(loc *time.Location, jobs ...Job) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	for _, job := range jobs {
		if _, err := c.AddFunc(job.Spec, runJob(job)); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return c, nil
}

func runJob(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
		defer cancel()
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			slog.Error("job_event", "event", "job_failed", "job", job.Name, "error", err.Error())
			return
		}
		slog.Info("job_event", "event", "job_done", "job", job.Name, "duration_ms", time.Since(start).Milliseconds())
	}
}
