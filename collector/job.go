package collector

import (
	"context"
	"time"
)

// Job runs the collector on a schedule.
type Job struct {
	collector *Collector
	timeout   time.Duration
}

// NewJob returns a job running c with a per run timeout.
func NewJob(c *Collector, timeout time.Duration) *Job {
	return &Job{collector: c, timeout: timeout}
}

// Name returns the job name
func (j *Job) Name() string { return "collect" }

// Run executes one collection.
func (j *Job) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	_, err := j.collector.Run(ctx)
	return err
}
