package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/btcfolio/collector"
	"github.com/etnz/btcfolio/scheduler"
	"github.com/google/subcommands"
)

type scheduleCmd struct {
	schedule string
	timeout  time.Duration
	now      bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "runs the collector on a cron schedule" }
func (*scheduleCmd) Usage() string {
	return `btcf schedule [-schedule <cron>] [-now=false]

Runs 'btcf collect' on a cron schedule until interrupted. The schedule
defaults to COLLECT_SCHEDULE and accepts a seconds field or descriptors like
"@every 1h" and "@daily". A run is skipped while the previous one is still
going.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "schedule", "", "Cron schedule. Defaults to COLLECT_SCHEDULE.")
	f.DurationVar(&c.timeout, "timeout", 2*time.Minute, "Maximum duration of each run.")
	f.BoolVar(&c.now, "now", true, "Run a collection immediately before waiting for the schedule.")
}

func (c *scheduleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.schedule == "" {
		c.schedule = cfg.CollectSchedule
	}
	col, err := newCollector(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot set up the collector: %v\n", err)
		return subcommands.ExitFailure
	}

	job := collector.NewJob(col, c.timeout)
	sched := scheduler.New(log)
	if err := sched.AddJob(c.schedule, job); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", c.schedule, err)
		return subcommands.ExitUsageError
	}
	if c.now {
		if err := sched.RunNow(job); err != nil {
			log.Error().Err(err).Msg("initial collection failed")
		}
	}

	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("Shutting down scheduler")
	return subcommands.ExitSuccess
}
