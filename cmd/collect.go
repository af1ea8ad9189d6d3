package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
)

type collectCmd struct {
	timeout time.Duration
}

func (*collectCmd) Name() string     { return "collect" }
func (*collectCmd) Synopsis() string { return "collects trades, balance and prices once" }
func (*collectCmd) Usage() string {
	return `btcf collect [-timeout <duration>]

Fetches the recent trades and the balance from Bitvavo, the spot price and
yesterday's close from CoinGecko, merges them into the stored snapshot and
writes it back.

Fetch failures are logged and degrade the corresponding field; only a
failure to write the snapshot makes the command fail.
`
}

func (c *collectCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.timeout, "timeout", 2*time.Minute, "Maximum duration of the run.")
}

func (c *collectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	col, err := newCollector(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot set up the collector: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report, err := col.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printReport(report)
	return subcommands.ExitSuccess
}
