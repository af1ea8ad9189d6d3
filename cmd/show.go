package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/cache"
	"github.com/etnz/btcfolio/config"
	"github.com/etnz/btcfolio/presenter"
	"github.com/etnz/btcfolio/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type showCmd struct {
	sort     string
	order    string
	style    string
	width    int
	raw      bool
	noOracle bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "displays the portfolio report in the terminal" }
func (*showCmd) Usage() string {
	return `btcf show [-sort <column>] [-order asc|desc] [-style <style>] [-raw]

Displays the portfolio metrics and the transactions, sorted by date by
default. Columns: date, side, amount, price, value, fee.

With -raw the markdown is printed as is, ready to be piped to a file.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sort, "sort", "", "Column to sort the transactions by.")
	f.StringVar(&c.order, "order", "", "Sort order, asc or desc.")
	f.StringVar(&c.style, "style", "auto", "Terminal style: auto, dark, light, notty...")
	f.IntVar(&c.width, "width", 100, "Word wrap width.")
	f.BoolVar(&c.raw, "raw", false, "Print the markdown without terminal styling.")
	f.BoolVar(&c.noOracle, "no-oracle", false, "Value the portfolio at the stored spot price.")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sort, err := presenter.ParseSort(c.sort, c.order)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	p, err := newPresenter(cfg, log, c.noOracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := renderer.Markdown(p.View(ctx), sort)
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := renderer.Terminal(md, c.style, c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

// newPresenter wires the presenter with its reader, oracle and cache.
func newPresenter(cfg *config.Config, log zerolog.Logger, noOracle bool) (*presenter.Presenter, error) {
	reader, err := openReader(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("cannot open the snapshot store: %w", err)
	}
	exclusions, err := cfg.Exclusions()
	if err != nil {
		return nil, err
	}
	var oracle btcfolio.PriceOracle
	if !noOracle {
		oracle = newOracle(cfg, log)
	}
	return presenter.New(presenter.Config{
		Market:      cfg.ParsedMarket(),
		Path:        cfg.SnapshotPath,
		SnapshotTTL: cfg.SnapshotTTL,
		SpotTTL:     cfg.SpotTTL,
		Exclusions:  exclusions,
	}, reader, oracle, cache.New(10*time.Minute), log), nil
}
