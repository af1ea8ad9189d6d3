package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/btcfolio/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	port     int
	dev      bool
	noOracle bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the portfolio dashboard" }
func (*serveCmd) Usage() string {
	return `btcf serve [-port <port>] [-dev] [-no-oracle]

Serves the dashboard over HTTP:

  /             metrics, chart and transactions (?sort=<column>&order=asc|desc)
  /report       the markdown report as an HTML page
  /api/view     the computed view as JSON
  /api/refresh  POST to drop the cached snapshot and spot price

The snapshot is read from the store without credentials and the spot price
from CoinGecko, both cached (SNAPSHOT_TTL, SPOT_TTL).
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on. Defaults to PORT.")
	f.BoolVar(&c.dev, "dev", false, "Development mode: no response compression.")
	f.BoolVar(&c.noOracle, "no-oracle", false, "Value the portfolio at the stored spot price.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.port == 0 {
		c.port = cfg.Port
	}
	p, err := newPresenter(cfg, log, c.noOracle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	srv := server.New(server.Config{Port: c.port, Log: log, Viewer: p, DevMode: c.dev})
	errs := make(chan error, 1)
	go func() { errs <- srv.Start() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
