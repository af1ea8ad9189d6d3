// Package cmd implements the CLI application collecting and displaying a
// Bitcoin portfolio.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/bitvavo"
	"github.com/etnz/btcfolio/coingecko"
	"github.com/etnz/btcfolio/collector"
	"github.com/etnz/btcfolio/config"
	"github.com/etnz/btcfolio/github"
	"github.com/etnz/btcfolio/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&collectCmd{}, "collector")
	c.Register(&scheduleCmd{}, "collector")

	c.Register(&serveCmd{}, "dashboard")
	c.Register(&showCmd{}, "dashboard")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var logLevel = flag.String("log-level", "", "Overrides LOG_LEVEL (debug, info, warn, error)")

// loadConfig reads the configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, logger.Nop(), err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	return cfg, logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}), nil
}

func githubConfig(cfg *config.Config) github.Config {
	return github.Config{Repo: cfg.GitHubRepo, Branch: cfg.GitHubBranch, Token: cfg.GitHubToken}
}

// openStore returns the store the collector writes to.
func openStore(cfg *config.Config, log zerolog.Logger) (btcfolio.Store, error) {
	if cfg.Store == config.StoreFile {
		return btcfolio.NewFileStore(cfg.StoreDir), nil
	}
	return github.NewStore(githubConfig(cfg), log)
}

// openReader returns the reader the dashboard loads the snapshot from.
func openReader(cfg *config.Config, log zerolog.Logger) (btcfolio.Reader, error) {
	if cfg.Store == config.StoreFile {
		return btcfolio.NewFileStore(cfg.StoreDir), nil
	}
	return github.NewRawReader(githubConfig(cfg), log)
}

func newOracle(cfg *config.Config, log zerolog.Logger) *coingecko.Client {
	return coingecko.NewClient(cfg.CoinGeckoURL, log)
}

// newCollector wires the collector with its exchange, oracle and store.
func newCollector(cfg *config.Config, log zerolog.Logger) (*collector.Collector, error) {
	if err := cfg.ValidateCollector(); err != nil {
		return nil, err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	fixtures, err := cfg.PriceFixtures()
	if err != nil {
		return nil, err
	}
	exchange := bitvavo.NewClient(bitvavo.Config{
		APIKey:    cfg.BitvavoAPIKey,
		APISecret: cfg.BitvavoAPISecret,
		BaseURL:   cfg.BitvavoURL,
		Window:    cfg.BitvavoAccessWindow,
	}, log)

	return collector.New(collector.Config{
		Market:          cfg.ParsedMarket(),
		TradeLimit:      cfg.TradeLimit,
		Retention:       cfg.Retention(),
		Path:            cfg.SnapshotPath,
		FetchDailyClose: cfg.FetchDailyClose,
		PriceFixtures:   fixtures,
	}, exchange, newOracle(cfg, log), store, log), nil
}

// printReport writes a one line summary of a collection run.
func printReport(r *collector.Report) {
	status := "ok"
	if r.Degraded() {
		status = "degraded"
	}
	fmt.Fprintf(os.Stderr, "collect %s: %d trades stored, balance %s, spot %s (%s), revision %s\n",
		status, r.Stored, r.Balance.Value, r.Spot.Value, sourceName(r.SpotSource), r.Revision)
}

func sourceName(s string) string {
	if s == "" {
		return "unavailable"
	}
	return s
}
