// Package config reads the application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/date"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	BitvavoAPIKey       string
	BitvavoAPISecret    string
	BitvavoURL          string
	BitvavoAccessWindow int

	Market         string
	TradeLimit     int
	TradeRetention string

	CoinGeckoURL string

	GitHubToken  string
	GitHubRepo   string
	GitHubBranch string
	SnapshotPath string
	Store        string // github or file
	StoreDir     string

	ExcludedTrades    string
	ExclusionsFile    string
	PriceFixturesFile string
	FetchDailyClose   bool

	CollectSchedule string
	SnapshotTTL     time.Duration
	SpotTTL         time.Duration
	Port            int

	LogLevel  string
	LogPretty bool

	// malformed variables found by FromEnv
	envErr error
}

// Store kinds.
const (
	StoreGitHub = "github"
	StoreFile   = "file"
)

// Load reads configuration from environment variables, after loading a .env
// file when there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the environment without validating it. Malformed numbers,
// booleans and durations keep their default and are reported by Validate.
func FromEnv() *Config {
	var env envReader
	cfg := &Config{
		BitvavoAPIKey:       getEnv("BITVAVO_API_KEY", ""),
		BitvavoAPISecret:    getEnv("BITVAVO_API_SECRET", ""),
		BitvavoURL:          getEnv("BITVAVO_URL", "https://api.bitvavo.com/v2"),
		BitvavoAccessWindow: env.getEnvAsInt("BITVAVO_ACCESS_WINDOW", 10000),

		Market:         getEnv("MARKET", "BTC-EUR"),
		TradeLimit:     env.getEnvAsInt("TRADE_LIMIT", 500),
		TradeRetention: getEnv("TRADE_RETENTION", string(btcfolio.RetainMerge)),

		CoinGeckoURL: getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),

		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", ""),
		GitHubBranch: getEnv("GITHUB_BRANCH", "main"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "btc_data.json"),
		Store:        getEnv("STORE", StoreGitHub),
		StoreDir:     getEnv("STORE_DIR", "."),

		ExcludedTrades:    getEnv("EXCLUDED_TRADES", ""),
		ExclusionsFile:    getEnv("EXCLUSIONS_FILE", ""),
		PriceFixturesFile: getEnv("PRICE_FIXTURES_FILE", ""),
		FetchDailyClose:   env.getEnvAsBool("FETCH_DAILY_CLOSE", true),

		CollectSchedule: getEnv("COLLECT_SCHEDULE", "@every 1h"),
		SnapshotTTL:     env.getEnvAsDuration("SNAPSHOT_TTL", 5*time.Minute),
		SpotTTL:         env.getEnvAsDuration("SPOT_TTL", time.Minute),
		Port:            env.getEnvAsInt("PORT", 8080),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: env.getEnvAsBool("LOG_PRETTY", true),
	}
	cfg.envErr = errors.Join(env.errs...)
	return cfg
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	m, err := btcfolio.ParseMarket(c.Market)
	if err != nil {
		return fmt.Errorf("MARKET: %w", err)
	}
	// the document stores prices under a fixed btc_price_eur key
	if m.Quote != btcfolio.DocumentCurrency {
		return fmt.Errorf("MARKET %q must be quoted in %s", c.Market, btcfolio.DocumentCurrency)
	}
	if c.TradeLimit < 1 || c.TradeLimit > 1000 {
		return fmt.Errorf("TRADE_LIMIT %d must be between 1 and 1000", c.TradeLimit)
	}
	if _, err := btcfolio.ParseRetention(c.TradeRetention); err != nil {
		return fmt.Errorf("TRADE_RETENTION: %w", err)
	}
	if c.SnapshotPath == "" {
		return errors.New("SNAPSHOT_PATH is required")
	}
	switch c.Store {
	case StoreGitHub:
		if c.GitHubRepo == "" {
			return errors.New("GITHUB_REPO is required with the github store")
		}
	case StoreFile:
		if c.StoreDir == "" {
			return errors.New("STORE_DIR is required with the file store")
		}
	default:
		return fmt.Errorf("STORE %q must be %q or %q", c.Store, StoreGitHub, StoreFile)
	}
	if c.SnapshotTTL < 0 || c.SpotTTL < 0 {
		return errors.New("SNAPSHOT_TTL and SPOT_TTL cannot be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	return nil
}

// ValidateCollector checks the settings needed to write the snapshot.
func (c *Config) ValidateCollector() error {
	if c.BitvavoAPIKey == "" || c.BitvavoAPISecret == "" {
		return errors.New("BITVAVO_API_KEY and BITVAVO_API_SECRET are required")
	}
	if c.Store == StoreGitHub && c.GitHubToken == "" {
		return errors.New("GITHUB_TOKEN is required to commit to the github store")
	}
	return nil
}

// ParsedMarket returns the validated market.
func (c *Config) ParsedMarket() btcfolio.Market {
	m, _ := btcfolio.ParseMarket(c.Market)
	return m
}

// Retention returns the validated trade retention policy.
func (c *Config) Retention() btcfolio.Retention {
	r, _ := btcfolio.ParseRetention(c.TradeRetention)
	return r
}

// Exclusions returns the union of EXCLUDED_TRADES and EXCLUSIONS_FILE.
func (c *Config) Exclusions() (btcfolio.ExclusionSet, error) {
	set, err := btcfolio.ParseExclusions(c.ExcludedTrades)
	if err != nil {
		return nil, fmt.Errorf("EXCLUDED_TRADES: %w", err)
	}
	if c.ExclusionsFile != "" {
		fromFile, err := btcfolio.LoadExclusions(c.ExclusionsFile)
		if err != nil {
			return nil, err
		}
		set.Add(fromFile)
	}
	return set, nil
}

// PriceFixtures returns the seed prices, nil when PRICE_FIXTURES_FILE is not set.
func (c *Config) PriceFixtures() (*date.History, error) {
	if c.PriceFixturesFile == "" {
		return nil, nil
	}
	return btcfolio.LoadPriceFixtures(c.PriceFixturesFile)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and records the malformed ones.
type envReader struct{ errs []error }

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (r *envReader) getEnvAsInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return intVal
}

func (r *envReader) getEnvAsBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return boolVal
}

func (r *envReader) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return d
}
