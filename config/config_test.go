package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"MARKET", "TRADE_LIMIT", "STORE", "SNAPSHOT_TTL", "FETCH_DAILY_CLOSE", "PORT", "SNAPSHOT_PATH"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "BTC-EUR", cfg.Market)
	assert.Equal(t, 500, cfg.TradeLimit)
	assert.Equal(t, StoreGitHub, cfg.Store)
	assert.Equal(t, "btc_data.json", cfg.SnapshotPath)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotTTL)
	assert.True(t, cfg.FetchDailyClose)
	assert.Equal(t, 8080, cfg.Port)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TRADE_LIMIT", "100")
	t.Setenv("SPOT_TTL", "30s")
	t.Setenv("FETCH_DAILY_CLOSE", "false")
	t.Setenv("TRADE_RETENTION", "replace")

	cfg := FromEnv()
	assert.Equal(t, 100, cfg.TradeLimit)
	assert.Equal(t, 30*time.Second, cfg.SpotTTL)
	assert.False(t, cfg.FetchDailyClose)
	assert.Equal(t, btcfolio.RetainReplace, cfg.Retention())
}

func TestFromEnv_Malformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TRADE_LIMIT", "abc"},
		{"SNAPSHOT_TTL", "5x"},
		{"FETCH_DAILY_CLOSE", "sometimes"},
		{"PORT", "not a port"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("GITHUB_REPO", "owner/repo")
			t.Setenv(tt.key, tt.value)

			err := FromEnv().Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func validConfig() *Config {
	return &Config{
		Market:         "BTC-EUR",
		TradeLimit:     500,
		TradeRetention: "merge",
		SnapshotPath:   "btc_data.json",
		Store:          StoreGitHub,
		GitHubRepo:     "owner/repo",
		Port:           8080,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"file store", func(c *Config) { c.Store = StoreFile; c.StoreDir = "."; c.GitHubRepo = "" }, false},
		{"usd market", func(c *Config) { c.Market = "BTC-USD" }, true},
		{"bad market", func(c *Config) { c.Market = "BTCEUR" }, true},
		{"limit too high", func(c *Config) { c.TradeLimit = 5000 }, true},
		{"unknown retention", func(c *Config) { c.TradeRetention = "append" }, true},
		{"missing repo", func(c *Config) { c.GitHubRepo = "" }, true},
		{"unknown store", func(c *Config) { c.Store = "s3" }, true},
		{"negative ttl", func(c *Config) { c.SpotTTL = -time.Second }, true},
		{"no path", func(c *Config) { c.SnapshotPath = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCollector(t *testing.T) {
	cfg := validConfig()
	assert.Error(t, cfg.ValidateCollector(), "missing credentials")

	cfg.BitvavoAPIKey, cfg.BitvavoAPISecret = "key", "secret"
	assert.Error(t, cfg.ValidateCollector(), "missing github token")

	cfg.GitHubToken = "token"
	assert.NoError(t, cfg.ValidateCollector())
}

func TestExclusions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusions.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1747994400000]`), 0644))

	cfg := validConfig()
	cfg.ExcludedTrades = "1747908000000"
	cfg.ExclusionsFile = path

	set, err := cfg.Exclusions()
	require.NoError(t, err)
	assert.Equal(t, []btcfolio.Timestamp{1747908000000, 1747994400000}, set.Timestamps())

	cfg.ExcludedTrades = "yesterday"
	_, err = cfg.Exclusions()
	assert.Error(t, err)
}

func TestPriceFixtures(t *testing.T) {
	cfg := validConfig()
	h, err := cfg.PriceFixtures()
	require.NoError(t, err)
	assert.Nil(t, h)

	cfg.PriceFixturesFile = filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(cfg.PriceFixturesFile, []byte(`{"2025-05-22": 97709}`), 0644))
	h, err = cfg.PriceFixtures()
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())
}
