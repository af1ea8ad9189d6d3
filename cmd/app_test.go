package cmd

import (
	"testing"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/config"
	"github.com/etnz/btcfolio/github"
	"github.com/etnz/btcfolio/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORE", config.StoreFile)
	t.Setenv("STORE_DIR", t.TempDir())
	t.Setenv("BITVAVO_API_KEY", "key")
	t.Setenv("BITVAVO_API_SECRET", "secret")
	cfg := config.FromEnv()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestOpenStore(t *testing.T) {
	cfg := testConfig(t)
	store, err := openStore(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &btcfolio.FileStore{}, store)

	cfg.Store = config.StoreGitHub
	cfg.GitHubRepo = "etnz/portfolio-data"
	cfg.GitHubToken = "token"
	store, err = openStore(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &github.Store{}, store)

	reader, err := openReader(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &github.RawReader{}, reader)
}

func TestNewCollector(t *testing.T) {
	cfg := testConfig(t)
	_, err := newCollector(cfg, logger.Nop())
	require.NoError(t, err)

	cfg.BitvavoAPISecret = ""
	_, err = newCollector(cfg, logger.Nop())
	assert.ErrorContains(t, err, "BITVAVO_API_SECRET")
}

func TestNewPresenter(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExcludedTrades = "not-a-timestamp"
	_, err := newPresenter(cfg, logger.Nop(), true)
	assert.ErrorContains(t, err, "EXCLUDED_TRADES")

	cfg.ExcludedTrades = "1747735200000"
	p, err := newPresenter(cfg, logger.Nop(), true)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "unavailable", sourceName(""))
	assert.Equal(t, "oracle", sourceName("oracle"))
}
