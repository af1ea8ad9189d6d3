// Package collector refreshes the persisted portfolio snapshot from the
// exchange and the price oracle.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds the collector settings.
type Config struct {
	Market     btcfolio.Market
	TradeLimit int
	Retention  btcfolio.Retention
	// Path of the document in the store.
	Path string
	// FetchDailyClose asks the oracle for yesterday's close on each run.
	FetchDailyClose bool
	// PriceFixtures seeds the days that have no closing price yet. Optional.
	PriceFixtures *date.History
}

// Collector merges fresh exchange data into the stored snapshot.
type Collector struct {
	cfg      Config
	exchange btcfolio.Exchange
	oracle   btcfolio.PriceOracle
	store    btcfolio.Store
	now      func() time.Time
	log      zerolog.Logger
}

// New creates a new collector.
func New(cfg Config, exchange btcfolio.Exchange, oracle btcfolio.PriceOracle, store btcfolio.Store, log zerolog.Logger) *Collector {
	if cfg.Market == (btcfolio.Market{}) {
		cfg.Market = btcfolio.Market{Base: "BTC", Quote: btcfolio.DocumentCurrency}
	}
	if cfg.Retention == "" {
		cfg.Retention = btcfolio.RetainMerge
	}
	return &Collector{
		cfg:      cfg,
		exchange: exchange,
		oracle:   oracle,
		store:    store,
		now:      time.Now,
		log:      log.With().Str("component", "collector").Logger(),
	}
}

// Spot price sources.
const (
	SourceOracle = "oracle"
	SourceTicker = "ticker"
)

// Report describes a collection run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	Trades     btcfolio.Result[[]btcfolio.Trade]
	Balance    btcfolio.Result[btcfolio.Quantity]
	Spot       btcfolio.Result[btcfolio.Money]
	SpotSource string // SourceOracle, SourceTicker, or "" when defaulted

	CloseDay   date.Date
	DailyClose *btcfolio.Result[btcfolio.Money] // nil when not requested

	LoadErr  error // why the run started from an empty snapshot
	Seeded   int   // daily prices added from fixtures
	Stored   int   // trades in the written snapshot
	Revision string
}

// Degraded reports whether any field was defaulted.
func (r *Report) Degraded() bool {
	return r.Trades.Defaulted() || r.Balance.Defaulted() || r.Spot.Defaulted() ||
		(r.DailyClose != nil && r.DailyClose.Defaulted())
}

// Run performs one collection. Fetch failures degrade to defaults and are
// recorded in the report; only a failure to write the snapshot is returned as
// an error.
func (c *Collector) Run(ctx context.Context) (*Report, error) {
	r := &Report{RunID: uuid.NewString(), Started: c.now()}
	log := c.log.With().Str("run_id", r.RunID).Logger()
	m := c.cfg.Market

	r.Trades = btcfolio.Try(nil, func() ([]btcfolio.Trade, error) {
		return c.exchange.ListRecentTrades(ctx, m, c.cfg.TradeLimit)
	})
	if r.Trades.Defaulted() {
		log.Warn().Err(r.Trades.Err).Msg("cannot fetch trades, keeping the stored ones")
	}

	r.Balance = btcfolio.Try(btcfolio.Q(0), func() (btcfolio.Quantity, error) {
		return c.exchange.Balance(ctx, m.Base)
	})
	if r.Balance.Defaulted() {
		log.Warn().Err(r.Balance.Err).Msg("cannot fetch balance, using 0")
	}

	r.Spot, r.SpotSource = c.spot(ctx, log)

	if c.cfg.FetchDailyClose {
		r.CloseDay = date.Of(r.Started).Add(-1)
		daily := btcfolio.Try(btcfolio.M(0, m.Quote), func() (btcfolio.Money, error) {
			return c.oracle.HistoricalClose(ctx, m, r.CloseDay)
		})
		if daily.Defaulted() {
			log.Warn().Err(daily.Err).Stringer("day", r.CloseDay).Msg("cannot fetch daily close")
		}
		r.DailyClose = &daily
	}

	s, revision := c.load(ctx, r, log)

	s.Timestamp = r.Started.UTC()
	s.Balance = r.Balance.Value
	s.SpotPrice = btcfolio.M(r.Spot.Value.Decimal(), btcfolio.DocumentCurrency)
	if r.Trades.OK() {
		s.UpdateTrades(r.Trades.Value, c.cfg.Retention)
	}
	if r.DailyClose != nil && r.DailyClose.OK() {
		s.SetDailyPrice(r.CloseDay, r.DailyClose.Value)
	}
	r.Seeded = s.SeedDailyPrices(c.cfg.PriceFixtures)
	r.Stored = len(s.Trades)

	content, err := btcfolio.EncodeSnapshot(s)
	if err != nil {
		return r, err
	}
	r.Revision, err = c.store.WriteFile(ctx, c.cfg.Path, content, revision)
	r.Duration = c.now().Sub(r.Started)
	if err != nil {
		log.Error().Err(err).Str("path", c.cfg.Path).Msg("cannot write snapshot")
		return r, fmt.Errorf("cannot write snapshot: %w", err)
	}

	log.Info().
		Int("fetched_trades", len(r.Trades.Value)).
		Int("stored_trades", r.Stored).
		Str("balance", r.Balance.Value.String()).
		Str("spot", r.Spot.Value.Decimal().String()).
		Str("spot_source", r.SpotSource).
		Int("seeded_prices", r.Seeded).
		Bool("degraded", r.Degraded()).
		Str("revision", r.Revision).
		Dur("duration", r.Duration).
		Msg("snapshot collected")
	return r, nil
}

// spot asks the oracle, then the exchange ticker when the exchange has one.
func (c *Collector) spot(ctx context.Context, log zerolog.Logger) (btcfolio.Result[btcfolio.Money], string) {
	m := c.cfg.Market
	spot := btcfolio.Try(btcfolio.M(0, m.Quote), func() (btcfolio.Money, error) {
		return c.oracle.SpotPrice(ctx, m)
	})
	if spot.OK() {
		return spot, SourceOracle
	}
	ticker, ok := c.exchange.(btcfolio.Ticker)
	if !ok {
		log.Warn().Err(spot.Err).Msg("cannot fetch spot price, using 0")
		return spot, ""
	}
	fallback := btcfolio.Try(btcfolio.M(0, m.Quote), func() (btcfolio.Money, error) {
		return ticker.TickerPrice(ctx, m)
	})
	if fallback.OK() {
		log.Warn().Err(spot.Err).Msg("cannot fetch spot price from the oracle, using the exchange ticker")
		return fallback, SourceTicker
	}
	log.Warn().Err(spot.Err).AnErr("ticker_error", fallback.Err).Msg("cannot fetch spot price, using 0")
	fallback.Err = errors.Join(spot.Err, fallback.Err)
	return fallback, ""
}

// load returns the stored snapshot and its revision, or an empty snapshot.
func (c *Collector) load(ctx context.Context, r *Report, log zerolog.Logger) (*btcfolio.Snapshot, string) {
	content, revision, err := c.store.ReadFile(ctx, c.cfg.Path)
	if err != nil {
		r.LoadErr = err
		if errors.Is(err, btcfolio.ErrNotFound) {
			log.Info().Str("path", c.cfg.Path).Msg("no snapshot yet, creating one")
		} else {
			log.Warn().Err(err).Str("path", c.cfg.Path).Msg("cannot read snapshot, starting from an empty one")
		}
		// an empty revision makes the write fail if the document does exist
		return btcfolio.NewSnapshot(), ""
	}
	s, err := btcfolio.DecodeSnapshot(content)
	if err != nil {
		r.LoadErr = err
		log.Warn().Err(err).Str("path", c.cfg.Path).Msg("stored snapshot is unreadable, replacing it")
		return btcfolio.NewSnapshot(), revision
	}
	return s, revision
}
