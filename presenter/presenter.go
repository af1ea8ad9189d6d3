// Package presenter turns the persisted snapshot into the figures displayed
// by the dashboard.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/cache"
	"github.com/rs/zerolog"
)

// Config holds the presenter settings.
type Config struct {
	Market      btcfolio.Market
	Path        string
	SnapshotTTL time.Duration
	SpotTTL     time.Duration
	Exclusions  btcfolio.ExclusionSet
}

// Presenter loads the snapshot and values it at the current spot price.
type Presenter struct {
	cfg    Config
	reader btcfolio.Reader
	oracle btcfolio.PriceOracle
	cache  *cache.Cache
	now    func() time.Time
	log    zerolog.Logger
}

// New creates a presenter. oracle may be nil, the stored spot price is then used.
func New(cfg Config, reader btcfolio.Reader, oracle btcfolio.PriceOracle, c *cache.Cache, log zerolog.Logger) *Presenter {
	if cfg.Market == (btcfolio.Market{}) {
		cfg.Market = btcfolio.Market{Base: "BTC", Quote: btcfolio.DocumentCurrency}
	}
	if c == nil {
		c = cache.New(10 * time.Minute)
	}
	log = log.With().Str("component", "presenter").Logger()
	if len(cfg.Exclusions) > 0 {
		log.Info().Interface("timestamps", cfg.Exclusions.Timestamps()).Msg("Excluding trades")
	}
	return &Presenter{
		cfg:    cfg,
		reader: reader,
		oracle: oracle,
		cache:  c,
		now:    time.Now,
		log:    log,
	}
}

// Spot price sources.
const (
	SourceOracle   = "oracle"
	SourceSnapshot = "snapshot"
)

// View is everything a dashboard displays.
type View struct {
	Generated  time.Time
	Collected  time.Time // zero when no snapshot could be loaded
	Market     btcfolio.Market
	Snapshot   *btcfolio.Snapshot
	Report     *btcfolio.Report
	SpotSource string
	Warnings   []string
}

// Empty reports whether there is nothing to show.
func (v *View) Empty() bool { return len(v.Report.Transactions) == 0 && v.Report.Balance.IsZero() }

func (v *View) warn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

const (
	snapshotKey = "snapshot"
	spotKey     = "spot"
)

// View computes the current view. It never fails: problems become warnings
// and missing data is shown as an empty portfolio.
func (p *Presenter) View(ctx context.Context) *View {
	v := &View{Generated: p.now(), Market: p.cfg.Market}

	s, err := cache.Fetch(p.cache, snapshotKey, p.cfg.SnapshotTTL, func() (*btcfolio.Snapshot, error) {
		return p.loadSnapshot(ctx)
	})
	switch {
	case errors.Is(err, btcfolio.ErrNotFound):
		v.warn("No snapshot has been collected yet.")
		s = btcfolio.NewSnapshot()
	case err != nil:
		p.log.Warn().Err(err).Msg("cannot load snapshot")
		v.warn("Cannot load the snapshot: %v", err)
		s = btcfolio.NewSnapshot()
	default:
		v.Collected = s.Timestamp
	}
	v.Snapshot = s

	spot, err := p.spot(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("cannot fetch spot price")
		spot = s.SpotPrice
		v.SpotSource = SourceSnapshot
		if spot.IsZero() {
			v.warn("No spot price available: %v", err)
		} else {
			v.warn("Live price unavailable, using the price collected on %s.", s.Timestamp.Format(time.DateTime))
		}
	} else {
		v.SpotSource = SourceOracle
	}

	v.Report = btcfolio.Reconcile(s, spot, btcfolio.ReconcileOptions{
		Market:     p.cfg.Market,
		Exclusions: p.cfg.Exclusions,
	})
	if v.Report.Ignored > 0 {
		v.warn("%d trades were ignored: unknown side or negative amount.", v.Report.Ignored)
	}
	if v.Report.TotalSold.GreaterThan(v.Report.TotalBought) {
		v.warn("More %s sold than bought: the trade history is incomplete.", p.cfg.Market.Base)
	}
	return v
}

func (p *Presenter) loadSnapshot(ctx context.Context) (*btcfolio.Snapshot, error) {
	content, _, err := p.reader.ReadFile(ctx, p.cfg.Path)
	if err != nil {
		return nil, err
	}
	return btcfolio.DecodeSnapshot(content)
}

func (p *Presenter) spot(ctx context.Context) (btcfolio.Money, error) {
	if p.oracle == nil {
		return btcfolio.Money{}, errors.New("no price oracle configured")
	}
	return cache.Fetch(p.cache, spotKey, p.cfg.SpotTTL, func() (btcfolio.Money, error) {
		return p.oracle.SpotPrice(ctx, p.cfg.Market)
	})
}

// Refresh drops the cached snapshot and spot price.
func (p *Presenter) Refresh() {
	p.cache.Invalidate(snapshotKey)
	p.cache.Invalidate(spotKey)
}
