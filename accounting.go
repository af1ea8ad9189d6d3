package btcfolio

import (
	"cmp"
	"slices"
	"time"

	"github.com/etnz/btcfolio/date"
	"github.com/shopspring/decimal"
)

// Point is one sample of a time series.
type Point struct {
	Time  time.Time `json:"time"`
	Value Money     `json:"value"`
}

// ReconcileOptions tunes Reconcile.
type ReconcileOptions struct {
	// Market of the trades. Its Quote must be the snapshot currency; the zero
	// value means BTC-EUR.
	Market Market
	// Exclusions lists the trades to ignore.
	Exclusions ExclusionSet
	// On is the last day of the value series, the snapshot day by default.
	On date.Date
}

// Report holds the figures reconciled from a snapshot and a spot price.
type Report struct {
	On      date.Date
	Spot    Money
	Balance Quantity

	Buys         []Trade // chronological
	Sells        []Trade // chronological
	Transactions []Trade // every kept trade, most recent first
	Excluded     int     // trades removed by the exclusion set
	Ignored      int     // trades with an unknown side or a negative amount or price

	GrossInvested    Money // Σ buy value + Σ buy fee
	RealizedProceeds Money // Σ sell value − Σ sell fee
	NetInvested      Money // GrossInvested − RealizedProceeds
	TotalBought      Quantity
	TotalSold        Quantity
	DCA              Money // GrossInvested ÷ TotalBought
	HoldingsValue    Money // Balance × Spot
	UnrealizedPnL    Money // HoldingsValue − NetInvested
	Performance      Percent

	Invested []Point // cumulative invested capital, one point per buy
	Value    []Point // daily value of the holdings implied by the trades
}

// chronologically sorts trades by time, keeping the arrival order of ties.
func chronologically(trades []Trade) []Trade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
	return sorted
}

// Partition splits trades into buys and sells, dropping the ones that cannot
// be accounted for. A trade with a zero amount is kept so that its fee counts.
// The input order is kept.
func Partition(trades []Trade) (buys, sells []Trade, ignored int) {
	for _, t := range trades {
		switch {
		case !t.Side.Valid(), t.Amount.IsNegative(), t.Price.IsNegative():
			ignored++
		case t.Side == Buy:
			buys = append(buys, t)
		default:
			sells = append(sells, t)
		}
	}
	return buys, sells, ignored
}

// Reconcile computes the portfolio figures of a snapshot valued at spot.
func Reconcile(s *Snapshot, spot Money, opts ReconcileOptions) *Report {
	m := opts.Market
	if m == (Market{}) {
		m = Market{Base: "BTC", Quote: DocumentCurrency}
	}
	on := opts.On
	if on.IsZero() {
		on = s.Day()
	}
	zero := M(0, m.Quote)
	if spot.Currency() == "" {
		spot = M(spot.value, m.Quote)
	}

	kept, excluded := opts.Exclusions.Filter(s.Trades)
	buys, sells, ignored := Partition(chronologically(kept))

	r := &Report{
		On:               on,
		Spot:             spot,
		Balance:          s.Balance,
		Buys:             buys,
		Sells:            sells,
		Excluded:         excluded,
		Ignored:          ignored,
		GrossInvested:    zero,
		RealizedProceeds: zero,
	}

	invested := zero
	for _, t := range buys {
		invested = invested.Add(t.Value(m)).Add(t.FeeValue(m))
		r.TotalBought = r.TotalBought.Add(t.Quantity())
		r.Invested = append(r.Invested, Point{Time: t.Timestamp.Time(), Value: invested})
	}
	r.GrossInvested = invested

	for _, t := range sells {
		r.RealizedProceeds = r.RealizedProceeds.Add(t.Value(m)).Sub(t.FeeValue(m))
		r.TotalSold = r.TotalSold.Add(t.Quantity())
	}

	r.NetInvested = r.GrossInvested.Sub(r.RealizedProceeds)
	r.DCA = r.GrossInvested.Div(r.TotalBought)
	r.HoldingsValue = spot.Mul(s.Balance)
	r.UnrealizedPnL = r.HoldingsValue.Sub(r.NetInvested)
	r.Performance = Percent(r.UnrealizedPnL.Ratio(r.NetInvested).Mul(decimal.NewFromInt(100)).InexactFloat64())

	all := append(slices.Clone(buys), sells...)
	r.Value = valueSeries(s, chronologically(all), spot, on)

	r.Transactions = chronologically(all)
	slices.Reverse(r.Transactions)
	return r
}

// valueSeries values, for every day from the first trade to on, the holdings
// implied by the trades at the stored closing price of that day, or at spot
// when there is none.
func valueSeries(s *Snapshot, trades []Trade, spot Money, on date.Date) []Point {
	if len(trades) == 0 {
		return nil
	}
	first := date.Of(trades[0].Timestamp.Time())
	if on.Before(first) {
		on = first
	}

	series := make([]Point, 0, date.NewRange(first, on).Len())
	var held Quantity
	next := 0
	for day := range date.NewRange(first, on).Days() {
		for next < len(trades) && !date.Of(trades[next].Timestamp.Time()).After(day) {
			if trades[next].Side == Buy {
				held = held.Add(trades[next].Quantity())
			} else {
				held = held.Sub(trades[next].Quantity())
			}
			next++
		}
		price, ok := s.DailyPrice(day)
		if !ok {
			price = spot
		}
		series = append(series, Point{Time: day.Time(), Value: M(price.value, spot.cur).Mul(held)})
	}
	return series
}
