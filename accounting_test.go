package btcfolio

import (
	"testing"
	"time"

	"github.com/etnz/btcfolio/date"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestReconcile_SingleBuy(t *testing.T) {
	s := NewSnapshot()
	s.Trades = []Trade{buy(at(2025, 5, 22, 10), "0.1", "90000", "5")}

	r := Reconcile(s, EUR(0), ReconcileOptions{Market: btceur})

	if want := EUR(9005); !r.GrossInvested.Equal(want) {
		t.Errorf("GrossInvested = %v, want %v", r.GrossInvested, want)
	}
	if want := EUR(9005); !r.NetInvested.Equal(want) {
		t.Errorf("NetInvested = %v, want %v", r.NetInvested, want)
	}
	if !r.RealizedProceeds.IsZero() {
		t.Errorf("RealizedProceeds = %v, want 0", r.RealizedProceeds)
	}
	if want := EUR(90050); !r.DCA.Equal(want) {
		t.Errorf("DCA = %v, want %v", r.DCA, want)
	}
}

func TestReconcile_HoldingsValue(t *testing.T) {
	s := NewSnapshot()
	s.Balance = Q(0.5)

	r := Reconcile(s, EUR(50000), ReconcileOptions{Market: btceur})

	if want := EUR(25000); !r.HoldingsValue.Equal(want) {
		t.Errorf("HoldingsValue = %v, want %v", r.HoldingsValue, want)
	}
	// nothing invested: the performance is defined as 0.
	if r.Performance != 0 {
		t.Errorf("Performance = %v, want 0", r.Performance)
	}
	if !r.DCA.IsZero() {
		t.Errorf("DCA = %v, want 0", r.DCA)
	}
}

func TestReconcile_BuysAndSells(t *testing.T) {
	s := NewSnapshot()
	s.Balance = Q(0.15)
	s.Trades = []Trade{
		sell(at(2025, 6, 1, 9), "0.05", "100000", "10"),
		buy(at(2025, 5, 22, 10), "0.1", "90000", "5"),
		buy(at(2025, 5, 23, 10), "0.1", "80000", "5"),
	}

	r := Reconcile(s, EUR(100000), ReconcileOptions{Market: btceur})

	tests := []struct {
		name      string
		got, want Money
	}{
		{"GrossInvested", r.GrossInvested, EUR(17010)},
		{"RealizedProceeds", r.RealizedProceeds, EUR(4990)},
		{"NetInvested", r.NetInvested, EUR(12020)},
		{"DCA", r.DCA, EUR(85050)},
		{"HoldingsValue", r.HoldingsValue, EUR(15000)},
		{"UnrealizedPnL", r.UnrealizedPnL, EUR(2980)},
	}
	for _, tt := range tests {
		if !tt.got.Equal(tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got.Decimal(), tt.want.Decimal())
		}
	}
	if !r.TotalBought.Equal(Q(0.2)) || !r.TotalSold.Equal(Q(0.05)) {
		t.Errorf("TotalBought, TotalSold = %v, %v want 0.2, 0.05", r.TotalBought, r.TotalSold)
	}
	// 2980 / 12020 * 100
	if want := Percent(24.7920133111); !r.Performance.Equal(want) {
		t.Errorf("Performance = %v, want %v", r.Performance, want)
	}
	if len(r.Transactions) != 3 || r.Transactions[0].Side != Sell {
		t.Errorf("Transactions are not most recent first: %v", r.Transactions)
	}
}

func TestReconcile_InvestedSeries(t *testing.T) {
	s := NewSnapshot()
	// arrival order is not chronological.
	s.Trades = []Trade{
		buy(at(2025, 5, 23, 10), "0.000204", "95471", "0.5"),
		buy(at(2025, 5, 22, 10), "0.000204", "97709", "0.5"),
	}

	r := Reconcile(s, EUR(100000), ReconcileOptions{Market: btceur})

	if len(r.Invested) != 2 {
		t.Fatalf("len(Invested) = %d, want 2", len(r.Invested))
	}
	if got, want := r.Invested[0].Time, at(2025, 5, 22, 10).Time(); !got.Equal(want) {
		t.Errorf("Invested[0].Time = %v, want %v", got, want)
	}
	// 0.000204*97709 + 0.5 = 20.432636
	if want := dec("20.432636"); !r.Invested[0].Value.Decimal().Equal(want) {
		t.Errorf("Invested[0] = %v, want %v", r.Invested[0].Value.Decimal(), want)
	}
	// + 0.000204*95471 + 0.5 = 40.40872
	if want := dec("40.40872"); !r.Invested[1].Value.Decimal().Equal(want) {
		t.Errorf("Invested[1] = %v, want %v", r.Invested[1].Value.Decimal(), want)
	}
	if !r.Invested[1].Value.Equal(r.GrossInvested) {
		t.Errorf("last invested point %v != GrossInvested %v", r.Invested[1].Value, r.GrossInvested)
	}
}

func TestReconcile_ValueSeries(t *testing.T) {
	s := NewSnapshot()
	s.Timestamp = time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC)
	s.Trades = []Trade{
		buy(at(2025, 5, 22, 10), "0.1", "90000", "0"),
		buy(at(2025, 5, 23, 10), "0.1", "90000", "0"),
	}
	s.SetDailyPrice(date.New(2025, 5, 22), EUR(97709))
	s.SetDailyPrice(date.New(2025, 5, 23), EUR(95471))

	r := Reconcile(s, EUR(100000), ReconcileOptions{Market: btceur})

	want := []string{"9770.9", "19094.2", "20000"} // the 24th falls back to spot
	if len(r.Value) != len(want) {
		t.Fatalf("len(Value) = %d, want %d", len(r.Value), len(want))
	}
	for i, w := range want {
		if !r.Value[i].Value.Decimal().Equal(dec(w)) {
			t.Errorf("Value[%d] = %v, want %v", i, r.Value[i].Value.Decimal(), w)
		}
	}
}

func TestReconcile_Exclusions(t *testing.T) {
	sentinel := at(2025, 5, 1, 0)
	s := NewSnapshot()
	s.Trades = []Trade{
		buy(sentinel, "1", "1", "0"),
		buy(at(2025, 5, 22, 10), "0.1", "90000", "5"),
	}

	r := Reconcile(s, EUR(0), ReconcileOptions{Market: btceur, Exclusions: NewExclusionSet(sentinel)})

	if r.Excluded != 1 {
		t.Errorf("Excluded = %d, want 1", r.Excluded)
	}
	if want := EUR(9005); !r.GrossInvested.Equal(want) {
		t.Errorf("GrossInvested = %v, want %v", r.GrossInvested, want)
	}
}

func TestReconcile_IgnoresInconsistentRows(t *testing.T) {
	s := NewSnapshot()
	s.Trades = []Trade{
		buy(at(2025, 5, 22, 10), "0.1", "90000", "5"),
		{Timestamp: at(2025, 5, 22, 11), Side: "deposit", Amount: dec("1"), Price: dec("1")},
		buy(at(2025, 5, 22, 12), "-0.1", "90000", "5"),
	}

	r := Reconcile(s, EUR(0), ReconcileOptions{Market: btceur})

	if r.Ignored != 2 {
		t.Errorf("Ignored = %d, want 2", r.Ignored)
	}
	if len(r.Buys) != 1 {
		t.Errorf("len(Buys) = %d, want 1", len(r.Buys))
	}
}

func TestReconcile_ZeroAmountFee(t *testing.T) {
	s := NewSnapshot()
	s.Trades = []Trade{
		buy(at(2025, 5, 22, 10), "0.1", "90000", "5"),
		buy(at(2025, 5, 22, 11), "0", "90000", "3"),
	}

	r := Reconcile(s, EUR(0), ReconcileOptions{Market: btceur})

	if r.Ignored != 0 {
		t.Errorf("Ignored = %d, want 0", r.Ignored)
	}
	if want := EUR(9008); !r.GrossInvested.Equal(want) {
		t.Errorf("GrossInvested = %v, want %v", r.GrossInvested.Decimal(), want.Decimal())
	}
	if want := Q(0.1); !r.TotalBought.Equal(want) {
		t.Errorf("TotalBought = %v, want %v", r.TotalBought, want)
	}
	if want := EUR(90080); !r.DCA.Equal(want) {
		t.Errorf("DCA = %v, want %v", r.DCA.Decimal(), want.Decimal())
	}
}

func TestReconcile_FeeInBaseAsset(t *testing.T) {
	s := NewSnapshot()
	tr := buy(at(2025, 5, 22, 10), "0.1", "90000", "0.0001")
	tr.FeeCurrency = "BTC"
	s.Trades = []Trade{tr}

	r := Reconcile(s, EUR(0), ReconcileOptions{Market: btceur})

	if want := EUR(9009); !r.GrossInvested.Equal(want) {
		t.Errorf("GrossInvested = %v, want %v", r.GrossInvested.Decimal(), want.Decimal())
	}
}

// genTrades generates trade lists from (amount in satoshis, price in euros, fee in cents) triples.
func genTrades(side Side) gopter.Gen {
	return gen.SliceOf(gen.IntRange(1, 100_000_000)).Map(func(sats []int) []Trade {
		trades := make([]Trade, 0, len(sats))
		for i, s := range sats {
			trades = append(trades, Trade{
				Timestamp: Timestamp(1_700_000_000_000 + int64(i)*60_000),
				Side:      side,
				Amount:    decimal.New(int64(s), -8),
				Price:     decimal.NewFromInt(int64(20_000 + s%100_000)),
				Fee:       decimal.New(int64(s%1000), -2),
			})
		}
		return trades
	})
}

func TestReconcile_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only buys: net invested equals gross invested", prop.ForAll(
		func(buys []Trade) bool {
			s := NewSnapshot()
			s.Trades = buys
			r := Reconcile(s, EUR(1), ReconcileOptions{Market: btceur})
			return r.NetInvested.Equal(r.GrossInvested) && r.RealizedProceeds.IsZero()
		},
		genTrades(Buy),
	))

	properties.Property("dca is gross invested over total bought, or zero", prop.ForAll(
		func(buys, sells []Trade) bool {
			s := NewSnapshot()
			s.Trades = append(buys, sells...)
			r := Reconcile(s, EUR(1), ReconcileOptions{Market: btceur})
			if r.TotalBought.IsZero() {
				return r.DCA.IsZero()
			}
			return r.DCA.Decimal().Equal(r.GrossInvested.Decimal().Div(r.TotalBought.Decimal()))
		},
		genTrades(Buy),
		genTrades(Sell),
	))

	properties.Property("invested series ends at gross invested", prop.ForAll(
		func(buys []Trade) bool {
			s := NewSnapshot()
			s.Trades = buys
			r := Reconcile(s, EUR(1), ReconcileOptions{Market: btceur})
			if len(r.Invested) == 0 {
				return r.GrossInvested.IsZero()
			}
			return r.Invested[len(r.Invested)-1].Value.Equal(r.GrossInvested)
		},
		genTrades(Buy),
	))

	properties.TestingRun(t)
}
