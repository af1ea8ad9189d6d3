package btcfolio

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/btcfolio/date"
	"github.com/shopspring/decimal"
)

// Snapshot is the persisted portfolio document.
//
// The document keys are fixed: the balance is always BTC and the prices are
// always EUR, whatever market the collector is configured with.
type Snapshot struct {
	Timestamp   time.Time    // time of the last collection
	Balance     Quantity     // base asset held, as reported by the exchange
	SpotPrice   Money        // latest quote
	Trades      []Trade      // in arrival order, not necessarily chronological
	DailyPrices date.History // closing price per calendar day
}

// DocumentCurrency is the currency of the prices stored in a Snapshot.
const DocumentCurrency = "EUR"

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{SpotPrice: M(0, DocumentCurrency)}
}

// Day returns the calendar day of the last collection, or today for a
// snapshot that was never collected.
func (s *Snapshot) Day() date.Date {
	if s.Timestamp.IsZero() {
		return date.Today()
	}
	return date.Of(s.Timestamp)
}

// SetDailyPrice upserts the closing price of a day. The last write wins.
func (s *Snapshot) SetDailyPrice(on date.Date, price Money) {
	s.DailyPrices.Append(on, price.value)
}

// DailyPrice returns the stored closing price of a day.
func (s *Snapshot) DailyPrice(on date.Date) (Money, bool) {
	v, ok := s.DailyPrices.Get(on)
	return Money{value: v, cur: DocumentCurrency}, ok
}

// SeedDailyPrices adds the prices of days that have no value yet and returns
// how many were added.
func (s *Snapshot) SeedDailyPrices(seeds *date.History) int {
	if seeds == nil {
		return 0
	}
	n := 0
	for on, v := range seeds.Values() {
		if s.DailyPrices.Seed(on, v) {
			n++
		}
	}
	return n
}

// Retention tells how a freshly fetched trade window is combined with the stored trades.
type Retention string

const (
	RetainMerge   Retention = "merge"   // merge by trade identity, keeping older trades
	RetainReplace Retention = "replace" // the stored list becomes the fetched window
)

// ParseRetention parses a retention policy name.
func ParseRetention(s string) (Retention, error) {
	switch r := Retention(strings.ToLower(strings.TrimSpace(s))); r {
	case RetainMerge, RetainReplace:
		return r, nil
	case "":
		return RetainMerge, nil
	default:
		return "", fmt.Errorf("unknown trade retention %q, want %q or %q", s, RetainMerge, RetainReplace)
	}
}

// UpdateTrades applies a fetched trade window according to the retention policy.
func (s *Snapshot) UpdateTrades(fetched []Trade, r Retention) {
	if r == RetainReplace {
		s.Trades = append([]Trade(nil), fetched...)
		return
	}
	s.Trades = MergeTrades(s.Trades, fetched)
}

// MarshalJSON encodes the document keys in a stable order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	trades := s.Trades
	if trades == nil {
		trades = []Trade{}
	}
	prices := make(map[string]json.Number, s.DailyPrices.Len())
	for on, v := range s.DailyPrices.Values() {
		prices[on.String()] = number(v)
	}

	var w jsonObjectWriter
	w.Append("timestamp", s.Timestamp.UTC().Format(time.RFC3339Nano))
	w.Append("btc_balance", number(s.Balance.value))
	w.Append("btc_price_eur", number(s.SpotPrice.value))
	w.Append("trades", trades)
	w.Append("daily_prices", prices) // encoding/json sorts map keys
	return w.MarshalJSON()
}

type jsonSnapshot struct {
	Timestamp   string                     `json:"timestamp"`
	Balance     decimal.Decimal            `json:"btc_balance"`
	SpotPrice   decimal.Decimal            `json:"btc_price_eur"`
	Trades      []Trade                    `json:"trades"`
	DailyPrices map[string]decimal.Decimal `json:"daily_prices"`
}

// timestampLayouts are tried in order; documents written by older collectors
// carry a naive ISO-8601 timestamp that is UTC.
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"}

func parseDocumentTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
}

// UnmarshalJSON decodes a persisted document.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var j jsonSnapshot
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	ts, err := parseDocumentTime(j.Timestamp)
	if err != nil {
		return err
	}
	var prices date.History
	for k, v := range j.DailyPrices {
		on, err := date.Parse(k)
		if err != nil {
			return fmt.Errorf("invalid daily_prices key: %w", err)
		}
		prices.Append(on, v)
	}
	*s = Snapshot{
		Timestamp:   ts,
		Balance:     Quantity{value: j.Balance},
		SpotPrice:   Money{value: j.SpotPrice, cur: DocumentCurrency},
		Trades:      j.Trades,
		DailyPrices: prices,
	}
	return nil
}

// EncodeSnapshot returns the indented JSON document.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cannot encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses a JSON document.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	s := NewSnapshot()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("cannot decode snapshot: %w", err)
	}
	return s, nil
}
