package btcfolio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool { return s == Buy || s == Sell }

// Timestamp is an instant as epoch milliseconds, the exchange's resolution.
type Timestamp int64

// TimestampOf converts t to epoch milliseconds.
func TimestampOf(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

// Time returns the UTC instant.
func (t Timestamp) Time() time.Time { return time.UnixMilli(int64(t)).UTC() }

func (t Timestamp) String() string { return strconv.FormatInt(int64(t), 10) }

// ParseTimestamp parses epoch milliseconds.
func ParseTimestamp(s string) (Timestamp, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q, want epoch milliseconds: %w", s, err)
	}
	return Timestamp(v), nil
}

// Market is an asset pair like BTC-EUR.
type Market struct {
	Base  string // traded asset
	Quote string // currency prices and fees are expressed in
}

// ParseMarket parses a "BASE-QUOTE" pair.
func ParseMarket(s string) (Market, error) {
	base, quote, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), "-")
	if !ok || base == "" || quote == "" {
		return Market{}, fmt.Errorf("invalid market %q want format BASE-QUOTE", s)
	}
	return Market{Base: base, Quote: quote}, nil
}

func (m Market) String() string { return m.Base + "-" + m.Quote }

// Trade is a fill as reported by the exchange.
//
// Numeric fields keep the exchange's decimal strings so that a stored trade
// encodes back to what was received.
type Trade struct {
	ID          string           `json:"id,omitempty"`
	OrderID     string           `json:"orderId,omitempty"`
	Timestamp   Timestamp        `json:"timestamp"`
	Market      string           `json:"market,omitempty"`
	Side        Side             `json:"side"`
	Amount      decimal.Decimal  `json:"amount"`
	Price       decimal.Decimal  `json:"price"`
	AmountQuote *decimal.Decimal `json:"amountQuote,omitempty"`
	Taker       bool             `json:"taker"`
	Fee         decimal.Decimal  `json:"fee"`
	FeeCurrency string           `json:"feeCurrency,omitempty"`
	Settled     bool             `json:"settled"`
}

// Key identifies a trade: the exchange id, or the fill itself when the id is missing.
func (t Trade) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return fmt.Sprintf("%d|%s|%s|%s", t.Timestamp, t.Side, t.Amount, t.Price)
}

// Quantity returns the traded amount of base asset.
func (t Trade) Quantity() Quantity { return Quantity{value: t.Amount} }

// Value returns amount × price in the market's quote currency.
func (t Trade) Value(m Market) Money {
	return Money{value: t.Amount.Mul(t.Price), cur: m.Quote}
}

// FeeValue returns the fee in the market's quote currency.
// A fee charged in the base asset is converted at the trade price.
func (t Trade) FeeValue(m Market) Money {
	fee := t.Fee
	if t.FeeCurrency != "" && strings.EqualFold(t.FeeCurrency, m.Base) {
		fee = fee.Mul(t.Price)
	}
	return Money{value: fee, cur: m.Quote}
}

// Equal reports whether two trades carry the same values.
func (t Trade) Equal(o Trade) bool {
	if (t.AmountQuote == nil) != (o.AmountQuote == nil) {
		return false
	}
	if t.AmountQuote != nil && !t.AmountQuote.Equal(*o.AmountQuote) {
		return false
	}
	return t.ID == o.ID && t.OrderID == o.OrderID && t.Timestamp == o.Timestamp &&
		t.Market == o.Market && t.Side == o.Side && t.Amount.Equal(o.Amount) &&
		t.Price.Equal(o.Price) && t.Taker == o.Taker && t.Fee.Equal(o.Fee) &&
		t.FeeCurrency == o.FeeCurrency && t.Settled == o.Settled
}

// MergeTrades merges a freshly fetched window into a stored trade list.
//
// Fetched trades come first in their fetched order, then the stored trades
// that are not part of the window. A fetched trade replaces a stored one with
// the same Key.
func MergeTrades(stored, fetched []Trade) []Trade {
	seen := make(map[string]struct{}, len(fetched))
	merged := make([]Trade, 0, len(stored)+len(fetched))
	for _, t := range fetched {
		if _, dup := seen[t.Key()]; dup {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
	}
	for _, t := range stored {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
	}
	return merged
}
