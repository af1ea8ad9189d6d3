package btcfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

var btceur = Market{Base: "BTC", Quote: "EUR"}

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// dec is a helper for test to create exact decimals from literals.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// at returns the epoch milliseconds of a UTC wall clock time.
func at(year int, month time.Month, day, hour int) Timestamp {
	return TimestampOf(time.Date(year, month, day, hour, 0, 0, 0, time.UTC))
}

// buy is a helper for test to create a buy trade.
func buy(ts Timestamp, amount, price, fee string) Trade {
	return Trade{Timestamp: ts, Market: "BTC-EUR", Side: Buy, Amount: dec(amount), Price: dec(price), Fee: dec(fee), FeeCurrency: "EUR"}
}

// sell is a helper for test to create a sell trade.
func sell(ts Timestamp, amount, price, fee string) Trade {
	return Trade{Timestamp: ts, Market: "BTC-EUR", Side: Sell, Amount: dec(amount), Price: dec(price), Fee: dec(fee), FeeCurrency: "EUR"}
}
