package btcfolio

import (
	"context"

	"github.com/etnz/btcfolio/date"
)

// Exchange is the account side of the exchange API.
type Exchange interface {
	// ListRecentTrades returns the most recent fills of a market, at most limit.
	ListRecentTrades(ctx context.Context, market Market, limit int) ([]Trade, error)
	// Balance returns the available amount of an asset.
	Balance(ctx context.Context, asset string) (Quantity, error)
}

// Ticker is implemented by exchanges that publish a last traded price.
type Ticker interface {
	TickerPrice(ctx context.Context, market Market) (Money, error)
}

// PriceOracle is an independent reference price source.
type PriceOracle interface {
	// SpotPrice returns the current price of market.Base in market.Quote.
	SpotPrice(ctx context.Context, market Market) (Money, error)
	// HistoricalClose returns the price of market.Base in market.Quote at the end of a day.
	HistoricalClose(ctx context.Context, market Market, on date.Date) (Money, error)
}
