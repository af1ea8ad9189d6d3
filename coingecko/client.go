// Package coingecko reads reference prices from the public CoinGecko API.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/btcfolio"
	"github.com/etnz/btcfolio/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultURL is the public API.
const DefaultURL = "https://api.coingecko.com/api/v3"

// coinIDs maps exchange tickers to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
	"ADA": "cardano",
}

// Client is a PriceOracle backed by CoinGecko.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient returns a client of the API at baseURL, DefaultURL when empty.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "coingecko").Logger(),
	}
}

func coinID(asset string) (string, error) {
	id, ok := coinIDs[strings.ToUpper(asset)]
	if !ok {
		return "", fmt.Errorf("no coingecko id for asset %q", asset)
	}
	return id, nil
}

// lookup fetches addr and extracts a number at path.
func (c *Client) lookup(ctx context.Context, addr, path string) (decimal.Decimal, error) {
	var jobj any
	if err := btcfolio.GetJSON(ctx, c.httpClient, addr, nil, &jobj); err != nil {
		return decimal.Zero, err
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot find %q in response: %w", path, err)
	}
	// jsonpath may return a list of a single match
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Zero, fmt.Errorf("value at %q is not a number: %v", path, jval)
	}
	if val < 0 {
		return decimal.Zero, fmt.Errorf("negative price at %q: %v", path, val)
	}
	return decimal.NewFromFloat(val), nil
}

// SpotPrice returns the current price of market.Base in market.Quote.
func (c *Client) SpotPrice(ctx context.Context, market btcfolio.Market) (btcfolio.Money, error) {
	id, err := coinID(market.Base)
	if err != nil {
		return btcfolio.M(0, market.Quote), err
	}
	vs := strings.ToLower(market.Quote)

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", vs)
	addr := c.baseURL + "/simple/price?" + q.Encode()

	v, err := c.lookup(ctx, addr, fmt.Sprintf("$.%s.%s", id, vs))
	if err != nil {
		return btcfolio.M(0, market.Quote), fmt.Errorf("cannot get %s spot price: %w", market, err)
	}
	c.log.Debug().Str("market", market.String()).Str("price", v.String()).Msg("spot price")
	return btcfolio.M(v, market.Quote), nil
}

// HistoricalClose returns the closing price of a day.
//
// CoinGecko snapshots prices at 00:00 UTC, so the close of a day is read from
// the snapshot of the following day.
func (c *Client) HistoricalClose(ctx context.Context, market btcfolio.Market, on date.Date) (btcfolio.Money, error) {
	id, err := coinID(market.Base)
	if err != nil {
		return btcfolio.M(0, market.Quote), err
	}
	vs := strings.ToLower(market.Quote)

	q := url.Values{}
	q.Set("date", on.Add(1).Format("02-01-2006"))
	q.Set("localization", "false")
	addr := c.baseURL + "/coins/" + id + "/history?" + q.Encode()

	v, err := c.lookup(ctx, addr, "$.market_data.current_price."+vs)
	if err != nil {
		return btcfolio.M(0, market.Quote), fmt.Errorf("cannot get %s close on %v: %w", market, on, err)
	}
	return btcfolio.M(v, market.Quote), nil
}
