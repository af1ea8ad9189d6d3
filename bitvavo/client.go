// Package bitvavo is a client of the Bitvavo REST API, restricted to the
// account endpoints a portfolio collector needs.
package bitvavo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultURL is the production API.
const DefaultURL = "https://api.bitvavo.com/v2"

// Config holds the client settings.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string // DefaultURL when empty
	Window    int    // access window in milliseconds, 10000 when zero
	// RequestsPerSecond paces the requests, 10 when zero.
	RequestsPerSecond float64
}

// Client represents a Bitvavo API client.
type Client struct {
	key, secret string
	baseURL     string
	window      int
	httpClient  *http.Client
	limiter     *rate.Limiter
	now         func() time.Time
	log         zerolog.Logger
}

// NewClient creates a new Bitvavo client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Window <= 0 {
		cfg.Window = 10000
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	return &Client{
		key:        cfg.APIKey,
		secret:     cfg.APISecret,
		baseURL:    cfg.BaseURL,
		window:     cfg.Window,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		now:        time.Now,
		log:        log.With().Str("component", "bitvavo").Logger(),
	}
}

// APIError is the error document returned by the exchange.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"errorCode"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitvavo error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// ErrCredentials is returned when an authenticated endpoint is called without a key pair.
var ErrCredentials = errors.New("bitvavo api key and secret are required")

// sign returns the hex HMAC-SHA256 of the request, as expected in the
// Bitvavo-Access-Signature header. path includes the /v2 prefix and the query.
func sign(secret, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + body))
	return hex.EncodeToString(mac.Sum(nil))
}

// get performs a GET request on endpoint and decodes the response in data.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, auth bool, data any) error {
	if auth && (c.key == "" || c.secret == "") {
		return ErrCredentials
	}
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("invalid bitvavo url: %w", err)
	}
	u.RawQuery = query.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		ts := strconv.FormatInt(c.now().UnixMilli(), 10)
		req.Header.Set("Bitvavo-Access-Key", c.key)
		req.Header.Set("Bitvavo-Access-Signature", sign(c.secret, ts, http.MethodGet, u.RequestURI(), ""))
		req.Header.Set("Bitvavo-Access-Timestamp", ts)
		req.Header.Set("Bitvavo-Access-Window", strconv.Itoa(c.window))
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bitvavo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status_code", resp.StatusCode).
		Dur("duration", c.now().Sub(start)).
		Msg("bitvavo request")

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Int("error_code", apiErr.Code).
			Str("endpoint", endpoint).
			Msg(apiErr.Message)
		return apiErr
	}
	if err := json.Unmarshal(body, data); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}

// ListRecentTrades returns the most recent trades of the account on a market,
// newest first, at most limit (the exchange caps it at 1000).
func (c *Client) ListRecentTrades(ctx context.Context, market btcfolio.Market, limit int) ([]btcfolio.Trade, error) {
	q := url.Values{}
	q.Set("market", market.String())
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var trades []btcfolio.Trade
	if err := c.get(ctx, "/trades", q, true, &trades); err != nil {
		return nil, fmt.Errorf("cannot list %s trades: %w", market, err)
	}
	for i, t := range trades {
		if !t.Side.Valid() {
			return nil, fmt.Errorf("trade %s has an invalid side %q", t.Key(), t.Side)
		}
		if trades[i].Market == "" {
			trades[i].Market = market.String()
		}
	}
	return trades, nil
}

type balance struct {
	Symbol    string `json:"symbol"`
	Available string `json:"available"`
	InOrder   string `json:"inOrder"`
}

// Balance returns the available amount of asset. Amounts locked in open
// orders are not included.
func (c *Client) Balance(ctx context.Context, asset string) (btcfolio.Quantity, error) {
	q := url.Values{}
	q.Set("symbol", asset)
	var balances []balance
	if err := c.get(ctx, "/balance", q, true, &balances); err != nil {
		return btcfolio.Q(0), fmt.Errorf("cannot get %s balance: %w", asset, err)
	}
	for _, b := range balances {
		if b.Symbol != asset {
			continue
		}
		v, err := btcfolio.ParseQuantity(b.Available)
		if err != nil {
			return btcfolio.Q(0), fmt.Errorf("invalid %s balance: %w", asset, err)
		}
		return v, nil
	}
	// the exchange omits assets that were never held
	return btcfolio.Q(0), nil
}

type tickerPrice struct {
	Market string `json:"market"`
	Price  string `json:"price"`
}

// TickerPrice returns the last traded price of market. It is a public endpoint.
func (c *Client) TickerPrice(ctx context.Context, market btcfolio.Market) (btcfolio.Money, error) {
	q := url.Values{}
	q.Set("market", market.String())
	var t tickerPrice
	if err := c.get(ctx, "/ticker/price", q, false, &t); err != nil {
		return btcfolio.M(0, market.Quote), fmt.Errorf("cannot get %s ticker: %w", market, err)
	}
	return btcfolio.ParseMoney(t.Price, market.Quote)
}
