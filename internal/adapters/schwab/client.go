package schwab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"vega/internal/adapters/config"
	"vega/internal/domain/contract"
	"vega/internal/domain/marketdata"
	"vega/internal/metrics"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

// TokenSource supplies a bearer token for provider requests. Token refresh
// itself lives outside this system; a static token source is provided for
// the common case.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token
type StaticToken string

// Token implements TokenSource
func (s StaticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", errors.ErrUpstreamAuth
	}
	return string(s), nil
}

// Retry bounds per error class. Auth failures are retried at most a small
// bounded number of times so an invalid credential is never hammered.
const (
	maxRateLimitTries = 3
	maxNetworkTries   = 2
	backoffBase       = 250 * time.Millisecond
)

// Client is the market data provider client. Implements marketdata.Provider.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	maxAuth int
	log     *logger.Logger
}

var _ marketdata.Provider = (*Client)(nil)

// NewClient creates a provider client from configuration
func NewClient(cfg config.ProviderConfig, tokens TokenSource) *Client {
	perMin := cfg.RatePerMin
	if perMin <= 0 {
		perMin = 120
	}
	maxAuth := cfg.MaxAuthTries
	if maxAuth <= 0 {
		maxAuth = 2
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60), perMin/10+1),
		maxAuth: maxAuth,
		log:     logger.Get(),
	}
}

// Quote fetches the underlying quote for a symbol
func (c *Client) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	var payload map[string]quoteEnvelope
	q := url.Values{"symbols": {symbol}}
	if err := c.get(ctx, "quotes", "/marketdata/v1/quotes", q, &payload); err != nil {
		return nil, err
	}
	env, ok := payload[symbol]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoTradableData, "no quote for %s", symbol)
	}
	return &marketdata.Quote{
		Symbol:      symbol,
		Last:        env.Quote.LastPrice,
		Mark:        env.Quote.Mark,
		Bid:         env.Quote.BidPrice,
		Ask:         env.Quote.AskPrice,
		TotalVolume: env.Quote.TotalVolume,
	}, nil
}

// OptionChain fetches the full option chain for a symbol
func (c *Client) OptionChain(ctx context.Context, symbol string) (*contract.ChainSnapshot, error) {
	var payload chainResponse
	q := url.Values{"symbol": {symbol}, "strategy": {"SINGLE"}}
	if err := c.get(ctx, "chains", "/marketdata/v1/chains", q, &payload); err != nil {
		return nil, err
	}
	return &contract.ChainSnapshot{
		Symbol:          symbol,
		UnderlyingPrice: payload.UnderlyingPrice,
		Calls:           payload.CallExpDateMap,
		Puts:            payload.PutExpDateMap,
	}, nil
}

// DailyCloses fetches the trailing daily close sequence, most recent last
func (c *Client) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	var payload historyResponse
	q := url.Values{
		"symbol":        {symbol},
		"periodType":    {"month"},
		"frequencyType": {"daily"},
	}
	if err := c.get(ctx, "pricehistory", "/marketdata/v1/pricehistory", q, &payload); err != nil {
		return nil, err
	}
	candles := payload.Candles
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Datetime < candles[j].Datetime })

	closes := make([]float64, 0, len(candles))
	for _, cd := range candles {
		if cd.Close > 0 {
			closes = append(closes, cd.Close)
		}
	}
	if days > 0 && len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}

// NextEarnings fetches the next earnings date, nil when unknown
func (c *Client) NextEarnings(ctx context.Context, symbol string) (*time.Time, error) {
	var payload earningsResponse
	q := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "earnings", "/marketdata/v1/earnings", q, &payload); err != nil {
		return nil, err
	}
	if payload.NextEarningsDate == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", payload.NextEarningsDate)
	if err != nil {
		return nil, nil // malformed supplementary data degrades to unknown
	}
	return &t, nil
}

// Headlines fetches recent headlines for a symbol
func (c *Client) Headlines(ctx context.Context, symbol string) ([]string, error) {
	var payload newsResponse
	q := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "news", "/marketdata/v1/news", q, &payload); err != nil {
		return nil, err
	}
	return payload.Headlines, nil
}

// AnalystRatings fetches the analyst buy/hold/sell tally
func (c *Client) AnalystRatings(ctx context.Context, symbol string) (*marketdata.Ratings, error) {
	var payload ratingsResponse
	q := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "ratings", "/marketdata/v1/ratings", q, &payload); err != nil {
		return nil, err
	}
	return &marketdata.Ratings{Buy: payload.Buy, Hold: payload.Hold, Sell: payload.Sell}, nil
}

// get performs one provider GET with bounded retries per error class:
// auth failures up to the configured cap, 429 with backoff, network/5xx with
// backoff, everything bounded so a broken upstream fails fast. A payload that
// fails to decode is not retried: the provider answered, the shape is wrong.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, dest interface{}) error {
	var authTries, rateTries, netTries int

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}

		status, err := c.once(ctx, path, query, dest)
		switch {
		case err == nil && status == http.StatusOK:
			metrics.ProviderRequests.WithLabelValues(endpoint, "ok").Inc()
			return nil

		case err != nil && errors.Is(err, errors.ErrMalformedPayload):
			metrics.ProviderRequests.WithLabelValues(endpoint, "malformed").Inc()
			return errors.Wrap(err, endpoint)

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			authTries++
			if authTries > c.maxAuth {
				metrics.ProviderRequests.WithLabelValues(endpoint, "auth").Inc()
				return errors.NewDomainError("UPSTREAM_AUTH", "provider rejected credentials", errors.ErrUpstreamAuth).
					WithRemediation("re-run the provider authorization flow and update PROVIDER_ACCESS_TOKEN")
			}

		case status == http.StatusTooManyRequests:
			rateTries++
			if rateTries > maxRateLimitTries {
				metrics.ProviderRequests.WithLabelValues(endpoint, "rate_limited").Inc()
				return errors.Wrapf(errors.ErrRateLimited, "%s after %d attempts", endpoint, rateTries)
			}
			if err := sleep(ctx, backoffBase<<rateTries); err != nil {
				return err
			}

		case err != nil || status >= http.StatusInternalServerError:
			netTries++
			if netTries > maxNetworkTries {
				metrics.ProviderRequests.WithLabelValues(endpoint, "unavailable").Inc()
				if err != nil {
					return errors.Wrapf(errors.ErrUpstreamUnavailable, "%s: %v", endpoint, err)
				}
				return errors.Wrapf(errors.ErrUpstreamUnavailable, "%s: status %d", endpoint, status)
			}
			if err := sleep(ctx, backoffBase<<netTries); err != nil {
				return err
			}

		case status == http.StatusNotFound:
			metrics.ProviderRequests.WithLabelValues(endpoint, "not_found").Inc()
			return errors.Wrapf(errors.ErrNotFound, "%s %s", endpoint, query.Encode())

		default:
			metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
			return errors.Wrapf(errors.ErrUpstreamUnavailable, "%s: unexpected status %d", endpoint, status)
		}
	}
}

// once performs a single request attempt. Returns the HTTP status when a
// response was received; a non-nil error means the request never completed.
func (c *Client) once(ctx context.Context, path string, query url.Values, dest interface{}) (int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return http.StatusUnauthorized, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	metrics.ProviderLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
