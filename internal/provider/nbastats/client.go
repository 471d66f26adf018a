// Package nbastats is the statistics provider client: the stats.nba.com
// tabular endpoints behind the active-player registry, game logs and
// upcoming schedules.
//
// Requests are rate limited via a token bucket, retried with exponential
// backoff on transient failures, and guarded by a circuit breaker so a
// provider outage fails fast instead of stacking timeouts. Raw response
// bodies are cached by request URL.
package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// DefaultBaseURL is the public statistics endpoint root.
const DefaultBaseURL = "https://stats.nba.com/stats"

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL           string
	Season            string // "2025-26"; empty means the season in progress
	RequestsPerMinute int
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	Cache             cache.Store
	Logger            *slog.Logger
}

// Client is the shared HTTP client for all statistics endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	season     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retry      provider.RetryPolicy
	cache      cache.Store
	logger     *slog.Logger
}

// NewClient creates a statistics client with rate limiting.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Season == "" {
		cfg.Season = SeasonFor(time.Now())
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(false)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger

	rps := float64(cfg.RequestsPerMinute) / 60.0
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nba-stats",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !provider.IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		season:     cfg.Season,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		breaker:    breaker,
		retry:      provider.RetryPolicy{MaxRetries: cfg.MaxRetries, Wait: cfg.RetryBackoff},
		cache:      cfg.Cache,
		logger:     logger,
	}
}

// Season returns the season string requests are scoped to.
func (c *Client) Season() string { return c.season }

// SeasonFor returns the season in progress at t. Seasons tip off in
// October, so October onwards belongs to the season starting that year.
func SeasonFor(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

// response is the stats.nba.com envelope.
type response struct {
	ResultSets []provider.Table `json:"resultSets"`
}

// resultSet fetches path and returns the named result set, or the first
// one when name is empty.
func (c *Client) resultSet(ctx context.Context, path string, params url.Values, name string, ttl time.Duration) (*provider.Table, error) {
	body, err := c.get(ctx, path, params, ttl)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("%s returned no result sets", path)
	}
	if name == "" {
		return &resp.ResultSets[0], nil
	}
	for i := range resp.ResultSets {
		if resp.ResultSets[i].Name == name {
			return &resp.ResultSets[i], nil
		}
	}
	return nil, fmt.Errorf("%s has no %q result set", path, name)
}

// get performs a cached, rate-limited, retried GET. A context marked with
// cache.Bypass always goes upstream.
func (c *Client) get(ctx context.Context, path string, params url.Values, ttl time.Duration) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	if !cache.Bypassed(ctx) {
		if data, ok := c.cache.Get(ctx, u); ok {
			c.logger.Debug("Stats cache hit", "path", path)
			return data, nil
		}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.getWithRetry(ctx, path, u)
	})
	if err != nil {
		return nil, err
	}
	body := out.([]byte)
	c.cache.Set(ctx, u, body, ttl)
	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, path, u string) ([]byte, error) {
	return provider.Retry(ctx, c.retry, c.logger, path, func() ([]byte, error) {
		return c.do(ctx, path, u)
	})
}

func (c *Client) do(ctx context.Context, path, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// The endpoint rejects requests that do not look like the site itself.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.StatusError{Provider: "stats", Path: path, Code: resp.StatusCode, Body: provider.Truncate(body, 200)}
	}
	return body, nil
}
