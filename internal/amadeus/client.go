// Package amadeus implements the external data aggregation engine: an
// authenticated client for the travel-data API plus the query operations
// built on top of it (destinations, safety, points of interest, flight
// dates). Network calls with no data dependency run concurrently; merge
// order is always defined by input order, never completion order.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amadeus_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amadeus_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxPages    = 50
	defaultPageLimit   = 10000
)

// Config holds the upstream client configuration.
type Config struct {
	// BaseURL of the upstream API, e.g. "https://test.api.amadeus.com".
	BaseURL string

	// OAuth client credentials for the token endpoint.
	ClientID     string
	ClientSecret string

	// Timeout per HTTP request.
	Timeout time.Duration

	// MaxPages bounds cursor-following pagination.
	MaxPages int

	// PageLimit is the page[limit] parameter sent on paginated endpoints.
	PageLimit int
}

// Client is the authenticated upstream API client. All request paths share
// one credential cache; an unauthorized response triggers exactly one
// invalidate-and-retry per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenSource
	maxPages   int
	pageLimit  int
}

// NewClient constructs a Client. Zero config fields fall back to defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		tokens:     newTokenSource(cfg.BaseURL, cfg.ClientID, cfg.ClientSecret, httpClient),
		maxPages:   cfg.MaxPages,
		pageLimit:  cfg.PageLimit,
	}
}

// get performs an authenticated GET against path with the given query and
// decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	rawURL := c.baseURL + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	return c.getURL(ctx, rawURL, dst)
}

// getURL performs an authenticated GET against a fully-formed URL. Cursor
// URLs from pagination links are passed here unchanged.
func (c *Client) getURL(ctx context.Context, rawURL string, dst any) error {
	cred, err := c.tokens.Credential(ctx)
	if err != nil {
		return err
	}

	err = c.do(ctx, rawURL, cred, dst)
	if !isAuthFailure(err) {
		return err
	}

	// The credential was rejected upstream: drop it and retry once with a
	// fresh one.
	c.tokens.Invalidate()
	cred, err = c.tokens.Credential(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, rawURL, cred, dst)
}

func (c *Client) do(ctx context.Context, rawURL string, cred Credential, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UpstreamError{URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", cred.TokenType+" "+cred.Token)
	req.Header.Set("Accept", "application/json")

	endpoint := req.URL.Path
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &UpstreamError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UpstreamError{URL: rawURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &UpstreamError{URL: rawURL, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}
