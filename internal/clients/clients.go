// Package clients provides the HTTP fetcher, response validation and the NASA API client
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"go-skydata/internal/domain"
)

const (
	// DefaultTimeout bounds a whole request including the body read
	DefaultTimeout = 30 * time.Second

	// MaxBodyBytes caps how much of a response body is read
	MaxBodyBytes = 10 << 20

	userAgent = "go-skydata/1.0"
)

// secretParams are query parameters stripped from URLs that end up in errors
var secretParams = []string{"api_key"}

// Response is the raw outcome of one GET
type Response struct {
	StatusCode int
	Body       []byte
}

// HTTPClient performs single-attempt GET requests. It keeps no per-request
// state, so one instance is safe for concurrent use.
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithRatePerHour paces outgoing requests; zero or less disables pacing
func WithRatePerHour(n int) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(n)), n)
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// NewHTTPClient creates a new HTTP client with timeout
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs one GET request. Any failure to obtain a response is a NetworkError;
// status codes are left to Validate.
func (c *HTTPClient) Get(ctx context.Context, endpoint domain.Endpoint, rawURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.NetworkError{Endpoint: endpoint, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", redact(err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Endpoint: endpoint, Err: redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// redact removes credentials from the URL carried by a *url.Error
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactURL(urlErr.URL)
	}
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	for _, p := range secretParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
