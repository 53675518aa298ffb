// Package dolarapi reads dollar quotes from dolarapi.com.
package dolarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/troncosounlar-bit/legasync-flow/internal/exchange/domain"
)

// DefaultURL lists every dollar quote.
const DefaultURL = "https://dolarapi.com/v1/dolares"

// Client fetches quotes over HTTP, retrying transient failures.
type Client struct {
	url  string
	http *retryablehttp.Client
}

var _ domain.Source = (*Client)(nil)

// Config configures the client.
type Config struct {
	URL      string
	RetryMax int
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewClient creates a client. Zero values fall back to DefaultURL, three
// retries and a ten second timeout.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryMax == 0 {
		rc.RetryMax = 3
	}
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil
	if cfg.Logger != nil {
		rc.Logger = cfg.Logger
	}

	return &Client{url: cfg.URL, http: rc}
}

// Fetch returns the provider's raw list.
func (c *Client) Fetch(ctx context.Context) ([]domain.Rate, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch exchange rates: status %d: %s", resp.StatusCode, body)
	}

	var rates []domain.Rate
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("decode exchange rates: %w", err)
	}
	return rates, nil
}
