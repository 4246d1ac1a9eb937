// Package yahoo talks to the Yahoo Fantasy Sports REST API and normalizes
// its positionally-indexed JSON into flat typed records.
//
// Yahoo encodes composite records as arrays of single-key objects and
// collections as objects with numeric string keys plus a "count" field.
// Everything shape-specific is kept behind the normalizer in this package
// so a provider format change touches one place.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/gridline/fantasy-data/internal/metrics"
)

// UpstreamError is a non-2xx answer from a provider data endpoint.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned %s", e.Status)
}

// Client is the shared HTTP client for all Yahoo Fantasy endpoints.
// Requests carry a Bearer access token and pass through a token bucket
// limiter so per-week fan-out cannot burst the provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Yahoo API client with rate limiting and a bounded
// per-request timeout.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 2),
		logger:     logger,
	}
}

// get performs a rate-limited GET and decodes the response into the generic
// JSON shape the normalizer walks. path must start with "/"; the JSON format
// parameter is appended here.
func (c *Client) get(ctx context.Context, accessToken, path string) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path + "?format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequests.WithLabelValues(metrics.ResultError).Inc()
		c.logger.Warn("provider error", "path", path, "status", resp.StatusCode, "body", truncate(body, 200))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	metrics.ProviderRequests.WithLabelValues(metrics.ResultOK).Inc()

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// truncate returns a truncated string representation for log messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
