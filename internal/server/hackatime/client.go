// Package hackatime implements the client for the external coding-time
// source (the HackaTime stats API). The reported total is a cumulative,
// monotonically non-decreasing number of seconds per user; the client
// never fabricates a value when the upstream misbehaves.
package hackatime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/sethvargo/go-retry"
)

const userAgent = "Pixelboard/1.0"

// Stats is the subset of the upstream stats payload the server consumes.
type Stats struct {
	TotalSeconds       int64
	HumanReadableTotal string
}

type statsResponse struct {
	Data *struct {
		TotalSeconds       float64 `json:"total_seconds"`
		HumanReadableTotal string  `json:"human_readable_total"`
	} `json:"data"`
}

// Client fetches per-user coding-time totals with a bounded timeout and
// capped exponential backoff on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient constructs a client for the given base URL. The timeout
// bounds every individual request attempt.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("module", "hackatime"),
	}
}

// UserStats returns the cumulative reported total for the user. Any
// terminal failure (network, 5xx after retries, 4xx, unparseable body)
// yields common.ErrUpstreamUnavailable: callers fail closed rather than
// treating the budget as zero or infinite.
func (c *Client) UserStats(ctx context.Context, userID string) (*Stats, error) {
	url := fmt.Sprintf("%s/api/v1/users/%s/stats", c.baseURL, userID)

	var stats *Stats

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := c.fetch(ctx, url)
		if err != nil {
			return err
		}
		stats = s
		return nil
	})

	if err != nil {
		c.logger.Warn(ctx, "upstream stats request failed", "user_id", userID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}

	return stats, nil
}

// fetch performs one request attempt. Server-side and transport errors
// are marked retryable; client errors and malformed payloads are
// terminal.
func (c *Client) fetch(ctx context.Context, url string) (*Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	var payload statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding upstream payload: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("upstream payload has no data section")
	}

	return &Stats{
		TotalSeconds:       int64(payload.Data.TotalSeconds),
		HumanReadableTotal: payload.Data.HumanReadableTotal,
	}, nil
}
