package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const (
	requestTimeout = 60 * time.Second
	maxBodySize    = 1 << 20
)

// StatusError is returned when the report endpoint answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("report API error: status %d, body: %s", e.StatusCode, e.Body)
}

// IsStatusError checks if an error is (or wraps) a report API status error
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// Client posts wallet data to a remote report endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logger.Logger
}

// Compile-time check that Client implements report.Generator
var _ report.Generator = (*Client)(nil)

// NewClient creates a new report API client
func NewClient(endpoint string, log *logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.WithField("component", "reportapi"),
	}
}

// SetBaseURL overrides the endpoint (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.endpoint = url
}

// Generate sends {walletAddress, transactions?} and decodes the Wallet Report answer
func (c *Client) Generate(ctx context.Context, req report.Request) (*report.Report, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API error", "status_code", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	rep, err := report.Decode(respBody, req.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return rep, nil
}
