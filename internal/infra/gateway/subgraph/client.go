package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kislikjeka/walletscope/pkg/logger"
)

const (
	requestTimeout  = 15 * time.Second
	defaultPageSize = 100
	maxErrorBody    = 512
)

// transfersQuery selects the most recent transfers where the account is the sender or the recipient.
const transfersQuery = `query WalletTransfers($account: Bytes!, $first: Int!) {
  transfers(
    first: $first
    orderBy: timestamp
    orderDirection: desc
    where: { or: [{ from: $account }, { to: $account }] }
  ) {
    id
    from
    to
    value
    timestamp
  }
}`

// ErrEmptyData is returned when the response has neither data nor errors
var ErrEmptyData = errors.New("graphql response has no data")

// Client queries a subgraph GraphQL endpoint. One POST per call, no retries.
type Client struct {
	endpoint   string
	pageSize   int
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new subgraph client for endpoint. pageSize caps the number of
// transfers returned by a single query.
func NewClient(endpoint string, pageSize int, log *logger.Logger) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		endpoint: endpoint,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.WithField("component", "subgraph"),
	}
}

// SetBaseURL overrides the endpoint (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.endpoint = url
}

// doQuery posts a GraphQL request and returns the raw data payload
func (c *Client) doQuery(ctx context.Context, req *GraphQLRequest) (json.RawMessage, error) {
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("API error", "status_code", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gqlResp GraphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &GraphQLError{Messages: msgs}
	}

	if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return nil, ErrEmptyData
	}

	c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return gqlResp.Data, nil
}

// GetTransfers fetches the latest transfers sent or received by address.
// The address is lowercased because subgraphs store Bytes fields in lowercase hex.
func (c *Client) GetTransfers(ctx context.Context, address string) ([]TransferNode, error) {
	req := &GraphQLRequest{
		Query: transfersQuery,
		Variables: map[string]interface{}{
			"account": strings.ToLower(strings.TrimSpace(address)),
			"first":   c.pageSize,
		},
	}

	data, err := c.doQuery(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transfers query failed: %w", err)
	}

	var payload TransfersData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse transfers: %w", err)
	}

	c.logger.Info("transfers fetched", "address", address, "count", len(payload.Transfers))
	return payload.Transfers, nil
}

// IsGraphQLError checks if an error is (or wraps) a GraphQL errors response
func IsGraphQLError(err error) bool {
	var gqlErr *GraphQLError
	return errors.As(err, &gqlErr)
}
