package alchemy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/kislikjeka/walletscope/pkg/logger"
)

const (
	requestTimeout  = 15 * time.Second
	defaultNetwork  = "eth-mainnet"
	defaultPageSize = 100
	maxPageSize     = 1000
	maxErrorBody    = 512
)

// Client represents an Alchemy JSON-RPC client for one network
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new Alchemy client. network is the Alchemy subdomain, e.g. eth-mainnet.
func NewClient(apiKey, network string, pageSize int, log *logger.Logger) *Client {
	if network == "" {
		network = defaultNetwork
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Client{
		baseURL:  fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", network, apiKey),
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.WithField("component", "alchemy"),
	}
}

// SetBaseURL overrides the endpoint (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// doRequest performs a JSON-RPC request
func (c *Client) doRequest(ctx context.Context, req *RPCRequest) (*RPCResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{Message: "Alchemy API rate limit exceeded"}
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("API error", "status_code", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var rpcResp RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return &rpcResp, nil
}

// getAssetTransfers runs one alchemy_getAssetTransfers page, newest first
func (c *Client) getAssetTransfers(ctx context.Context, params AssetTransferParams) ([]AssetTransfer, error) {
	req := &RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "alchemy_getAssetTransfers",
		Params:  []interface{}{params},
	}

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("alchemy_getAssetTransfers failed: %w", err)
	}

	var result AssetTransferResponse
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to parse transfers: %w", err)
	}
	return result.Transfers, nil
}

// GetAssetTransfers fetches the latest native transfers sent or received by address.
// Alchemy filters on one direction per call, so both are queried and merged by block,
// newest first, capped at the page size.
func (c *Client) GetAssetTransfers(ctx context.Context, address string) ([]AssetTransfer, error) {
	address = strings.TrimSpace(address)
	base := AssetTransferParams{
		FromBlock:        "0x0",
		ToBlock:          "latest",
		Category:         NativeCategories(),
		WithMetadata:     true,
		ExcludeZeroValue: false,
		MaxCount:         fmt.Sprintf("0x%x", c.pageSize),
		Order:            "desc",
	}

	outgoing := base
	outgoing.FromAddress = address
	sent, err := c.getAssetTransfers(ctx, outgoing)
	if err != nil {
		return nil, err
	}

	incoming := base
	incoming.ToAddress = address
	received, err := c.getAssetTransfers(ctx, incoming)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sent)+len(received))
	merged := make([]AssetTransfer, 0, len(sent)+len(received))
	for _, t := range append(sent, received...) {
		id := t.TransferID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, t)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BlockNumber() > merged[j].BlockNumber()
	})
	if len(merged) > c.pageSize {
		merged = merged[:c.pageSize]
	}

	c.logger.Info("transfers fetched", "address", address, "sent", len(sent), "received", len(received), "count", len(merged))
	return merged, nil
}

// RateLimitError represents a rate limit error from Alchemy API
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// IsRateLimitError checks if an error is (or wraps) a rate limit error
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
