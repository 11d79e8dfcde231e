package alchemy

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// RPCRequest represents a JSON-RPC 2.0 request
type RPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// RPCResponse represents a JSON-RPC 2.0 response
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// AssetTransferParams represents parameters for alchemy_getAssetTransfers
type AssetTransferParams struct {
	FromBlock        string   `json:"fromBlock"`
	ToBlock          string   `json:"toBlock"`
	FromAddress      string   `json:"fromAddress,omitempty"`
	ToAddress        string   `json:"toAddress,omitempty"`
	Category         []string `json:"category"`
	WithMetadata     bool     `json:"withMetadata"`
	ExcludeZeroValue bool     `json:"excludeZeroValue"`
	MaxCount         string   `json:"maxCount,omitempty"`
	Order            string   `json:"order,omitempty"` // "asc" or "desc"
}

// AssetTransferResponse represents the response from alchemy_getAssetTransfers
type AssetTransferResponse struct {
	Transfers []AssetTransfer `json:"transfers"`
	PageKey   string          `json:"pageKey,omitempty"`
}

// AssetTransfer represents a single asset transfer
type AssetTransfer struct {
	BlockNum    string           `json:"blockNum"` // Hex block number
	Hash        string           `json:"hash"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Asset       string           `json:"asset"`
	Category    string           `json:"category"`
	RawContract RawContract      `json:"rawContract"`
	Metadata    TransferMetadata `json:"metadata"`
	UniqueID    string           `json:"uniqueId"`
}

// RawContract contains contract information
type RawContract struct {
	Value   string  `json:"value"` // Hex value in base units
	Address *string `json:"address"`
}

// TransferMetadata contains block metadata
type TransferMetadata struct {
	BlockTimestamp string `json:"blockTimestamp"` // ISO 8601 timestamp
}

// Native transfer categories
const (
	CategoryExternal = "external"
	CategoryInternal = "internal"
)

// NativeCategories returns the categories that carry ETH value
func NativeCategories() []string {
	return []string{CategoryExternal, CategoryInternal}
}

// ParseHexValue converts a hex quantity to *big.Int. Malformed input yields nil.
func ParseHexValue(hexStr string) *big.Int {
	hexStr = strings.TrimPrefix(strings.TrimSpace(hexStr), "0x")
	if hexStr == "" {
		return big.NewInt(0)
	}

	num, ok := new(big.Int).SetString(hexStr, 16)
	if !ok {
		return nil
	}
	return num
}

// BlockNumber returns the transfer's block as an integer, 0 when malformed
func (t *AssetTransfer) BlockNumber() uint64 {
	n := ParseHexValue(t.BlockNum)
	if n == nil || !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}

// TransferID returns the unique transfer id, falling back to the transaction hash
func (t *AssetTransfer) TransferID() string {
	if t.UniqueID != "" {
		return t.UniqueID
	}
	return t.Hash
}
