package alchemy

import (
	"context"
	"strconv"
	"time"

	"github.com/kislikjeka/walletscope/internal/platform/transfer"
)

// TransferAdapter adapts the Alchemy client to the transfer.Provider interface
type TransferAdapter struct {
	client *Client
}

// Compile-time check that TransferAdapter implements transfer.Provider
var _ transfer.Provider = (*TransferAdapter)(nil)

// NewTransferAdapter creates a new Alchemy transfer adapter
func NewTransferAdapter(client *Client) *TransferAdapter {
	return &TransferAdapter{client: client}
}

// GetTransfers fetches native transfers and converts them to domain records.
// Hex values become decimal wei and ISO timestamps become Unix seconds; entries that
// cannot be converted are passed through empty so validation drops them.
func (a *TransferAdapter) GetTransfers(ctx context.Context, address string) ([]transfer.Transfer, error) {
	items, err := a.client.GetAssetTransfers(ctx, address)
	if err != nil {
		return nil, err
	}

	result := make([]transfer.Transfer, 0, len(items))
	for _, it := range items {
		result = append(result, toDomain(it))
	}
	return result, nil
}

func toDomain(t AssetTransfer) transfer.Transfer {
	rec := transfer.Transfer{
		ID:   t.TransferID(),
		From: t.From,
		To:   t.To,
	}
	if v := ParseHexValue(t.RawContract.Value); v != nil {
		rec.Value = v.String()
	}
	if ts, err := time.Parse(time.RFC3339, t.Metadata.BlockTimestamp); err == nil {
		rec.Timestamp = strconv.FormatInt(ts.Unix(), 10)
	}
	return rec
}
