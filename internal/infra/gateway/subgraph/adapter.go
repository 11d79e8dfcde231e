package subgraph

import (
	"context"

	"github.com/kislikjeka/walletscope/internal/platform/transfer"
)

// TransferAdapter adapts the subgraph client to the transfer.Provider interface
type TransferAdapter struct {
	client *Client
}

// Compile-time check that TransferAdapter implements transfer.Provider
var _ transfer.Provider = (*TransferAdapter)(nil)

// NewTransferAdapter creates a new subgraph transfer adapter
func NewTransferAdapter(client *Client) *TransferAdapter {
	return &TransferAdapter{client: client}
}

// GetTransfers fetches transfer nodes and converts them to domain records
func (a *TransferAdapter) GetTransfers(ctx context.Context, address string) ([]transfer.Transfer, error) {
	nodes, err := a.client.GetTransfers(ctx, address)
	if err != nil {
		return nil, err
	}

	result := make([]transfer.Transfer, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, transfer.Transfer{
			ID:        n.ID,
			From:      n.From,
			To:        n.To,
			Value:     n.Value,
			Timestamp: n.Timestamp,
		})
	}
	return result, nil
}
