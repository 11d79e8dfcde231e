package transfer

import "context"

// Provider queries an indexing service for the transfers of an address.
// Implementations return errors; Service turns them into fallback results.
type Provider interface {
	GetTransfers(ctx context.Context, address string) ([]Transfer, error)
}
