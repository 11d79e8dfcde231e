package transfer

import "errors"

var (
	// Record validation errors
	ErrMissingID        = errors.New("transfer id is required")
	ErrInvalidValue     = errors.New("transfer value must be a non-negative base-unit integer")
	ErrInvalidTimestamp = errors.New("transfer timestamp must be integer unix seconds")

	// Fetch outcomes that trigger the fallback
	ErrNoTransfers   = errors.New("indexer returned no transfers")
	ErrNotConfigured = errors.New("indexer is not configured")
)
