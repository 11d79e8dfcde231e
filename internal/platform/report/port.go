package report

import "context"

// Generator produces a wallet report. Implementations report failures as errors;
// Requester owns the fallback.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Report, error)
}
