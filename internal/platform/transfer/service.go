package transfer

import (
	"context"
	"time"

	"github.com/kislikjeka/walletscope/pkg/logger"
)

// Source tells where the records of a Result came from
type Source string

const (
	SourceIndexer  Source = "indexer"
	SourceFallback Source = "fallback"
)

// Result is what callers receive from Fetch. It always carries a usable slice;
// Err records why the fallback was used and is nil for indexer results.
type Result struct {
	Transfers []Transfer
	Source    Source
	Err       error
}

// IsFallback returns true if the records were substituted
func (r Result) IsFallback() bool {
	return r.Source == SourceFallback
}

// Service wraps a Provider with the fetch contract: one request, no retry, and any
// failure or empty answer swallowed, logged and replaced with fallback records.
type Service struct {
	provider Provider
	logger   *logger.Logger
}

// NewService creates a transfer service. A nil provider means the indexer is not
// configured and every fetch falls back.
func NewService(provider Provider, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   log.WithComponent("transfers"),
	}
}

// Fetch returns the transfers of address, never an error.
func (s *Service) Fetch(ctx context.Context, address string, policy FallbackPolicy) Result {
	if !policy.IsValid() {
		policy = FallbackSample
	}

	if s.provider == nil {
		return s.fallback(ctx, address, policy, ErrNotConfigured)
	}

	start := time.Now()
	records, err := s.provider.GetTransfers(ctx, address)
	if err != nil {
		return s.fallback(ctx, address, policy, err)
	}

	valid := make([]Transfer, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			s.logger.WithContext(ctx).Warn("dropping malformed transfer", "address", address, "id", rec.ID, "error", err)
			continue
		}
		valid = append(valid, rec)
	}

	if len(valid) == 0 {
		return s.fallback(ctx, address, policy, ErrNoTransfers)
	}

	s.logger.WithContext(ctx).Debug("transfers fetched",
		"address", address,
		"count", len(valid),
		"duration_ms", time.Since(start).Milliseconds())

	return Result{Transfers: valid, Source: SourceIndexer}
}

func (s *Service) fallback(ctx context.Context, address string, policy FallbackPolicy, cause error) Result {
	s.logger.WithContext(ctx).Warn("using fallback transfers",
		"address", address,
		"policy", string(policy),
		"error", cause)

	return Result{
		Transfers: policy.Fallback(),
		Source:    SourceFallback,
		Err:       cause,
	}
}
