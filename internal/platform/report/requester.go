package report

import (
	"context"
	"time"

	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// Result is the outcome of a report request. Report is always set; Err records why
// the fallback was used.
type Result struct {
	Report *Report
	Err    error
}

// Requester asks a Generator for a report once and degrades to FallbackReport.
type Requester struct {
	generator Generator
	logger    *logger.Logger
}

// NewRequester creates a report requester. A nil generator always falls back.
func NewRequester(generator Generator, log *logger.Logger) *Requester {
	return &Requester{
		generator: generator,
		logger:    log.WithComponent("reports"),
	}
}

// Request returns a normalized report for walletAddress. transfers may be nil.
func (r *Requester) Request(ctx context.Context, walletAddress string, transfers []transfer.Transfer) Result {
	if r.generator == nil {
		return r.fallback(ctx, walletAddress, ErrNotConfigured)
	}

	start := time.Now()
	rep, err := r.generator.Generate(ctx, Request{
		WalletAddress: walletAddress,
		Transactions:  transfers,
	})
	if err != nil {
		return r.fallback(ctx, walletAddress, err)
	}
	if rep == nil {
		return r.fallback(ctx, walletAddress, ErrEmptyResponse)
	}

	rep.Normalize(walletAddress)
	rep.Source = SourceGenerator

	r.logger.WithContext(ctx).Info("report generated",
		"address", walletAddress,
		"transfers", len(transfers),
		"score", rep.OverallHealthScore,
		"duration_ms", time.Since(start).Milliseconds())

	return Result{Report: rep}
}

func (r *Requester) fallback(ctx context.Context, walletAddress string, cause error) Result {
	r.logger.WithContext(ctx).Warn("using fallback report", "address", walletAddress, "error", cause)
	return Result{Report: FallbackReport(walletAddress), Err: cause}
}
