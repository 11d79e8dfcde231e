package dashboard

import (
	"context"

	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// TransferFetcher defines the interface for the indexer client
type TransferFetcher interface {
	Fetch(ctx context.Context, address string, policy transfer.FallbackPolicy) transfer.Result
}

// ReportRequester defines the interface for the report requester
type ReportRequester interface {
	Request(ctx context.Context, walletAddress string, transfers []transfer.Transfer) report.Result
}

// Service assembles the dashboard from a session, the transfer list and the report
type Service struct {
	transfers TransferFetcher
	reports   ReportRequester
	logger    *logger.Logger
}

// NewService creates a new dashboard service
func NewService(transfers TransferFetcher, reports ReportRequester, log *logger.Logger) *Service {
	return &Service{
		transfers: transfers,
		reports:   reports,
		logger:    log.WithComponent("dashboard"),
	}
}

// Load builds the whole dashboard: transfers first, then the report. Only indexer
// transfers are sent for analysis; the sample fallback never is. A failure in one
// section leaves the other untouched.
func (s *Service) Load(ctx context.Context, sess *session.Session) (*Dashboard, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}

	transfers := s.Transfers(ctx, sess.WalletAddress, transfer.FallbackSample)

	var analyzed []transfer.Transfer
	if transfers.FromIndexer() {
		analyzed = transfers.Records()
	}
	rep := s.Report(ctx, sess.WalletAddress, analyzed)

	s.logger.WithContext(ctx).Debug("dashboard assembled",
		"address", sess.WalletAddress,
		"transfers_status", string(transfers.Status),
		"report_status", string(rep.Status))

	return &Dashboard{
		Session:   sess,
		Transfers: transfers,
		Report:    rep,
	}, nil
}

// Transfers loads the transfer section on its own
func (s *Service) Transfers(ctx context.Context, address string, policy transfer.FallbackPolicy) *TransfersSection {
	sec := NewTransfersSection()
	s.must(sec.transition(StatusLoading))

	res := s.transfers.Fetch(ctx, address, policy)

	sec.Source = res.Source
	sec.records = res.Transfers
	sec.Items = make([]TransferView, 0, len(res.Transfers))
	for _, t := range res.Transfers {
		sec.Items = append(sec.Items, NewTransferView(t, address))
	}
	s.must(sec.resolve(res.Err != nil, transfersMessage(res.Err)))
	return sec
}

// Report loads the report section on its own. transfers may be nil.
func (s *Service) Report(ctx context.Context, address string, transfers []transfer.Transfer) *ReportSection {
	sec := NewReportSection()
	s.must(sec.transition(StatusLoading))

	res := s.reports.Request(ctx, address, transfers)

	sec.Report = res.Report
	s.must(sec.resolve(res.Err != nil, MsgReportUnavailable))
	return sec
}

// must logs a lifecycle violation. Sections are fresh per call, so this only fires on a bug.
func (s *Service) must(err error) {
	if err != nil {
		s.logger.Error("section lifecycle", "error", err)
	}
}
