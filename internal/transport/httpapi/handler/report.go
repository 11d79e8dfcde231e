package handler

import (
	"context"
	"net/http"

	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/internal/platform/wallet"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// ReportRequesterInterface defines the interface for report generation
type ReportRequesterInterface interface {
	Request(ctx context.Context, walletAddress string, transfers []transfer.Transfer) report.Result
}

// ReportHandler serves wallet reports for arbitrary addresses
type ReportHandler struct {
	requester ReportRequesterInterface
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(requester ReportRequesterInterface, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		requester: requester,
		logger:    log.WithComponent("report_handler"),
	}
}

// CreateReport handles POST /reports
// A generator failure still answers 200 with the fallback report.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req report.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := wallet.ValidateAddress(req.WalletAddress)
	if err != nil {
		status, msg, _ := addressError(err)
		respondWithError(w, status, msg)
		return
	}

	transfers := make([]transfer.Transfer, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		if err := t.Validate(); err != nil {
			h.logger.WithContext(r.Context()).Warn("dropping malformed transaction", "id", t.ID, "error", err)
			continue
		}
		transfers = append(transfers, t)
	}

	res := h.requester.Request(r.Context(), address, transfers)
	respondWithJSON(w, http.StatusOK, res.Report)
}
