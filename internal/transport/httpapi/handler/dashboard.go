package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/kislikjeka/walletscope/internal/module/dashboard"
	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/internal/platform/wallet"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi/middleware"
)

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	Load(ctx context.Context, sess *session.Session) (*dashboard.Dashboard, error)
	Transfers(ctx context.Context, address string, policy transfer.FallbackPolicy) *dashboard.TransfersSection
}

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService DashboardServiceInterface
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w, "no active session")
		return
	}

	dash, err := h.dashboardService.Load(r.Context(), sess)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoSession) {
			middleware.RespondUnauthorized(w, "no active session")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	respondWithJSON(w, http.StatusOK, dash)
}

// GetTransfers handles GET /transfers
// Lists the transfers of ?address=, defaulting to the session wallet. Failures degrade
// to an empty list.
func (h *DashboardHandler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w, "no active session")
		return
	}

	address := sess.WalletAddress
	if q := r.URL.Query().Get("address"); q != "" {
		normalized, err := wallet.ValidateAddress(q)
		if err != nil {
			status, msg, _ := addressError(err)
			respondWithError(w, status, msg)
			return
		}
		address = normalized
	}

	respondWithJSON(w, http.StatusOK, h.dashboardService.Transfers(r.Context(), address, transfer.FallbackEmpty))
}
