package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi/middleware"
)

// AccountReaderInterface defines the interface for reading the login log
type AccountReaderInterface interface {
	GetAccount(ctx context.Context, address string) (*session.Account, error)
}

// AccountHandler serves the login history of the session wallet
type AccountHandler struct {
	accounts AccountReaderInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountReaderInterface) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// GetAccount handles GET /account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w, "no active session")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), sess.WalletAddress)
	if err != nil {
		if errors.Is(err, session.ErrAccountNotFound) {
			respondWithError(w, http.StatusNotFound, "account not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	respondWithJSON(w, http.StatusOK, account)
}
