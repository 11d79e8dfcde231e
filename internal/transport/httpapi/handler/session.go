package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/platform/wallet"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi/middleware"
)

// SessionServiceInterface defines the interface for session operations
type SessionServiceInterface interface {
	Challenge(ctx context.Context, address string) (*session.Challenge, error)
	Login(ctx context.Context, method session.Method, creds session.Credentials) (*session.LoginResult, error)
	Logout(ctx context.Context, sess *session.Session) error
	Methods() []session.Method
}

// SessionHandler handles login, session lookup and logout
type SessionHandler struct {
	sessionService SessionServiceInterface
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService SessionServiceInterface) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ChallengeRequest represents the challenge request
type ChallengeRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// ChallengeResponse represents the challenge response
type ChallengeResponse struct {
	Message   string    `json:"message"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	LoginMethod   string `json:"loginMethod"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Token         string `json:"token,omitempty"`
	Signature     string `json:"signature,omitempty"`
	Nonce         string `json:"nonce,omitempty"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

// MethodsResponse lists the login methods the browser may offer
type MethodsResponse struct {
	Methods []session.Method `json:"methods"`
}

// GetMethods handles GET /session/methods
func (h *SessionHandler) GetMethods(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, MethodsResponse{Methods: h.sessionService.Methods()})
}

// CreateChallenge handles POST /session/challenge
func (h *SessionHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.sessionService.Challenge(r.Context(), req.WalletAddress)
	if err != nil {
		if status, msg, ok := addressError(err); ok {
			respondWithError(w, status, msg)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to create challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, ChallengeResponse{Message: ch.Message, Nonce: ch.Nonce, ExpiresAt: ch.ExpiresAt})
}

// Login handles POST /session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := session.ParseMethod(req.LoginMethod)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "unsupported login method")
		return
	}

	res, err := h.sessionService.Login(r.Context(), method, session.Credentials{
		WalletAddress: req.WalletAddress,
		Token:         req.Token,
		Signature:     req.Signature,
		Nonce:         req.Nonce,
	})
	if err != nil {
		if status, msg, ok := addressError(err); ok {
			respondWithError(w, status, msg)
			return
		}
		switch {
		case errors.Is(err, session.ErrUnsupportedMethod):
			respondWithError(w, http.StatusBadRequest, "unsupported login method")
		case errors.Is(err, session.ErrMissingCredentials):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, session.ErrProviderNotConfigured):
			respondWithError(w, http.StatusServiceUnavailable, "login method is not available")
		case errors.Is(err, session.ErrChallengeNotFound):
			respondWithError(w, http.StatusUnauthorized, "login challenge not found or expired")
		case errors.Is(err, wallet.ErrInvalidSignature), errors.Is(err, wallet.ErrSignerMismatch):
			respondWithError(w, http.StatusUnauthorized, "invalid wallet signature")
		case errors.Is(err, session.ErrInvalidCredentials),
			errors.Is(err, session.ErrNoLinkedWallet),
			errors.Is(err, session.ErrWalletNotLinked):
			respondWithError(w, http.StatusUnauthorized, "authentication failed")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{Token: res.Token, Session: res.Session})
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w, "no active session")
		return
	}
	respondWithJSON(w, http.StatusOK, sess)
}

// Logout handles DELETE /session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w, "no active session")
		return
	}

	if err := h.sessionService.Logout(r.Context(), sess); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// addressError maps wallet address validation errors to a response
func addressError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, wallet.ErrMissingAddress):
		return http.StatusBadRequest, "wallet address is required", true
	case errors.Is(err, wallet.ErrInvalidAddress):
		return http.StatusBadRequest, "invalid EVM address format", true
	case errors.Is(err, wallet.ErrInvalidChecksum):
		return http.StatusBadRequest, "invalid EVM address checksum", true
	}
	return 0, "", false
}
