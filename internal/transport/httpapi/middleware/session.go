package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// ContextKey is the type for context keys
type ContextKey string

// SessionKey is the context key for the authenticated session
const SessionKey ContextKey = "session"

// LoginRedirect is where clients without a session are sent
const LoginRedirect = "/"

// SessionResolver resolves a bearer token to its session
type SessionResolver interface {
	Current(ctx context.Context, token string) (*session.Session, error)
}

// UnauthorizedResponse is the body of every 401 from a protected route
type UnauthorizedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// RespondUnauthorized writes a 401 that tells the client to go back to login
func RespondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(UnauthorizedResponse{Error: message, Redirect: LoginRedirect})
}

// RequireSession creates a middleware that resolves the bearer token to a stored session
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				RespondUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				RespondUnauthorized(w, "invalid authorization header format")
				return
			}

			sess, err := resolver.Current(r.Context(), parts[1])
			if err != nil {
				RespondUnauthorized(w, "no active session")
				return
			}

			annotateWallet(r.Context(), sess.WalletAddress)

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			ctx = context.WithValue(ctx, logger.SessionIDKey, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext extracts the session from the request context
func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*session.Session)
	return sess, ok && sess != nil
}
