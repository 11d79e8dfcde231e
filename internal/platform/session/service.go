package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletscope/internal/platform/wallet"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const (
	DefaultSessionTTL   = 24 * time.Hour
	DefaultChallengeTTL = 5 * time.Minute
)

// Config holds session lifetimes
type Config struct {
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
}

// LoginResult is returned by a successful Login
type LoginResult struct {
	Token   string
	Session *Session
}

// Service owns the session lifecycle: challenge, login, lookup and logout.
type Service struct {
	store    Store
	nonces   NonceStore
	registry *Registry
	tokens   *TokenService
	accounts AccountRecorder
	cfg      Config
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a session service. accounts may be nil.
func NewService(store Store, nonces NonceStore, registry *Registry, tokens *TokenService, accounts AccountRecorder, cfg Config, log *logger.Logger) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = DefaultChallengeTTL
	}
	return &Service{
		store:    store,
		nonces:   nonces,
		registry: registry,
		tokens:   tokens,
		accounts: accounts,
		cfg:      cfg,
		logger:   log.WithComponent("session"),
		now:      time.Now,
	}
}

// Methods lists the login methods a browser can use with this service
func (s *Service) Methods() []Method {
	return s.registry.Available()
}

// Challenge issues a one-time message for address to sign. Each challenge is stored
// under its own nonce, so issuing one never invalidates another still pending.
func (s *Service) Challenge(ctx context.Context, address string) (*Challenge, error) {
	checksummed, err := wallet.ValidateAddress(address)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ch := &Challenge{
		WalletAddress: checksummed,
		Nonce:         uuid.NewString(),
		ExpiresAt:     now.Add(s.cfg.ChallengeTTL),
	}
	ch.Message = ChallengeMessage(checksummed, ch.Nonce, now)

	if err := s.nonces.Put(ctx, ChallengeKey(checksummed, ch.Nonce), ch.Message, s.cfg.ChallengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.logger.WithContext(ctx).Debug("challenge issued", "address", checksummed)
	return ch, nil
}

// ChallengeKey is the NonceStore key of the challenge nonce issued to address
func ChallengeKey(address, nonce string) string {
	return wallet.LowerAddress(address) + ":" + nonce
}

// ChallengeMessage renders the text a wallet signs to log in
func ChallengeMessage(address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf("Sign in to walletscope with your Ethereum account:\n%s\n\nNonce: %s\nIssued At: %s",
		address, nonce, issuedAt.UTC().Format(time.RFC3339))
}

// Login authenticates with the strategy for method and stores a new session.
func (s *Service) Login(ctx context.Context, method Method, creds Credentials) (*LoginResult, error) {
	auth, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}

	address, err := auth.Connect(ctx, creds)
	if err != nil {
		s.logger.WithContext(ctx).Warn("login failed", "method", string(method), "error", err)
		return nil, err
	}

	now := s.now().UTC()
	sess := &Session{
		ID:            uuid.NewString(),
		LoginMethod:   method,
		WalletAddress: address,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.SessionTTL),
	}

	if err := s.store.Save(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.tokens.Issue(sess)
	if err != nil {
		_ = s.store.Clear(ctx, sess.ID)
		return nil, err
	}

	if s.accounts != nil {
		if err := s.accounts.RecordLogin(ctx, address, method, now); err != nil {
			s.logger.WithContext(ctx).Error("failed to record login", "address", address, "error", err)
		}
	}

	s.logger.WithContext(ctx).Info("logged in", "method", string(method), "address", address)
	return &LoginResult{Token: token, Session: sess}, nil
}

// Current resolves a bearer token to its stored session. A stored session missing
// either field is cleared and reported as ErrNoSession.
func (s *Service) Current(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	sess, err := s.store.Load(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !sess.Valid() {
		s.logger.WithContext(ctx).Warn("clearing incomplete session", "session_id", claims.SessionID)
		if err := s.store.Clear(ctx, claims.SessionID); err != nil {
			s.logger.WithContext(ctx).Error("failed to clear session", "error", err)
		}
		return nil, ErrNoSession
	}

	sess.ID = claims.SessionID
	return sess, nil
}

// Logout disconnects the strategy and clears the stored session. The session is
// cleared even when the disconnect fails.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrNoSession
	}

	if auth, err := s.registry.Get(sess.LoginMethod); err == nil {
		if err := auth.Disconnect(ctx, sess.WalletAddress); err != nil {
			s.logger.WithContext(ctx).Warn("disconnect failed", "method", string(sess.LoginMethod), "error", err)
		}
	}

	if err := s.store.Clear(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.WithContext(ctx).Info("logged out", "method", string(sess.LoginMethod), "address", sess.WalletAddress)
	return nil
}
