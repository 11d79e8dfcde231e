package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const (
	// SessionKeyPrefix is the prefix for session hashes
	SessionKeyPrefix = "session:"

	fieldLoginMethod   = "loginMethod"
	fieldWalletAddress = "walletAddress"
	fieldCreatedAt     = "createdAt"
	fieldExpiresAt     = "expiresAt"
)

// SessionStore keeps sessions as Redis hashes that expire with the session
type SessionStore struct {
	client *redis.Client
	logger *logger.Logger
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a new Redis-backed session store
func NewSessionStore(client *redis.Client, log *logger.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		logger: log.WithField("component", "session_store"),
	}
}

func sessionKey(id string) string {
	return SessionKeyPrefix + id
}

// Load reads a session hash. Missing fields are left empty for the caller to judge.
func (s *SessionStore) Load(ctx context.Context, id string) (*session.Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		s.logger.Error("store error", "operation", "load", "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, session.ErrNoSession
	}

	sess := &session.Session{
		ID:            id,
		LoginMethod:   session.Method(fields[fieldLoginMethod]),
		WalletAddress: fields[fieldWalletAddress],
	}
	if t, err := time.Parse(time.RFC3339, fields[fieldCreatedAt]); err == nil {
		sess.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, fields[fieldExpiresAt]); err == nil {
		sess.ExpiresAt = t
	}
	return sess, nil
}

// Save writes both session fields and the expiry in one transaction
func (s *SessionStore) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	key := sessionKey(sess.ID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldLoginMethod, string(sess.LoginMethod),
			fieldWalletAddress, sess.WalletAddress,
			fieldCreatedAt, sess.CreatedAt.UTC().Format(time.RFC3339),
			fieldExpiresAt, sess.ExpiresAt.UTC().Format(time.RFC3339),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		s.logger.Error("store error", "operation", "save", "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear deletes the whole hash so both fields disappear together
func (s *SessionStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		s.logger.Error("store error", "operation", "clear", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
