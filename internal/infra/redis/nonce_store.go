package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// ChallengeKeyPrefix is the prefix for outstanding login challenges
const ChallengeKeyPrefix = "challenge:"

// NonceStore keeps login challenges with a TTL. Take uses GETDEL so a challenge can
// be consumed only once even with concurrent logins.
type NonceStore struct {
	client *redis.Client
	logger *logger.Logger
}

var _ session.NonceStore = (*NonceStore)(nil)

// NewNonceStore creates a new Redis-backed challenge store
func NewNonceStore(client *redis.Client, log *logger.Logger) *NonceStore {
	return &NonceStore{
		client: client,
		logger: log.WithField("component", "nonce_store"),
	}
}

func (s *NonceStore) Put(ctx context.Context, key, message string, ttl time.Duration) error {
	if err := s.client.Set(ctx, ChallengeKeyPrefix+key, message, ttl).Err(); err != nil {
		s.logger.Error("store error", "operation", "put", "key", key, "error", err)
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

func (s *NonceStore) Take(ctx context.Context, key string) (string, error) {
	msg, err := s.client.GetDel(ctx, ChallengeKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrChallengeNotFound
	}
	if err != nil {
		s.logger.Error("store error", "operation", "take", "key", key, "error", err)
		return "", fmt.Errorf("failed to take challenge: %w", err)
	}
	return msg, nil
}
