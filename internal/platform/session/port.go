package session

import (
	"context"
	"time"
)

// Store persists sessions by id. Load returns ErrNoSession when nothing is stored;
// a partially stored session is returned as-is so the caller can detect and clear it.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Clear(ctx context.Context, id string) error
}

// NonceStore keeps outstanding login challenges under ChallengeKey. Take removes the
// entry it returns.
type NonceStore interface {
	Put(ctx context.Context, key, message string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
}

// Authenticator is one login strategy
type Authenticator interface {
	Method() Method
	// Connect verifies the credentials and returns the wallet address they prove.
	Connect(ctx context.Context, creds Credentials) (string, error)
	Disconnect(ctx context.Context, address string) error
}

// IdentityVerifier validates a third-party identity token and returns the wallet
// addresses linked to that identity.
type IdentityVerifier interface {
	LinkedWallets(ctx context.Context, token string) ([]string, error)
}

// AccountRecorder keeps a log of wallets that logged in
type AccountRecorder interface {
	RecordLogin(ctx context.Context, address string, method Method, at time.Time) error
}

// AccountReader looks up the login log of one wallet. Missing wallets give ErrAccountNotFound.
type AccountReader interface {
	GetAccount(ctx context.Context, address string) (*Account, error)
}
