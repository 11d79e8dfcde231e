// Package memory holds process-local stores used when Redis is not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kislikjeka/walletscope/internal/platform/session"
)

type sessionEntry struct {
	session   session.Session
	expiresAt time.Time
}

// SessionStore is a mutex-guarded session.Store
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates an empty in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, session.ErrNoSession
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, session.ErrNoSession
	}

	sess := entry.session
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sessionEntry{
		session:   *sess,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

type nonceEntry struct {
	message   string
	expiresAt time.Time
}

// NonceStore is a mutex-guarded session.NonceStore
type NonceStore struct {
	mu     sync.Mutex
	nonces map[string]nonceEntry
	now    func() time.Time
}

var _ session.NonceStore = (*NonceStore)(nil)

// NewNonceStore creates an empty in-memory challenge store
func NewNonceStore() *NonceStore {
	return &NonceStore{
		nonces: make(map[string]nonceEntry),
		now:    time.Now,
	}
}

func (s *NonceStore) Put(ctx context.Context, key, message string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.nonces[key] = nonceEntry{message: message, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *NonceStore) Take(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.nonces[key]
	delete(s.nonces, key)
	if !ok || s.now().After(entry.expiresAt) {
		return "", session.ErrChallengeNotFound
	}
	return entry.message, nil
}

// sweep drops expired challenges so abandoned logins do not accumulate. Caller holds mu.
func (s *NonceStore) sweep() {
	now := s.now()
	for key, entry := range s.nonces {
		if now.After(entry.expiresAt) {
			delete(s.nonces, key)
		}
	}
}
