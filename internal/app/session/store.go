package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession means no token is stored for the session id
var ErrNoSession = errors.New("session not found")

// Store persists the access token behind a browser session id
type Store interface {
	Save(ctx context.Context, sessionID, token string, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// RevocationList records signed-out token ids until they would have expired
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RevocableStore is a Store that also keeps the revocation list
type RevocableStore interface {
	Store
	RevocationList
}

var (
	_ RevocableStore = (*MemoryStore)(nil)
	_ RevocableStore = (*RedisStore)(nil)
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps sessions and revocations in process memory
type MemoryStore struct {
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
	revoked  map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
		revoked:  make(map[string]time.Time),
	}
}

func (s *MemoryStore) Save(_ context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memoryEntry{value: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrNoSession
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, sessionID)
		return "", ErrNoSession
	}
	return e.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	s.revoked[tokenID] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
