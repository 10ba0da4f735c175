package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	code         string
	attemptsLeft int
	expiresAt    time.Time
}

// MemoryStore mirrors RedisStore's semantics under a mutex. Used in
// development and tests; a restart loses pending verifications.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Create(_ context.Context, code string, maxAttempts int, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = &memoryEntry{
		code:         code,
		attemptsLeft: maxAttempts,
		expiresAt:    time.Now().Add(ttl),
	}
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Verify(_ context.Context, authenticationID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[authenticationID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, authenticationID)
		return ErrNotFound
	}
	if entry.attemptsLeft <= 0 {
		delete(s.entries, authenticationID)
		return ErrTooManyAttempts
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) == 1 {
		delete(s.entries, authenticationID)
		return nil
	}
	entry.attemptsLeft--
	return ErrInvalidCode
}
