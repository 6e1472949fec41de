package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process RoleStore/IdempotencyStore for dev and tests,
// safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	roles map[string]memoryEntry
	marks map[string]time.Time
	now   func() time.Time
}

type memoryEntry struct {
	role string
	exp  time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		roles: make(map[string]memoryEntry),
		marks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// GetRole returns the cached role flag for a user.
func (s *MemoryStore) GetRole(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.roles[userID]
	if !ok || s.now().After(entry.exp) {
		delete(s.roles, userID)
		return "", ErrMiss
	}
	return entry.role, nil
}

// SetRole caches the role flag.
func (s *MemoryStore) SetRole(ctx context.Context, userID, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = memoryEntry{role: role, exp: s.now().Add(DefaultRoleTTL)}
	return nil
}

// ClearRole drops the cached role flag.
func (s *MemoryStore) ClearRole(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, userID)
	return nil
}

// MarkOnce marks a submission key; only the first caller within the TTL wins.
func (s *MemoryStore) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.marks[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.marks[key] = now.Add(ttl)
	return true, nil
}

var (
	_ RoleStore        = (*MemoryStore)(nil)
	_ IdempotencyStore = (*MemoryStore)(nil)
)
