package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"geoattend/internal/identity/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded user store for development and tests.
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]*models.User)}
}

func (s *InMemory) CreateIfUsernameAvailable(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(user.Username)
	for _, existing := range s.users {
		if strings.ToLower(existing.Username) == lower {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[userID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *InMemory) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lower := strings.ToLower(username)
	for _, user := range s.users {
		if strings.ToLower(user.Username) == lower {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemory) SetActive(ctx context.Context, userID id.UserID, active bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[userID]
	if !exists {
		return sentinel.ErrNotFound
	}
	user.Active = active
	user.UpdatedAt = now
	return nil
}

func (s *InMemory) Delete(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[userID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *InMemory) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		cp := *user
		out = append(out, &cp)
	}
	return out, nil
}

// InMemoryRevocations is a development stand-in for the Redis revocation
// store. Entries are pruned lazily on lookup.
type InMemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewInMemoryRevocations() *InMemoryRevocations {
	return &InMemoryRevocations{revoked: make(map[string]time.Time)}
}

func (s *InMemoryRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (s *InMemoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, exists := s.revoked[tokenID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
