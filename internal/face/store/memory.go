package store

import (
	"context"
	"sync"

	"geoattend/internal/face/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded face profile store for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	profiles []*models.FaceProfile
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(ctx context.Context, profile *models.FaceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UserID == profile.UserID {
			p.Active = false
		}
	}
	cp := *profile
	cp.Encoding = append([]float64(nil), profile.Encoding...)
	s.profiles = append(s.profiles, &cp)
	return nil
}

func (s *InMemory) FindActiveByUser(ctx context.Context, userID id.UserID) (*models.FaceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.UserID == userID && p.Active {
			cp := *p
			cp.Encoding = append([]float64(nil), p.Encoding...)
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) DeactivateByUser(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UserID == userID && p.Active {
			p.Active = false
		}
	}
	return nil
}

func (s *InMemory) DeleteByUser(ctx context.Context, userID id.UserID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		kept  []*models.FaceProfile
		paths []string
	)
	for _, p := range s.profiles {
		if p.UserID == userID {
			if p.PhotoPath != "" {
				paths = append(paths, p.PhotoPath)
			}
			continue
		}
		kept = append(kept, p)
	}
	s.profiles = kept
	return paths, nil
}

// CountByUser returns how many profiles (active and inactive) the user has.
// Test helper for the single-active-profile invariant.
func (s *InMemory) CountByUser(userID id.UserID) (total, active int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			total++
			if p.Active {
				active++
			}
		}
	}
	return total, active
}
