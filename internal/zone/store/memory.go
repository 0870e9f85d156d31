package store

import (
	"context"
	"sync"

	"geoattend/internal/zone/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded zone store for development and tests.
type InMemory struct {
	mu    sync.RWMutex
	zones map[id.ZoneID]*models.GeoZone
	order []id.ZoneID
}

func NewInMemory() *InMemory {
	return &InMemory{zones: make(map[id.ZoneID]*models.GeoZone)}
}

func (s *InMemory) Create(ctx context.Context, zone *models.GeoZone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.zones[zone.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *zone
	s.zones[zone.ID] = &cp
	s.order = append(s.order, zone.ID)
	return nil
}

func (s *InMemory) Update(ctx context.Context, zone *models.GeoZone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.zones[zone.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *zone
	s.zones[zone.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, zoneID id.ZoneID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.zones[zoneID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.zones, zoneID)
	for i, zid := range s.order {
		if zid == zoneID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemory) SetActive(ctx context.Context, zoneID id.ZoneID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	zone, exists := s.zones[zoneID]
	if !exists {
		return sentinel.ErrNotFound
	}
	zone.Active = active
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, zoneID id.ZoneID) (*models.GeoZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zone, exists := s.zones[zoneID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *zone
	return &cp, nil
}

func (s *InMemory) ListActive(ctx context.Context) ([]*models.GeoZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.GeoZone
	for _, zid := range s.order {
		if zone := s.zones[zid]; zone != nil && zone.Active {
			cp := *zone
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) List(ctx context.Context) ([]*models.GeoZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.GeoZone
	for _, zid := range s.order {
		if zone := s.zones[zid]; zone != nil {
			cp := *zone
			out = append(out, &cp)
		}
	}
	return out, nil
}
