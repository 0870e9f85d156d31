// Package store persists geofence zones. Implementations: in-memory for
// development and tests, PostgreSQL for production. The zone service is the
// only consumer.
package store

import (
	"context"

	"geoattend/internal/zone/models"
	id "geoattend/pkg/domain"
)

// Store is the persistence contract for geofence zones.
//
// The read path (ListActive) must never block behind writers longer than a
// mutex acquisition: geofence checks run on every attendance request.
type Store interface {
	Create(ctx context.Context, zone *models.GeoZone) error
	Update(ctx context.Context, zone *models.GeoZone) error
	Delete(ctx context.Context, zoneID id.ZoneID) error
	SetActive(ctx context.Context, zoneID id.ZoneID, active bool) error
	FindByID(ctx context.Context, zoneID id.ZoneID) (*models.GeoZone, error)
	// ListActive returns active zones in storage order. The order is not
	// guaranteed to be stable across calls; membership results must not
	// depend on it.
	ListActive(ctx context.Context) ([]*models.GeoZone, error)
	List(ctx context.Context) ([]*models.GeoZone, error)
}
