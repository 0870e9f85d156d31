// Package models defines the geofence zone entity.
package models

import (
	"strings"
	"time"

	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
)

// GeoZone is a named circular region. A request satisfies geofencing when it
// falls within the radius of any active zone.
type GeoZone struct {
	ID           id.ZoneID `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_m"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewGeoZone validates and constructs a zone. Zones start active.
func NewGeoZone(zoneID id.ZoneID, name string, lat, lon float64, radiusMeters int, now time.Time) (*GeoZone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "zone name is required")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "zone center is out of range")
	}
	if radiusMeters <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "zone radius must be positive")
	}
	return &GeoZone{
		ID:           zoneID,
		Name:         name,
		Latitude:     lat,
		Longitude:    lon,
		RadiusMeters: radiusMeters,
		Active:       true,
		CreatedAt:    now,
	}, nil
}

// Contains reports whether the given distance in meters falls inside the
// zone's radius. A NaN distance is never inside.
func (z *GeoZone) Contains(distanceMeters float64) bool {
	return distanceMeters <= float64(z.RadiusMeters)
}
