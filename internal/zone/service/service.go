// Package service implements geofence zone management and membership checks.
// Admin gating happens in middleware, not here.
package service

import (
	"context"
	"errors"
	"log/slog"

	"geoattend/internal/geo"
	"geoattend/internal/zone/models"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
	"geoattend/pkg/platform/sentinel"
	"geoattend/pkg/requestcontext"
)

// Store is what the service needs from zone persistence.
type Store interface {
	Create(ctx context.Context, zone *models.GeoZone) error
	Update(ctx context.Context, zone *models.GeoZone) error
	Delete(ctx context.Context, zoneID id.ZoneID) error
	SetActive(ctx context.Context, zoneID id.ZoneID, active bool) error
	FindByID(ctx context.Context, zoneID id.ZoneID) (*models.GeoZone, error)
	ListActive(ctx context.Context) ([]*models.GeoZone, error)
	List(ctx context.Context) ([]*models.GeoZone, error)
}

// Service owns zone lifecycle and the geofence membership rule.
type Service struct {
	zones  Store
	logger *slog.Logger
}

func New(zones Store, logger *slog.Logger) *Service {
	return &Service{zones: zones, logger: logger}
}

// CreateZoneInput carries validated-at-the-edge zone fields.
type CreateZoneInput struct {
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
}

func (s *Service) CreateZone(ctx context.Context, in CreateZoneInput) (*models.GeoZone, error) {
	zone, err := models.NewGeoZone(id.NewZoneID(), in.Name, in.Latitude, in.Longitude, in.RadiusMeters, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create zone")
	}
	return zone, nil
}

func (s *Service) UpdateZone(ctx context.Context, zoneID id.ZoneID, in CreateZoneInput) (*models.GeoZone, error) {
	existing, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		return nil, wrapZoneErr(err)
	}
	updated, err := models.NewGeoZone(zoneID, in.Name, in.Latitude, in.Longitude, in.RadiusMeters, existing.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated.Active = existing.Active
	if err := s.zones.Update(ctx, updated); err != nil {
		return nil, wrapZoneErr(err)
	}
	return updated, nil
}

// DeleteZone removes a zone permanently. Edits and deletes keep no history.
func (s *Service) DeleteZone(ctx context.Context, zoneID id.ZoneID) error {
	if err := s.zones.Delete(ctx, zoneID); err != nil {
		return wrapZoneErr(err)
	}
	return nil
}

// ToggleZone flips a zone's active flag and returns the new state.
func (s *Service) ToggleZone(ctx context.Context, zoneID id.ZoneID) (*models.GeoZone, error) {
	zone, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		return nil, wrapZoneErr(err)
	}
	zone.Active = !zone.Active
	if err := s.zones.SetActive(ctx, zoneID, zone.Active); err != nil {
		return nil, wrapZoneErr(err)
	}
	return zone, nil
}

func (s *Service) ListZones(ctx context.Context) ([]*models.GeoZone, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	return zones, nil
}

func (s *Service) ListActiveZones(ctx context.Context) ([]*models.GeoZone, error) {
	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	return zones, nil
}

// WithinAnyZone reports whether the point lies inside at least one active
// zone. Short-circuits on the first match; which zone matches is not part of
// the contract, only membership is.
func (s *Service) WithinAnyZone(ctx context.Context, lat, lon float64) (bool, error) {
	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "geofence lookup failed")
	}
	for _, zone := range zones {
		if zone.Contains(geo.Haversine(lat, lon, zone.Latitude, zone.Longitude)) {
			return true, nil
		}
	}
	return false, nil
}

func wrapZoneErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "zone not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "zone store failure")
}
