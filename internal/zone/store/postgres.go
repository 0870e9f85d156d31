package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"geoattend/internal/zone/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

// Postgres persists zones in the geo_zones table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, zone *models.GeoZone) error {
	query := `
		INSERT INTO geo_zones (id, name, latitude, longitude, radius_m, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(zone.ID), zone.Name, zone.Latitude, zone.Longitude,
		zone.RadiusMeters, zone.Active, zone.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, zone *models.GeoZone) error {
	query := `
		UPDATE geo_zones
		SET name = $2, latitude = $3, longitude = $4, radius_m = $5, active = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(zone.ID), zone.Name, zone.Latitude, zone.Longitude,
		zone.RadiusMeters, zone.Active,
	)
	if err != nil {
		return fmt.Errorf("update zone: %w", err)
	}
	return requireOneRow(res, "update zone")
}

func (s *Postgres) Delete(ctx context.Context, zoneID id.ZoneID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geo_zones WHERE id = $1`, uuid.UUID(zoneID))
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	return requireOneRow(res, "delete zone")
}

func (s *Postgres) SetActive(ctx context.Context, zoneID id.ZoneID, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE geo_zones SET active = $2 WHERE id = $1`, uuid.UUID(zoneID), active)
	if err != nil {
		return fmt.Errorf("toggle zone: %w", err)
	}
	return requireOneRow(res, "toggle zone")
}

func (s *Postgres) FindByID(ctx context.Context, zoneID id.ZoneID) (*models.GeoZone, error) {
	query := `
		SELECT id, name, latitude, longitude, radius_m, active, created_at
		FROM geo_zones
		WHERE id = $1
	`
	zone, err := scanZone(s.db.QueryRowContext(ctx, query, uuid.UUID(zoneID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find zone: %w", err)
	}
	return zone, nil
}

func (s *Postgres) ListActive(ctx context.Context) ([]*models.GeoZone, error) {
	return s.list(ctx, `
		SELECT id, name, latitude, longitude, radius_m, active, created_at
		FROM geo_zones
		WHERE active = TRUE
	`)
}

func (s *Postgres) List(ctx context.Context) ([]*models.GeoZone, error) {
	return s.list(ctx, `
		SELECT id, name, latitude, longitude, radius_m, active, created_at
		FROM geo_zones
		ORDER BY created_at
	`)
}

func (s *Postgres) list(ctx context.Context, query string) ([]*models.GeoZone, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	var zones []*models.GeoZone
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*models.GeoZone, error) {
	var (
		zone   models.GeoZone
		zoneID uuid.UUID
	)
	err := row.Scan(&zoneID, &zone.Name, &zone.Latitude, &zone.Longitude,
		&zone.RadiusMeters, &zone.Active, &zone.CreatedAt)
	if err != nil {
		return nil, err
	}
	zone.ID = id.ZoneID(zoneID)
	return &zone, nil
}

func requireOneRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
