// Package database opens the PostgreSQL connection and bootstraps the
// schema. Storage backends are selected once at startup: a DATABASE_URL
// selects PostgreSQL, otherwise the in-memory stores serve development and
// tests. No code outside main branches on the backend.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// schema holds the DDL for all tables. The UNIQUE(user_id, date) constraint
// on attendance is load-bearing: concurrent duplicate check-ins are rejected
// here even if two engine instances race past their duplicate checks.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		full_name VARCHAR(100) NOT NULL,
		email VARCHAR(100),
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS geo_zones (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		radius_m INTEGER NOT NULL DEFAULT 100,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		time_in TIMESTAMPTZ,
		time_out TIMESTAMPTZ,
		lat_in DOUBLE PRECISION,
		lon_in DOUBLE PRECISION,
		lat_out DOUBLE PRECISION,
		lon_out DOUBLE PRECISION,
		photo_in VARCHAR(255),
		photo_out VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_log (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		action VARCHAR(20) NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		success BOOLEAN NOT NULL,
		reason VARCHAR(255),
		device VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS face_profiles (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		encoding JSONB NOT NULL,
		photo_path VARCHAR(255),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_user_date ON attendance(user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_log_user ON attendance_log(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_face_profiles_user_active ON face_profiles(user_id, active)`,
	`CREATE INDEX IF NOT EXISTS idx_geo_zones_active ON geo_zones(active)`,
}

// Bootstrap creates tables and indexes if they do not exist.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
