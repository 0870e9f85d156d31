package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"geoattend/internal/face/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

// Postgres persists face profiles in the face_profiles table. Encodings are
// stored as JSONB arrays.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Create deactivates the prior active profile and inserts the new one in a
// single transaction, so there is never a moment with two active profiles.
func (s *Postgres) Create(ctx context.Context, profile *models.FaceProfile) error {
	encoding, err := json.Marshal(profile.Encoding)
	if err != nil {
		return fmt.Errorf("marshal encoding: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE face_profiles SET active = FALSE WHERE user_id = $1 AND active = TRUE`,
		uuid.UUID(profile.UserID))
	if err != nil {
		return fmt.Errorf("deactivate prior profile: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO face_profiles (id, user_id, encoding, photo_path, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(profile.ID), uuid.UUID(profile.UserID), encoding,
		profile.PhotoPath, profile.Active, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert face profile: %w", err)
	}
	return tx.Commit()
}

func (s *Postgres) FindActiveByUser(ctx context.Context, userID id.UserID) (*models.FaceProfile, error) {
	query := `
		SELECT id, user_id, encoding, photo_path, active, created_at
		FROM face_profiles
		WHERE user_id = $1 AND active = TRUE
	`
	var (
		profile   models.FaceProfile
		profileID uuid.UUID
		ownerID   uuid.UUID
		encoding  []byte
		photoPath sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&profileID, &ownerID, &encoding, &photoPath, &profile.Active, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find face profile: %w", err)
	}
	if err := json.Unmarshal(encoding, &profile.Encoding); err != nil {
		return nil, fmt.Errorf("unmarshal encoding: %w", err)
	}
	profile.ID = id.ProfileID(profileID)
	profile.UserID = id.UserID(ownerID)
	profile.PhotoPath = photoPath.String
	return &profile, nil
}

func (s *Postgres) DeactivateByUser(ctx context.Context, userID id.UserID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE face_profiles SET active = FALSE WHERE user_id = $1 AND active = TRUE`,
		uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("deactivate face profile: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteByUser(ctx context.Context, userID id.UserID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`DELETE FROM face_profiles WHERE user_id = $1 RETURNING photo_path`,
		uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("delete face profiles: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path sql.NullString
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan photo path: %w", err)
		}
		if path.Valid && path.String != "" {
			paths = append(paths, path.String)
		}
	}
	return paths, rows.Err()
}
