package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"geoattend/internal/face"
	"geoattend/internal/face/models"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
	"geoattend/pkg/platform/sentinel"
)

// Store persists face profiles.
type Store interface {
	Create(ctx context.Context, profile *models.FaceProfile) error
	FindActiveByUser(ctx context.Context, userID id.UserID) (*models.FaceProfile, error)
	DeactivateByUser(ctx context.Context, userID id.UserID) error
}

// PhotoStore keeps enrollment photos on disk.
type PhotoStore interface {
	Save(userID id.UserID, tag string, taken time.Time, data []byte) (string, error)
	Remove(path string) error
}

// Service manages face profile enrollment.
type Service struct {
	store   Store
	photos  PhotoStore
	encoder face.Encoder
	logger  *slog.Logger
}

func New(store Store, photos PhotoStore, encoder face.Encoder, logger *slog.Logger) *Service {
	return &Service{store: store, photos: photos, encoder: encoder, logger: logger}
}

// Enroll extracts an encoding from the photo and stores it as the user's
// active profile, deactivating any prior enrollment. The photo must contain
// exactly one face.
func (s *Service) Enroll(ctx context.Context, userID id.UserID, photo []byte, now time.Time) (*models.FaceProfile, error) {
	encodings, err := s.encoder.Encode(ctx, photo)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "face encoding is unavailable")
	}
	switch len(encodings) {
	case 0:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no face detected in photo")
	case 1:
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "photo must contain exactly one face")
	}

	path, err := s.photos.Save(userID, "enroll", now, photo)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store enrollment photo")
	}

	profile := &models.FaceProfile{
		ID:        id.NewProfileID(),
		UserID:    userID,
		Encoding:  encodings[0],
		PhotoPath: path,
		Active:    true,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, profile); err != nil {
		if removeErr := s.photos.Remove(path); removeErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned enrollment photo",
				slog.String("path", path), slog.Any("error", removeErr))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save face profile")
	}

	s.logger.InfoContext(ctx, "face profile enrolled",
		slog.String("user_id", userID.String()),
		slog.String("profile_id", profile.ID.String()))
	return profile, nil
}

// Unenroll deactivates the user's active profile. Deactivating a user with no
// profile is a no-op.
func (s *Service) Unenroll(ctx context.Context, userID id.UserID) error {
	if err := s.store.DeactivateByUser(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate face profile")
	}
	s.logger.InfoContext(ctx, "face profile deactivated",
		slog.String("user_id", userID.String()))
	return nil
}

// Enrolled reports whether the user currently has an active profile.
func (s *Service) Enrolled(ctx context.Context, userID id.UserID) (bool, error) {
	_, err := s.store.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
