// Package store persists enrolled face profiles.
package store

import (
	"context"

	"geoattend/internal/face/models"
	id "geoattend/pkg/domain"
)

// Store is the persistence contract for face profiles. Profiles are only
// ever appended and soft-deactivated, never edited; DeleteByUser exists
// solely for the account deletion cascade.
type Store interface {
	// Create inserts the profile as the user's active one, deactivating any
	// previously active profile in the same operation.
	Create(ctx context.Context, profile *models.FaceProfile) error
	// FindActiveByUser returns sentinel.ErrNotFound when the user has no
	// active profile.
	FindActiveByUser(ctx context.Context, userID id.UserID) (*models.FaceProfile, error)
	// DeactivateByUser soft-deactivates the user's active profile, if any.
	DeactivateByUser(ctx context.Context, userID id.UserID) error
	// DeleteByUser removes all of the user's profiles and returns the photo
	// paths that backed them.
	DeleteByUser(ctx context.Context, userID id.UserID) ([]string, error)
}
