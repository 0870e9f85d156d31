// Package store persists user accounts and revoked auth tokens.
package store

import (
	"context"
	"time"

	"geoattend/internal/identity/models"
	id "geoattend/pkg/domain"
)

// Store is the persistence contract for users.
type Store interface {
	// CreateIfUsernameAvailable inserts the user unless the username is
	// taken (case-insensitive); returns sentinel.ErrAlreadyUsed on conflict.
	CreateIfUsernameAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, userID id.UserID, active bool, now time.Time) error
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context) ([]*models.User, error)
}

// RevocationStore remembers revoked token IDs until their natural expiry.
// Backed by Redis in production so revocation survives restarts and is
// shared across instances; in-memory for development.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
