// Package service implements user lifecycle and authentication.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"geoattend/internal/identity/models"
	"geoattend/internal/jwt"
	"geoattend/internal/platform/metrics"
	"geoattend/internal/platform/middleware"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
	"geoattend/pkg/platform/sentinel"
	"geoattend/pkg/requestcontext"
)

// Store is what the service needs from user persistence.
type Store interface {
	CreateIfUsernameAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, userID id.UserID, active bool, now time.Time) error
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context) ([]*models.User, error)
}

// RevocationStore remembers revoked token IDs.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AttendancePurger removes a user's ledger and log rows on account deletion.
type AttendancePurger interface {
	DeleteByUser(ctx context.Context, userID id.UserID) error
}

// FacePurger removes a user's face profiles, returning the photo paths that
// backed them so the service can clean up files.
type FacePurger interface {
	DeleteByUser(ctx context.Context, userID id.UserID) ([]string, error)
}

// PhotoRemover deletes stored photo files.
type PhotoRemover interface {
	Remove(path string) error
}

// TokenIssuer signs and validates access tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role string, expiresIn time.Duration) (string, error)
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// Service orchestrates user lifecycle: registration, authentication, role
// and status management, and deletion with its cascades.
type Service struct {
	users       Store
	revocations RevocationStore
	tokens      TokenIssuer
	tokenTTL    time.Duration
	attendance  AttendancePurger
	faces       FacePurger
	photos      PhotoRemover
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(
	users Store,
	revocations RevocationStore,
	tokens TokenIssuer,
	tokenTTL time.Duration,
	attendance AttendancePurger,
	faces FacePurger,
	photos PhotoRemover,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:       users,
		revocations: revocations,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		attendance:  attendance,
		faces:       faces,
		photos:      photos,
		metrics:     m,
		logger:      logger,
	}
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
	Role     models.Role
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user, err := models.NewUser(id.NewUserID(), in.Username, in.FullName, in.Email, string(hash), in.Role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateIfUsernameAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	s.metrics.IncrementUsersCreated()
	return user, nil
}

// Authenticate verifies credentials and issues an access token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}
	if !user.Active {
		return "", nil, dErrors.New(dErrors.CodeForbidden, "account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}

	token, err := s.tokens.GenerateAccessToken(uuid.UUID(user.ID), string(user.Role), s.tokenTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return token, user, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		// An invalid or expired token needs no revocation.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to revoke token")
	}
	return nil
}

// ValidateToken satisfies middleware.TokenValidator: signature check plus
// revocation lookup.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "revocation check failed")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.TokenClaims{UserID: userID, Role: claims.Role}, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// ToggleActive flips a user's active flag and returns the new state.
func (s *Service) ToggleActive(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	user.Active = !user.Active
	if err := s.users.SetActive(ctx, userID, user.Active, requestcontext.Now(ctx)); err != nil {
		return nil, wrapUserErr(err)
	}
	return user, nil
}

// DeleteUser removes the account and cascades to attendance records, log
// entries, and face profiles. Photo file removal is best-effort: a file that
// cannot be deleted is logged and skipped, never surfaced to the caller.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return wrapUserErr(err)
	}

	photoPaths, err := s.faces.DeleteByUser(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete face profiles")
	}
	if err := s.attendance.DeleteByUser(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete attendance history")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return wrapUserErr(err)
	}

	for _, path := range photoPaths {
		if path == "" {
			continue
		}
		if err := s.photos.Remove(path); err != nil {
			s.logger.WarnContext(ctx, "failed to remove enrollment photo",
				"path", path,
				"error", err,
			)
		}
	}
	return nil
}

func wrapUserErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
}
