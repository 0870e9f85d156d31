// Package models defines the user entity and roles.
package models

import (
	"strings"
	"time"

	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
)

// Role determines privilege. Admins administer zones and users and are
// exempt from identity verification during attendance; the geofence check
// applies to every role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	case "":
		return RoleMember, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported role")
	}
}

// User is a registered account. PasswordHash is opaque to everything except
// the identity service.
type User struct {
	ID           id.UserID `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser validates and constructs an active user.
func NewUser(userID id.UserID, username, fullName, email, passwordHash string, role Role, now time.Time) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return &User{
		ID:           userID,
		Username:     username,
		FullName:     fullName,
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
