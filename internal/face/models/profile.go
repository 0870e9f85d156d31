// Package models defines the enrolled face profile entity.
package models

import (
	"time"

	id "geoattend/pkg/domain"
)

// EncodingLength is the dimensionality of face feature vectors. Both the
// enrollment path and the verifier reject encodings of any other length.
const EncodingLength = 128

// FaceProfile is a user's enrolled biometric template. At most one profile
// per user is active at any time; enrolling a new one soft-deactivates the
// prior one, preserving history.
type FaceProfile struct {
	ID        id.ProfileID `json:"id"`
	UserID    id.UserID    `json:"user_id"`
	Encoding  []float64    `json:"-"`
	PhotoPath string       `json:"photo_path,omitempty"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
}
