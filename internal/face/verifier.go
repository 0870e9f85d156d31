package face

import (
	"context"
	"errors"
	"fmt"
	"math"

	"geoattend/internal/face/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

const (
	// matchThreshold is the euclidean distance below which a captured face is
	// considered the same person as the enrolled profile.
	matchThreshold = 0.4

	// matchTolerance is the outer bound used alongside the threshold. A
	// distance above it is never accepted.
	matchTolerance = 0.6
)

// Verification is the outcome of checking a captured photo against a user's
// enrolled face profile.
type Verification struct {
	Verified   bool
	Detail     string
	Confidence float64
}

// Verifier decides whether a captured photo belongs to the given user.
// Required reports whether the user must supply a photo at all; callers skip
// Verify when it returns false.
type Verifier interface {
	Required(ctx context.Context, userID id.UserID) (bool, error)
	Verify(ctx context.Context, userID id.UserID, photo []byte) (Verification, error)
}

// Disabled is the verifier used when no face service is configured. Nothing
// is required and every attempt passes with an advisory detail.
type Disabled struct{}

func (Disabled) Required(context.Context, id.UserID) (bool, error) {
	return false, nil
}

func (Disabled) Verify(context.Context, id.UserID, []byte) (Verification, error) {
	return Verification{Verified: true, Detail: "face verification not available"}, nil
}

// ProfileFinder is the subset of the profile store the matcher needs.
type ProfileFinder interface {
	FindActiveByUser(ctx context.Context, userID id.UserID) (*models.FaceProfile, error)
}

// Matcher verifies photos against enrolled profiles using an Encoder for
// extraction and a local euclidean comparison.
type Matcher struct {
	profiles ProfileFinder
	encoder  Encoder
}

func NewMatcher(profiles ProfileFinder, encoder Encoder) *Matcher {
	return &Matcher{profiles: profiles, encoder: encoder}
}

// Required reports whether the user has an enrolled profile to match against.
func (m *Matcher) Required(ctx context.Context, userID id.UserID) (bool, error) {
	_, err := m.profiles.FindActiveByUser(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load face profile: %w", err)
	}
	return true, nil
}

func (m *Matcher) Verify(ctx context.Context, userID id.UserID, photo []byte) (Verification, error) {
	profile, err := m.profiles.FindActiveByUser(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Users without an enrolled profile are allowed through; enrollment
		// is opt-in.
		return Verification{Verified: true, Detail: "no profile enrolled"}, nil
	}
	if err != nil {
		return Verification{}, fmt.Errorf("load face profile: %w", err)
	}

	encodings, err := m.encoder.Encode(ctx, photo)
	if err != nil {
		return Verification{Detail: fmt.Sprintf("face extraction failed: %v", err)}, nil
	}
	switch len(encodings) {
	case 0:
		return Verification{Detail: "no face detected"}, nil
	case 1:
	default:
		return Verification{Detail: "multiple faces detected"}, nil
	}

	distance := euclidean(profile.Encoding, encodings[0])
	confidence := (1 - distance) * 100
	if distance < matchThreshold && distance <= matchTolerance {
		return Verification{
			Verified:   true,
			Detail:     fmt.Sprintf("face matched with %.1f%% confidence", confidence),
			Confidence: confidence,
		}, nil
	}
	return Verification{
		Detail:     "face did not match enrolled profile",
		Confidence: confidence,
	}, nil
}

func euclidean(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
