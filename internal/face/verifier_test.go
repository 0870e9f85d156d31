package face

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoattend/internal/face/models"
	"geoattend/internal/face/store"
	id "geoattend/pkg/domain"
)

func enrolledStore(t *testing.T, userID id.UserID, encoding []float64) *store.InMemory {
	t.Helper()
	profiles := store.NewInMemory()
	err := profiles.Create(context.Background(), &models.FaceProfile{
		ID:       id.NewProfileID(),
		UserID:   userID,
		Encoding: encoding,
		Active:   true,
	})
	require.NoError(t, err)
	return profiles
}

func baseEncoding() []float64 {
	encoding := make([]float64, models.EncodingLength)
	for i := range encoding {
		encoding[i] = 0.5
	}
	return encoding
}

// shifted returns a copy of the encoding whose first component is moved by
// delta, producing a euclidean distance of exactly |delta|.
func shifted(encoding []float64, delta float64) []float64 {
	out := make([]float64, len(encoding))
	copy(out, encoding)
	out[0] += delta
	return out
}

func TestMatcherVerify(t *testing.T) {
	userID := id.NewUserID()
	enrolled := baseEncoding()

	tests := []struct {
		name         string
		encoder      Encoder
		wantVerified bool
		wantDetail   string
	}{
		{
			name:         "exact match",
			encoder:      &StaticEncoder{Encodings: [][]float64{enrolled}},
			wantVerified: true,
			wantDetail:   "face matched with 100.0% confidence",
		},
		{
			name:         "close match under threshold",
			encoder:      &StaticEncoder{Encodings: [][]float64{shifted(enrolled, 0.3)}},
			wantVerified: true,
			wantDetail:   "face matched with 70.0% confidence",
		},
		{
			name:         "distance at threshold rejected",
			encoder:      &StaticEncoder{Encodings: [][]float64{shifted(enrolled, 0.4)}},
			wantVerified: false,
			wantDetail:   "face did not match enrolled profile",
		},
		{
			name:         "distant face rejected",
			encoder:      &StaticEncoder{Encodings: [][]float64{shifted(enrolled, 0.9)}},
			wantVerified: false,
			wantDetail:   "face did not match enrolled profile",
		},
		{
			name:         "no face detected",
			encoder:      &StaticEncoder{Encodings: nil},
			wantVerified: false,
			wantDetail:   "no face detected",
		},
		{
			name: "multiple faces detected",
			encoder: &StaticEncoder{Encodings: [][]float64{
				enrolled, shifted(enrolled, 0.1),
			}},
			wantVerified: false,
			wantDetail:   "multiple faces detected",
		},
		{
			name:         "extraction failure is not verified",
			encoder:      &StaticEncoder{Err: errors.New("service down")},
			wantVerified: false,
			wantDetail:   "face extraction failed: service down",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := NewMatcher(enrolledStore(t, userID, enrolled), tt.encoder)
			verdict, err := matcher.Verify(context.Background(), userID, []byte("jpeg"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerified, verdict.Verified)
			assert.Equal(t, tt.wantDetail, verdict.Detail)
		})
	}
}

func TestMatcherVerifyNoProfile(t *testing.T) {
	matcher := NewMatcher(store.NewInMemory(), &StaticEncoder{})
	verdict, err := matcher.Verify(context.Background(), id.NewUserID(), []byte("jpeg"))
	require.NoError(t, err)
	assert.True(t, verdict.Verified)
	assert.Equal(t, "no profile enrolled", verdict.Detail)
}

func TestMatcherRequired(t *testing.T) {
	userID := id.NewUserID()
	matcher := NewMatcher(enrolledStore(t, userID, baseEncoding()), &StaticEncoder{})

	required, err := matcher.Required(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, required)

	required, err = matcher.Required(context.Background(), id.NewUserID())
	require.NoError(t, err)
	assert.False(t, required)
}

func TestDisabledVerifierAlwaysPasses(t *testing.T) {
	required, err := Disabled{}.Required(context.Background(), id.NewUserID())
	require.NoError(t, err)
	assert.False(t, required)

	verdict, err := Disabled{}.Verify(context.Background(), id.NewUserID(), nil)
	require.NoError(t, err)
	assert.True(t, verdict.Verified)
	assert.Equal(t, "face verification not available", verdict.Detail)
}
