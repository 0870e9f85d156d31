package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "geoattend/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// IDs must be valid UUIDs at trust boundaries.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseZoneID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestID_JSONEncoding verifies IDs serialize as canonical UUID strings.
// Named types over uuid.UUID do not inherit its marshalers; without
// explicit MarshalText, encoding/json would emit a 16-number byte array.
func TestID_JSONEncoding(t *testing.T) {
	t.Run("marshals as quoted UUID string", func(t *testing.T) {
		id := NewUserID()
		payload := struct {
			UserID UserID `json:"user_id"`
		}{UserID: id}

		out, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{"user_id":"`+id.String()+`"}`, string(out))
	})

	t.Run("round-trips through JSON", func(t *testing.T) {
		original := struct {
			RecordID RecordID `json:"record_id"`
			ZoneID   ZoneID   `json:"zone_id"`
		}{RecordID: NewRecordID(), ZoneID: NewZoneID()}

		out, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded struct {
			RecordID RecordID `json:"record_id"`
			ZoneID   ZoneID   `json:"zone_id"`
		}
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, original.RecordID, decoded.RecordID)
		assert.Equal(t, original.ZoneID, decoded.ZoneID)
	})

	t.Run("rejects malformed text on unmarshal", func(t *testing.T) {
		var id ProfileID
		err := json.Unmarshal([]byte(`"garbage"`), &id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	zoneID := ZoneID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = zoneID   // compile error
	// var _ ZoneID = userID   // compile error
	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(zoneID))
}
