// Package domain holds shared identity types used across modules.
//
// IDs are distinct named types over uuid.UUID so that a zone ID can never be
// passed where a user ID is expected. Construct them via Parse* at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "geoattend/pkg/domain-errors"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// ZoneID identifies a geofence zone.
type ZoneID uuid.UUID

// ProfileID identifies an enrolled face profile.
type ProfileID uuid.UUID

// RecordID identifies an attendance ledger record.
type RecordID uuid.UUID

// NewUserID returns a freshly generated user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewZoneID returns a freshly generated zone ID.
func NewZoneID() ZoneID { return ZoneID(uuid.New()) }

// NewProfileID returns a freshly generated profile ID.
func NewProfileID() ProfileID { return ProfileID(uuid.New()) }

// NewRecordID returns a freshly generated record ID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id ZoneID) String() string    { return uuid.UUID(id).String() }
func (id ProfileID) String() string { return uuid.UUID(id).String() }
func (id RecordID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ZoneID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ProfileID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders IDs in canonical UUID form. Named types over uuid.UUID
// do not inherit its marshalers, so without these encoding/json would emit
// the raw 16-byte array.
func (id UserID) MarshalText() ([]byte, error)    { return []byte(uuid.UUID(id).String()), nil }
func (id ZoneID) MarshalText() ([]byte, error)    { return []byte(uuid.UUID(id).String()), nil }
func (id ProfileID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }
func (id RecordID) MarshalText() ([]byte, error)  { return []byte(uuid.UUID(id).String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	*id = UserID(u)
	return nil
}

func (id *ZoneID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid zone id")
	}
	*id = ZoneID(u)
	return nil
}

func (id *ProfileID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid profile id")
	}
	*id = ProfileID(u)
	return nil
}

func (id *RecordID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
	}
	*id = RecordID(u)
	return nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	return UserID(u), nil
}

// ParseZoneID constructs a ZoneID from external input.
func ParseZoneID(s string) (ZoneID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ZoneID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid zone id")
	}
	return ZoneID(u), nil
}

// ParseProfileID constructs a ProfileID from external input.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProfileID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid profile id")
	}
	return ProfileID(u), nil
}
