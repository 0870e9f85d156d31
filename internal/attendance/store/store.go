// Package store persists attendance records and the append-only attendance
// log. Two implementations exist: in-memory for development and tests, and
// PostgreSQL for production. Both enforce the one-record-per-user-per-date
// invariant at the storage layer so concurrent requests cannot double-write.
package store

import (
	"context"
	"time"

	"geoattend/internal/attendance/models"
	id "geoattend/pkg/domain"
)

// CheckOut carries the closing leg of a record.
type CheckOut struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	PhotoPath string
}

// Ledger is the attendance record store.
//
// CreateCheckIn is an atomic insert-if-absent: a second insert for the same
// (user, date) returns sentinel.ErrAlreadyUsed regardless of interleaving.
// CompleteCheckOut mutates only an open record; with no open record it
// returns sentinel.ErrInvalidState.
type Ledger interface {
	FindByUserAndDate(ctx context.Context, userID id.UserID, date string) (*models.Record, error)
	CreateCheckIn(ctx context.Context, record *models.Record) error
	CompleteCheckOut(ctx context.Context, userID id.UserID, date string, out CheckOut) error
	ListByUser(ctx context.Context, userID id.UserID, from, to string) ([]*models.Record, error)
	DeleteByUser(ctx context.Context, userID id.UserID) error
}

// Log is the append-only attempt log. Append failure fails the surrounding
// operation; no acknowledged attempt, accepted or rejected, goes unrecorded.
type Log interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*models.LogEntry, error)
	DeleteByUser(ctx context.Context, userID id.UserID) error
}

// TxRunner executes fn inside one storage transaction. Stores called with
// the derived context join that transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
