// Package models defines the attendance ledger and log entities.
package models

import (
	"time"

	id "geoattend/pkg/domain"
)

// DateLayout is the calendar-date key format for ledger rows.
const DateLayout = "2006-01-02"

// Action is the attendance transition being attempted.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// State is the lifecycle position of a day's record.
type State string

const (
	// StateAbsent means no record exists for the user and date.
	StateAbsent State = "absent"
	// StateOpen means the user has checked in but not out.
	StateOpen State = "open"
	// StateClosed means both legs are recorded.
	StateClosed State = "closed"
)

// Record is one ledger row: a user's attendance for a single calendar date.
// At most one record exists per (user, date).
type Record struct {
	ID      id.RecordID `json:"id"`
	UserID  id.UserID   `json:"user_id"`
	Date    string      `json:"date"`
	TimeIn  time.Time   `json:"time_in"`
	TimeOut *time.Time  `json:"time_out,omitempty"`
	LatIn   float64     `json:"lat_in"`
	LonIn   float64     `json:"lon_in"`
	LatOut  *float64    `json:"lat_out,omitempty"`
	LonOut  *float64    `json:"lon_out,omitempty"`

	PhotoIn  string `json:"-"`
	PhotoOut string `json:"-"`
}

// State derives the record's lifecycle position. A nil record is absent.
func (r *Record) State() State {
	switch {
	case r == nil:
		return StateAbsent
	case r.TimeOut == nil:
		return StateOpen
	default:
		return StateClosed
	}
}

// LogEntry is one append-only audit row. Every attempt produces one,
// rejections included.
type LogEntry struct {
	ID        int64     `json:"id"`
	UserID    id.UserID `json:"user_id"`
	Action    Action    `json:"action"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionRequest carries one check-in or check-out attempt into the
// engine.
type TransactionRequest struct {
	UserID    id.UserID
	Role      string
	Action    Action
	Latitude  float64
	Longitude float64
	Photo     []byte
}

// Result is the engine's user-facing outcome. Message surfaces the specific
// rejection reason; it is never empty.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
