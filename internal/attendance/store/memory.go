package store

import (
	"context"
	"sort"
	"sync"

	"geoattend/internal/attendance/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

type ledgerKey struct {
	userID id.UserID
	date   string
}

// InMemoryLedger keeps records in a map keyed by (user, date). It is safe
// for concurrent use.
type InMemoryLedger struct {
	mu      sync.Mutex
	records map[ledgerKey]*models.Record
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{records: make(map[ledgerKey]*models.Record)}
}

func (s *InMemoryLedger) FindByUserAndDate(_ context.Context, userID id.UserID, date string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[ledgerKey{userID: userID, date: date}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyRecord(record), nil
}

func (s *InMemoryLedger) CreateCheckIn(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey{userID: record.UserID, date: record.Date}
	if _, exists := s.records[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.records[key] = copyRecord(record)
	return nil
}

func (s *InMemoryLedger) CompleteCheckOut(_ context.Context, userID id.UserID, date string, out CheckOut) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[ledgerKey{userID: userID, date: date}]
	if !ok || record.TimeOut != nil {
		return sentinel.ErrInvalidState
	}
	outTime := out.Time
	record.TimeOut = &outTime
	record.LatOut = ptr(out.Latitude)
	record.LonOut = ptr(out.Longitude)
	record.PhotoOut = out.PhotoPath
	return nil
}

func (s *InMemoryLedger) ListByUser(_ context.Context, userID id.UserID, from, to string) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*models.Record
	for key, record := range s.records {
		if key.userID != userID {
			continue
		}
		if from != "" && record.Date < from {
			continue
		}
		if to != "" && record.Date > to {
			continue
		}
		records = append(records, copyRecord(record))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return records, nil
}

func (s *InMemoryLedger) DeleteByUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.records {
		if key.userID == userID {
			delete(s.records, key)
		}
	}
	return nil
}

// InMemoryLog appends entries to a slice. Safe for concurrent use.
type InMemoryLog struct {
	mu      sync.Mutex
	nextID  int64
	entries []*models.LogEntry
}

func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{nextID: 1}
}

func (s *InMemoryLog) Append(_ context.Context, entry *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	stored.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, &stored)
	entry.ID = stored.ID
	return nil
}

func (s *InMemoryLog) ListByUser(_ context.Context, userID id.UserID, limit int) ([]*models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*models.LogEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID != userID {
			continue
		}
		copied := *s.entries[i]
		entries = append(entries, &copied)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (s *InMemoryLog) DeleteByUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	return nil
}

// InMemoryTx runs fn directly; in-memory store operations are individually
// atomic.
type InMemoryTx struct{}

func (InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func copyRecord(record *models.Record) *models.Record {
	copied := *record
	if record.TimeOut != nil {
		outTime := *record.TimeOut
		copied.TimeOut = &outTime
	}
	if record.LatOut != nil {
		copied.LatOut = ptr(*record.LatOut)
	}
	if record.LonOut != nil {
		copied.LonOut = ptr(*record.LonOut)
	}
	return &copied
}

func ptr(v float64) *float64 { return &v }
