package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"geoattend/internal/attendance/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
)

type LedgerMemorySuite struct {
	suite.Suite

	ledger *InMemoryLedger
	userID id.UserID
}

func (s *LedgerMemorySuite) SetupTest() {
	s.ledger = NewInMemoryLedger()
	s.userID = id.NewUserID()
}

func (s *LedgerMemorySuite) openRecord(date string) *models.Record {
	return &models.Record{
		ID:     id.NewRecordID(),
		UserID: s.userID,
		Date:   date,
		TimeIn: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		LatIn:  13.7563,
		LonIn:  100.5018,
	}
}

func (s *LedgerMemorySuite) TestCheckInThenFind() {
	s.Require().NoError(s.ledger.CreateCheckIn(context.Background(), s.openRecord("2026-03-02")))

	record, err := s.ledger.FindByUserAndDate(context.Background(), s.userID, "2026-03-02")
	s.Require().NoError(err)
	s.Equal(models.StateOpen, record.State())

	_, err = s.ledger.FindByUserAndDate(context.Background(), s.userID, "2026-03-03")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerMemorySuite) TestDuplicateCheckInRejected() {
	s.Require().NoError(s.ledger.CreateCheckIn(context.Background(), s.openRecord("2026-03-02")))
	s.ErrorIs(s.ledger.CreateCheckIn(context.Background(), s.openRecord("2026-03-02")), sentinel.ErrAlreadyUsed)
}

// Concurrent check-ins for the same user and date must produce exactly one
// record.
func (s *LedgerMemorySuite) TestConcurrentCheckInsOneWinner() {
	const attempts = 32

	var (
		wg        sync.WaitGroup
		successes atomic.Int64
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ledger.CreateCheckIn(context.Background(), s.openRecord("2026-03-02")); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(1), successes.Load())
}

func (s *LedgerMemorySuite) TestCheckOutRequiresOpenRecord() {
	out := CheckOut{
		Time:      time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		Latitude:  13.7563,
		Longitude: 100.5018,
	}

	s.ErrorIs(s.ledger.CompleteCheckOut(context.Background(), s.userID, "2026-03-02", out), sentinel.ErrInvalidState)

	s.Require().NoError(s.ledger.CreateCheckIn(context.Background(), s.openRecord("2026-03-02")))
	s.Require().NoError(s.ledger.CompleteCheckOut(context.Background(), s.userID, "2026-03-02", out))

	record, err := s.ledger.FindByUserAndDate(context.Background(), s.userID, "2026-03-02")
	s.Require().NoError(err)
	s.Equal(models.StateClosed, record.State())
	s.Require().NotNil(record.TimeOut)
	s.Equal(out.Time, *record.TimeOut)

	s.ErrorIs(s.ledger.CompleteCheckOut(context.Background(), s.userID, "2026-03-02", out), sentinel.ErrInvalidState)
}

func (s *LedgerMemorySuite) TestListByUserDateRange() {
	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-05"} {
		s.Require().NoError(s.ledger.CreateCheckIn(context.Background(), s.openRecord(date)))
	}

	records, err := s.ledger.ListByUser(context.Background(), s.userID, "2026-03-02", "2026-03-05")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("2026-03-05", records[0].Date)
	s.Equal("2026-03-02", records[1].Date)
}

func (s *LedgerMemorySuite) TestDeleteByUser() {
	s.Require().NoError(s.ledger.CreateCheckIn(context.Background(), s.openRecord("2026-03-02")))
	s.Require().NoError(s.ledger.DeleteByUser(context.Background(), s.userID))

	_, err := s.ledger.FindByUserAndDate(context.Background(), s.userID, "2026-03-02")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestLedgerMemorySuite(t *testing.T) {
	suite.Run(t, new(LedgerMemorySuite))
}

func TestInMemoryLog(t *testing.T) {
	log := NewInMemoryLog()
	userID := id.NewUserID()

	for i := 0; i < 3; i++ {
		err := log.Append(context.Background(), &models.LogEntry{
			UserID:    userID,
			Action:    models.ActionCheckIn,
			Success:   i == 2,
			Reason:    "outside all allowed areas",
			CreatedAt: time.Date(2026, 3, 2, 9, i, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := log.ListByUser(context.Background(), userID, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Success {
		t.Fatalf("newest entry should be the successful one")
	}
}
