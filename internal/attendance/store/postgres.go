package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"geoattend/internal/attendance/models"
	id "geoattend/pkg/domain"
	"geoattend/pkg/platform/sentinel"
	"geoattend/pkg/platform/tx"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresLedger persists records in the attendance table. The
// UNIQUE(user_id, date) constraint backs CreateCheckIn's atomicity.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (s *PostgresLedger) exec(ctx context.Context) executor {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

const recordColumns = `id, user_id, date, time_in, time_out, lat_in, lon_in, lat_out, lon_out, photo_in, photo_out`

func (s *PostgresLedger) FindByUserAndDate(ctx context.Context, userID id.UserID, date string) (*models.Record, error) {
	row := s.exec(ctx).QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE user_id = $1 AND date = $2`,
		uuid.UUID(userID), date)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return record, nil
}

func (s *PostgresLedger) CreateCheckIn(ctx context.Context, record *models.Record) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO attendance (id, user_id, date, time_in, lat_in, lon_in, photo_in)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
	`,
		uuid.UUID(record.ID), uuid.UUID(record.UserID), record.Date,
		record.TimeIn, record.LatIn, record.LonIn, record.PhotoIn,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert check-in: %w", err)
	}
	return nil
}

func (s *PostgresLedger) CompleteCheckOut(ctx context.Context, userID id.UserID, date string, out CheckOut) error {
	result, err := s.exec(ctx).ExecContext(ctx, `
		UPDATE attendance
		SET time_out = $1, lat_out = $2, lon_out = $3, photo_out = NULLIF($4, '')
		WHERE user_id = $5 AND date = $6 AND time_out IS NULL
	`,
		out.Time, out.Latitude, out.Longitude, out.PhotoPath,
		uuid.UUID(userID), date,
	)
	if err != nil {
		return fmt.Errorf("complete check-out: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete check-out: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresLedger) ListByUser(ctx context.Context, userID id.UserID, from, to string) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance WHERE user_id = $1`
	args := []any{uuid.UUID(userID)}
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date DESC`

	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresLedger) DeleteByUser(ctx context.Context, userID id.UserID) error {
	_, err := s.exec(ctx).ExecContext(ctx,
		`DELETE FROM attendance WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete attendance records: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		record   models.Record
		recordID uuid.UUID
		userID   uuid.UUID
		date     sql.NullTime
		timeOut  sql.NullTime
		latOut   sql.NullFloat64
		lonOut   sql.NullFloat64
		photoIn  sql.NullString
		photoOut sql.NullString
	)
	err := row.Scan(&recordID, &userID, &date, &record.TimeIn, &timeOut,
		&record.LatIn, &record.LonIn, &latOut, &lonOut, &photoIn, &photoOut)
	if err != nil {
		return nil, err
	}
	record.ID = id.RecordID(recordID)
	record.UserID = id.UserID(userID)
	if date.Valid {
		record.Date = date.Time.Format(models.DateLayout)
	}
	if timeOut.Valid {
		outTime := timeOut.Time
		record.TimeOut = &outTime
	}
	if latOut.Valid {
		record.LatOut = ptr(latOut.Float64)
	}
	if lonOut.Valid {
		record.LonOut = ptr(lonOut.Float64)
	}
	record.PhotoIn = photoIn.String
	record.PhotoOut = photoOut.String
	return &record, nil
}

// PostgresLog persists log entries in the attendance_log table.
type PostgresLog struct {
	db *sql.DB
}

func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

func (s *PostgresLog) exec(ctx context.Context) executor {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *PostgresLog) Append(ctx context.Context, entry *models.LogEntry) error {
	err := s.exec(ctx).QueryRowContext(ctx, `
		INSERT INTO attendance_log (user_id, action, latitude, longitude, success, reason, device, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		uuid.UUID(entry.UserID), string(entry.Action), entry.Latitude, entry.Longitude,
		entry.Success, entry.Reason, entry.Device, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("append attendance log: %w", err)
	}
	return nil
}

func (s *PostgresLog) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*models.LogEntry, error) {
	query := `
		SELECT id, user_id, action, latitude, longitude, success, reason, device, created_at
		FROM attendance_log
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []any{uuid.UUID(userID)}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance log: %w", err)
	}
	defer rows.Close()

	var entries []*models.LogEntry
	for rows.Next() {
		var (
			entry  models.LogEntry
			userID uuid.UUID
			reason sql.NullString
			device sql.NullString
		)
		err := rows.Scan(&entry.ID, &userID, &entry.Action, &entry.Latitude, &entry.Longitude,
			&entry.Success, &reason, &device, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan attendance log: %w", err)
		}
		entry.UserID = id.UserID(userID)
		entry.Reason = reason.String
		entry.Device = device.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *PostgresLog) DeleteByUser(ctx context.Context, userID id.UserID) error {
	_, err := s.exec(ctx).ExecContext(ctx,
		`DELETE FROM attendance_log WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete attendance log: %w", err)
	}
	return nil
}

// PostgresTx runs fn inside one database transaction carried through
// context.
type PostgresTx struct {
	db *sql.DB
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (r *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}
