// Package engine orchestrates check-in and check-out attempts: geofence,
// duplicate detection, identity verification, and the ledger write, in that
// order. Every attempt lands in the attendance log, rejections included.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"geoattend/internal/attendance/metrics"
	"geoattend/internal/attendance/models"
	"geoattend/internal/attendance/store"
	"geoattend/internal/face"
	"geoattend/internal/geo"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
	"geoattend/pkg/platform/sentinel"
	"geoattend/pkg/requestcontext"
)

// Rejection reasons surfaced to the user and written to the log verbatim.
const (
	reasonInvalidCoordinates = "invalid coordinates"
	reasonOutsideArea        = "you are outside all allowed areas"
	reasonAlreadyCheckedIn   = "already checked in today"
	reasonNoOpenCheckIn      = "no check-in recorded today"
	reasonAlreadyCheckedOut  = "already checked out today"
	reasonPhotoRequired      = "photo required"
)

// Zones answers geofence membership.
type Zones interface {
	WithinAnyZone(ctx context.Context, lat, lon float64) (bool, error)
}

// Photos persists and removes captured images.
type Photos interface {
	Save(userID id.UserID, tag string, taken time.Time, data []byte) (string, error)
	Remove(path string) error
}

// Auditor mirrors log entries to an external sink, best-effort.
type Auditor interface {
	Publish(entry *models.LogEntry)
}

// Engine executes attendance transactions.
type Engine struct {
	zones    Zones
	ledger   store.Ledger
	log      store.Log
	txRunner store.TxRunner
	verifier face.Verifier
	photos   Photos
	auditor  Auditor
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(zones Zones, ledger store.Ledger, log store.Log, txRunner store.TxRunner,
	verifier face.Verifier, photos Photos, auditor Auditor,
	m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		zones:    zones,
		ledger:   ledger,
		log:      log,
		txRunner: txRunner,
		verifier: verifier,
		photos:   photos,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("geoattend/attendance"),
	}
}

// Execute runs one check-in or check-out attempt. All domain rejections come
// back as {Success: false, Message: reason} with a nil error; a non-nil
// error means storage failed and the caller may retry.
func (e *Engine) Execute(ctx context.Context, req models.TransactionRequest) (models.Result, error) {
	ctx, span := e.tracer.Start(ctx, "attendance.Execute",
		trace.WithAttributes(
			attribute.String("attendance.action", string(req.Action)),
			attribute.String("attendance.user_id", req.UserID.String()),
		))
	defer span.End()

	start := time.Now()
	defer func() {
		e.metrics.ObserveEngine(string(req.Action), time.Since(start))
	}()

	now := requestcontext.Now(ctx)
	date := now.Format(models.DateLayout)

	if req.Action != models.ActionCheckIn && req.Action != models.ActionCheckOut {
		return models.Result{}, dErrors.New(dErrors.CodeInvalidInput, "unknown attendance action")
	}
	if !geo.ValidCoordinate(req.Latitude, req.Longitude) {
		return e.reject(ctx, req, now, reasonInvalidCoordinates, "invalid_input")
	}

	inside, err := e.zones.WithinAnyZone(ctx, req.Latitude, req.Longitude)
	if err != nil {
		return models.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "geofence lookup failed")
	}
	if !inside {
		return e.reject(ctx, req, now, reasonOutsideArea, "outside_area")
	}

	record, err := e.ledger.FindByUserAndDate(ctx, req.UserID, date)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return models.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "attendance lookup failed")
	}
	switch req.Action {
	case models.ActionCheckIn:
		if record.State() != models.StateAbsent {
			return e.reject(ctx, req, now, reasonAlreadyCheckedIn, "duplicate")
		}
	case models.ActionCheckOut:
		switch record.State() {
		case models.StateAbsent:
			return e.reject(ctx, req, now, reasonNoOpenCheckIn, "no_check_in")
		case models.StateClosed:
			return e.reject(ctx, req, now, reasonAlreadyCheckedOut, "duplicate")
		}
	}

	// Admins skip identity verification; geofencing above applies to
	// everyone.
	isAdmin := req.Role == "admin"
	required := false
	if !isAdmin {
		required, err = e.verifier.Required(ctx, req.UserID)
		if err != nil {
			return models.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification lookup failed")
		}
		if required && len(req.Photo) == 0 {
			return e.reject(ctx, req, now, reasonPhotoRequired, "photo_required")
		}
	}

	var (
		photoPath    string
		verifyDetail string
	)
	switch {
	case isAdmin:
		verifyDetail = "verification bypassed (admin)"
	case !required:
		verifyDetail = "identity verification skipped"
	}
	if len(req.Photo) > 0 {
		photoPath, err = e.photos.Save(req.UserID, photoTag(req.Action), now, req.Photo)
		if err != nil {
			return models.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store photo")
		}
		if required {
			verdict, verifyErr := e.verifier.Verify(ctx, req.UserID, req.Photo)
			if verifyErr != nil {
				e.removePhoto(ctx, photoPath)
				return models.Result{}, dErrors.Wrap(verifyErr, dErrors.CodeUnavailable, "verification failed to run")
			}
			if !verdict.Verified {
				// The captured image must not outlive a failed
				// verification.
				e.removePhoto(ctx, photoPath)
				return e.reject(ctx, req, now, verdict.Detail, "verification_failed")
			}
			verifyDetail = verdict.Detail
		}
	}

	entry := e.newLogEntry(ctx, req, now, true, verifyDetail)
	err = e.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if mutErr := e.mutateLedger(ctx, req, now, date, photoPath); mutErr != nil {
			return mutErr
		}
		return e.log.Append(ctx, entry)
	})
	if err != nil {
		e.removePhoto(ctx, photoPath)
		// Two requests can race past the duplicate check; the storage
		// constraint decides the winner.
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return e.reject(ctx, req, now, reasonAlreadyCheckedIn, "duplicate")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return e.reject(ctx, req, now, reasonAlreadyCheckedOut, "duplicate")
		}
		return models.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "attendance write failed")
	}

	e.publish(entry)
	e.metrics.RecordOutcome(string(req.Action), "ok")
	span.SetAttributes(attribute.Bool("attendance.success", true))

	e.logger.InfoContext(ctx, "attendance recorded",
		slog.String("action", string(req.Action)),
		slog.String("user_id", req.UserID.String()),
		slog.String("date", date))
	return models.Result{Success: true, Message: e.successMessage(req.Action, isAdmin, required)}, nil
}

func (e *Engine) mutateLedger(ctx context.Context, req models.TransactionRequest, now time.Time, date, photoPath string) error {
	switch req.Action {
	case models.ActionCheckIn:
		return e.ledger.CreateCheckIn(ctx, &models.Record{
			ID:      id.NewRecordID(),
			UserID:  req.UserID,
			Date:    date,
			TimeIn:  now,
			LatIn:   req.Latitude,
			LonIn:   req.Longitude,
			PhotoIn: photoPath,
		})
	default:
		return e.ledger.CompleteCheckOut(ctx, req.UserID, date, store.CheckOut{
			Time:      now,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			PhotoPath: photoPath,
		})
	}
}

func (e *Engine) successMessage(action models.Action, isAdmin, required bool) string {
	msg := "checked in successfully"
	if action == models.ActionCheckOut {
		msg = "checked out successfully"
	}
	if !isAdmin && !required {
		msg += " (identity verification skipped)"
	}
	return msg
}

// reject records the failed attempt and surfaces the reason to the user.
// Rejections follow the same all-or-nothing rule as successes: if the log
// write fails the attempt is not acknowledged, so the caller can retry.
func (e *Engine) reject(ctx context.Context, req models.TransactionRequest, now time.Time, reason, outcome string) (models.Result, error) {
	entry := e.newLogEntry(ctx, req, now, false, reason)
	if err := e.log.Append(ctx, entry); err != nil {
		return models.Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "record rejected attempt")
	}
	e.publish(entry)
	e.metrics.RecordOutcome(string(req.Action), outcome)

	e.logger.InfoContext(ctx, "attendance attempt rejected",
		slog.String("action", string(req.Action)),
		slog.String("user_id", req.UserID.String()),
		slog.String("reason", reason))
	return models.Result{Success: false, Message: reason}, nil
}

func (e *Engine) newLogEntry(ctx context.Context, req models.TransactionRequest, now time.Time, success bool, reason string) *models.LogEntry {
	return &models.LogEntry{
		UserID:    req.UserID,
		Action:    req.Action,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Success:   success,
		Reason:    reason,
		Device:    requestcontext.Device(ctx),
		CreatedAt: now,
	}
}

func (e *Engine) publish(entry *models.LogEntry) {
	if e.auditor != nil {
		e.auditor.Publish(entry)
	}
}

func (e *Engine) removePhoto(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := e.photos.Remove(path); err != nil {
		e.logger.WarnContext(ctx, "failed to remove photo",
			slog.String("path", path), slog.Any("error", err))
	}
}

func photoTag(action models.Action) string {
	if action == models.ActionCheckOut {
		return "out"
	}
	return "in"
}

// Today returns the caller's record for the current date, or a nil record
// when absent.
func (e *Engine) Today(ctx context.Context, userID id.UserID) (*models.Record, error) {
	date := requestcontext.Now(ctx).Format(models.DateLayout)
	record, err := e.ledger.FindByUserAndDate(ctx, userID, date)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find today's record: %w", err)
	}
	return record, nil
}

// DeleteByUser purges a user's ledger rows and log entries in one
// transaction. Used by the account deletion cascade.
func (e *Engine) DeleteByUser(ctx context.Context, userID id.UserID) error {
	return e.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := e.ledger.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return e.log.DeleteByUser(ctx, userID)
	})
}

// History lists the user's records between from and to, inclusive, both in
// YYYY-MM-DD form. Empty bounds are open-ended.
func (e *Engine) History(ctx context.Context, userID id.UserID, from, to string) ([]*models.Record, error) {
	records, err := e.ledger.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
