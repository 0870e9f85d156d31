// Package handler exposes check-in, check-out, and attendance queries over
// HTTP.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"geoattend/internal/attendance/models"
	"geoattend/internal/transport/http/shared"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
	"geoattend/pkg/requestcontext"
)

const maxPhotoBytes = 16 << 20

// Engine is the attendance surface the handler needs.
type Engine interface {
	Execute(ctx context.Context, req models.TransactionRequest) (models.Result, error)
	Today(ctx context.Context, userID id.UserID) (*models.Record, error)
	History(ctx context.Context, userID id.UserID, from, to string) ([]*models.Record, error)
}

// Log reads a user's attempt history.
type Log interface {
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*models.LogEntry, error)
}

// Handler handles attendance endpoints.
type Handler struct {
	logger *slog.Logger
	engine Engine
	log    Log
}

func New(engine Engine, log Log, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, engine: engine, log: log}
}

// Register mounts attendance routes. All require authentication; the log
// endpoint for arbitrary users is admin-only.
func (h *Handler) Register(authed, admin chi.Router) {
	authed.Post("/attendance/check-in", h.handleCheckIn)
	authed.Post("/attendance/check-out", h.handleCheckOut)
	authed.Get("/attendance/today", h.handleToday)
	authed.Get("/attendance/history", h.handleHistory)

	admin.Get("/users/{userID}/attendance-log", h.handleUserLog)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleTransaction(w, r, models.ActionCheckIn)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleTransaction(w, r, models.ActionCheckOut)
}

func (h *Handler) handleTransaction(w http.ResponseWriter, r *http.Request, action models.Action) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, err := parseTransaction(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	req.UserID = userID
	req.Role = requestcontext.Role(r.Context())
	req.Action = action

	result, err := h.engine.Execute(r.Context(), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	shared.WriteJSON(w, status, result)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	record, err := h.engine.Today(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"state":  record.State(),
		"record": record,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	for _, date := range []string{from, to} {
		if date != "" {
			if _, err := time.Parse(models.DateLayout, date); err != nil {
				shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "dates must be YYYY-MM-DD"))
				return
			}
		}
	}

	records, err := h.engine.History(r.Context(), userID, from, to)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance"))
		return
	}
	if records == nil {
		records = []*models.Record{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) handleUserLog(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500"))
			return
		}
		limit = parsed
	}

	entries, err := h.log.ListByUser(r.Context(), userID, limit)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance log"))
		return
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// parseTransaction reads latitude, longitude, and the optional photo out of
// a multipart form.
func parseTransaction(r *http.Request) (models.TransactionRequest, error) {
	var req models.TransactionRequest

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		return req, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body")
	}

	lat := r.FormValue("latitude")
	lon := r.FormValue("longitude")
	if !govalidator.IsFloat(lat) || !govalidator.IsFloat(lon) {
		return req, dErrors.New(dErrors.CodeInvalidInput, "latitude and longitude are required")
	}
	req.Latitude, _ = strconv.ParseFloat(lat, 64)
	req.Longitude, _ = strconv.ParseFloat(lon, 64)

	file, _, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		photo, readErr := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
		if readErr != nil {
			return req, dErrors.New(dErrors.CodeBadRequest, "failed to read photo")
		}
		req.Photo = photo
	} else if err != http.ErrMissingFile {
		return req, dErrors.New(dErrors.CodeBadRequest, "invalid photo upload")
	}
	return req, nil
}
