// Package handler exposes face enrollment over HTTP.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	faceModel "geoattend/internal/face/models"
	"geoattend/internal/transport/http/shared"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
	"geoattend/pkg/requestcontext"
)

const maxPhotoBytes = 16 << 20

// Service is the face enrollment surface the handler needs.
type Service interface {
	Enroll(ctx context.Context, userID id.UserID, photo []byte, now time.Time) (*faceModel.FaceProfile, error)
	Unenroll(ctx context.Context, userID id.UserID) error
	Enrolled(ctx context.Context, userID id.UserID) (bool, error)
}

// Handler handles face enrollment endpoints.
type Handler struct {
	logger *slog.Logger
	faces  Service
}

func New(faces Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, faces: faces}
}

// Register mounts face routes. Members manage their own enrollment; admins
// can unenroll any user.
func (h *Handler) Register(authed, admin chi.Router) {
	authed.Post("/face/enroll", h.handleEnroll)
	authed.Delete("/face/enroll", h.handleUnenroll)
	authed.Get("/face/status", h.handleStatus)

	admin.Delete("/users/{userID}/face", h.handleAdminUnenroll)
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	photo, err := readPhoto(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	profile, err := h.faces.Enroll(r.Context(), userID, photo, requestcontext.Now(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"profile_id":  profile.ID.String(),
		"enrolled_at": profile.CreatedAt,
	})
}

func (h *Handler) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := h.faces.Unenroll(r.Context(), userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "unenrolled"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	enrolled, err := h.faces.Enrolled(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check enrollment"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"enrolled": enrolled})
}

func (h *Handler) handleAdminUnenroll(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	if err := h.faces.Unenroll(r.Context(), userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "unenrolled"})
}

// readPhoto pulls the photo part out of a multipart upload.
func readPhoto(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body")
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "photo is required")
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "failed to read photo")
	}
	if len(photo) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "photo is empty")
	}
	return photo, nil
}
