// Package handler exposes registration, login, and admin user management.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	identityModel "geoattend/internal/identity/models"
	identityService "geoattend/internal/identity/service"
	"geoattend/internal/transport/http/shared"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
)

// Service is the identity surface the handler needs.
type Service interface {
	Register(ctx context.Context, in identityService.RegisterInput) (*identityModel.User, error)
	Authenticate(ctx context.Context, username, password string) (string, *identityModel.User, error)
	Logout(ctx context.Context, tokenString string) error
	GetUser(ctx context.Context, userID id.UserID) (*identityModel.User, error)
	ListUsers(ctx context.Context) ([]*identityModel.User, error)
	ToggleActive(ctx context.Context, userID id.UserID) (*identityModel.User, error)
	DeleteUser(ctx context.Context, userID id.UserID) error
}

// Handler handles identity endpoints.
type Handler struct {
	logger *slog.Logger
	users  Service
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, users: users}
}

// Register mounts identity routes: public registration and login, and
// admin-only user management.
func (h *Handler) Register(public, authed, admin chi.Router) {
	public.Post("/auth/register", h.handleRegister)
	public.Post("/auth/login", h.handleLogin)
	authed.Post("/auth/logout", h.handleLogout)

	admin.Get("/users", h.handleListUsers)
	admin.Get("/users/{userID}", h.handleGetUser)
	admin.Post("/users/{userID}/toggle", h.handleToggleUser)
	admin.Delete("/users/{userID}", h.handleDeleteUser)
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateRegisterRequest(req); err != nil {
		shared.WriteError(w, err)
		return
	}
	role, err := identityModel.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), identityService.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	token, user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.users.Logout(r.Context(), token); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	user, err := h.users.ToggleActive(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateRegisterRequest(req registerRequest) error {
	if !govalidator.StringLength(req.Username, "3", "50") {
		return dErrors.New(dErrors.CodeInvalidInput, "username must be 3-50 characters")
	}
	if !govalidator.Matches(req.Username, `^[a-zA-Z0-9_.-]+$`) {
		return dErrors.New(dErrors.CodeInvalidInput, "username contains invalid characters")
	}
	if !govalidator.StringLength(req.FullName, "1", "100") {
		return dErrors.New(dErrors.CodeInvalidInput, "full name must be 1-100 characters")
	}
	if req.Email != "" && !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email")
	}
	return nil
}
