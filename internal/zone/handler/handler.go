// Package handler exposes geofence zone management over HTTP. All mutating
// routes are admin-only; the active list is readable by any authenticated
// user so clients can render the allowed areas.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"geoattend/internal/transport/http/shared"
	zoneModel "geoattend/internal/zone/models"
	zoneService "geoattend/internal/zone/service"
	id "geoattend/pkg/domain"
	dErrors "geoattend/pkg/domain-errors"
)

// Service is the zone surface the handler needs.
type Service interface {
	CreateZone(ctx context.Context, in zoneService.CreateZoneInput) (*zoneModel.GeoZone, error)
	UpdateZone(ctx context.Context, zoneID id.ZoneID, in zoneService.CreateZoneInput) (*zoneModel.GeoZone, error)
	DeleteZone(ctx context.Context, zoneID id.ZoneID) error
	ToggleZone(ctx context.Context, zoneID id.ZoneID) (*zoneModel.GeoZone, error)
	ListZones(ctx context.Context) ([]*zoneModel.GeoZone, error)
	ListActiveZones(ctx context.Context) ([]*zoneModel.GeoZone, error)
}

// Handler handles zone-related endpoints.
type Handler struct {
	logger *slog.Logger
	zones  Service
}

func New(zones Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, zones: zones}
}

// Register mounts the zone routes. authed must already enforce RequireAuth;
// admin must additionally enforce RequireAdmin.
func (h *Handler) Register(authed, admin chi.Router) {
	authed.Get("/zones/active", h.handleListActive)

	admin.Get("/zones", h.handleList)
	admin.Post("/zones", h.handleCreate)
	admin.Put("/zones/{zoneID}", h.handleUpdate)
	admin.Delete("/zones/{zoneID}", h.handleDelete)
	admin.Post("/zones/{zoneID}/toggle", h.handleToggle)
}

type zoneRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_m"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	zone, err := h.zones.CreateZone(r.Context(), zoneService.CreateZoneInput{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, zone)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	zoneID, err := id.ParseZoneID(chi.URLParam(r, "zoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	zone, err := h.zones.UpdateZone(r.Context(), zoneID, zoneService.CreateZoneInput{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, zone)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	zoneID, err := id.ParseZoneID(chi.URLParam(r, "zoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.zones.DeleteZone(r.Context(), zoneID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	zoneID, err := id.ParseZoneID(chi.URLParam(r, "zoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	zone, err := h.zones.ToggleZone(r.Context(), zoneID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, zone)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.ListZones(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"zones": zones})
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.ListActiveZones(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"zones": zones})
}
