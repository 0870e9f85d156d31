// Package httptransport assembles the HTTP surface: middleware chain, route
// groups, and operational endpoints. Handlers stay thin and delegate to
// domain services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendanceHandler "geoattend/internal/attendance/handler"
	faceHandler "geoattend/internal/face/handler"
	identityHandler "geoattend/internal/identity/handler"
	"geoattend/internal/platform/metrics"
	"geoattend/internal/platform/middleware"
	"geoattend/internal/transport/http/shared"
	zoneHandler "geoattend/internal/zone/handler"
)

const requestTimeout = 30 * time.Second

// RouterConfig carries everything NewRouter needs to assemble the service.
type RouterConfig struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	Identity   *identityHandler.Handler
	Zones      *zoneHandler.Handler
	Faces      *faceHandler.Handler
	Attendance *attendanceHandler.Handler

	// Ready reports backend health for the readiness endpoint. Nil means
	// always ready.
	Ready func(ctx context.Context) error
}

// NewRouter wires middleware and mounts every route group: public (auth),
// authenticated (attendance, face, active zones), and admin (user and zone
// management).
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Metadata)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))
	r.Use(middleware.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(req.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	public := r.Group(nil)

	authed := r.Group(nil)
	authed.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))

	admin := r.Group(nil)
	admin.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
	admin.Use(middleware.RequireAdmin(cfg.Logger))

	cfg.Identity.Register(public, authed, admin)
	cfg.Zones.Register(authed, admin)
	cfg.Faces.Register(authed, admin)
	cfg.Attendance.Register(authed, admin)

	return r
}
