// Command server runs the geofenced attendance service: check-in and
// check-out gated by zone membership and optional face verification, with
// user, zone, and enrollment management on top.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	attendanceAudit "geoattend/internal/attendance/audit"
	attendanceEngine "geoattend/internal/attendance/engine"
	attendanceHandler "geoattend/internal/attendance/handler"
	attendanceMetrics "geoattend/internal/attendance/metrics"
	attendanceStore "geoattend/internal/attendance/store"
	"geoattend/internal/face"
	faceHandler "geoattend/internal/face/handler"
	faceService "geoattend/internal/face/service"
	faceStore "geoattend/internal/face/store"
	identityHandler "geoattend/internal/identity/handler"
	identityService "geoattend/internal/identity/service"
	identityStore "geoattend/internal/identity/store"
	"geoattend/internal/jwt"
	"geoattend/internal/platform/config"
	"geoattend/internal/platform/database"
	"geoattend/internal/platform/httpserver"
	"geoattend/internal/platform/logger"
	"geoattend/internal/platform/metrics"
	platformredis "geoattend/internal/platform/redis"
	httptransport "geoattend/internal/transport/http"
	"geoattend/internal/upload"
	zoneHandler "geoattend/internal/zone/handler"
	zoneService "geoattend/internal/zone/service"
	zoneStore "geoattend/internal/zone/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	photos, err := upload.New(cfg.UploadDir)
	if err != nil {
		return err
	}

	// Storage backend is selected once: PostgreSQL when DATABASE_URL is
	// set, in-memory otherwise.
	var (
		users  identityService.Store
		zones  zoneService.Store
		faces  faceStore.Store
		ledger attendanceStore.Ledger
		atlog  attendanceStore.Log
		runner attendanceStore.TxRunner
		ready  func(ctx context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Bootstrap(ctx, db); err != nil {
			return err
		}
		users = identityStore.NewPostgres(db)
		zones = zoneStore.NewPostgres(db)
		faces = faceStore.NewPostgres(db)
		ledger = attendanceStore.NewPostgresLedger(db)
		atlog = attendanceStore.NewPostgresLog(db)
		runner = attendanceStore.NewPostgresTx(db)
		ready = db.PingContext
		log.Info("using postgres storage")
	} else {
		users = identityStore.NewInMemory()
		zones = zoneStore.NewInMemory()
		faces = faceStore.NewInMemory()
		ledger = attendanceStore.NewInMemoryLedger()
		atlog = attendanceStore.NewInMemoryLog()
		runner = attendanceStore.InMemoryTx{}
		log.Info("using in-memory storage")
	}

	var revocations identityService.RevocationStore = identityStore.NewInMemoryRevocations()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = identityStore.NewRedisRevocations(redisClient)
		log.Info("using redis token revocation store")
	}

	var verifier face.Verifier = face.Disabled{}
	var encoder face.Encoder
	if cfg.FaceServiceURL != "" {
		encoder = face.NewHTTPEncoder(cfg.FaceServiceURL)
		verifier = face.NewMatcher(faces, encoder)
		log.Info("face verification enabled", slog.String("service", cfg.FaceServiceURL))
	}

	var mirror *attendanceAudit.Mirror
	if len(cfg.KafkaBrokers) > 0 {
		mirror, err = attendanceAudit.NewMirror(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		defer mirror.Close()
		log.Info("attendance audit mirror enabled", slog.String("topic", cfg.AuditTopic))
	}

	platformMetrics := metrics.New()
	tokens := jwt.NewService(cfg.JWTSigningKey, "geoattend")

	zoneSvc := zoneService.New(zones, log)
	engine := attendanceEngine.New(zoneSvc, ledger, atlog, runner, verifier, photos,
		mirror, attendanceMetrics.New(), log)
	faceSvc := faceService.New(faces, photos, encoderOrReject(encoder), log)
	userSvc := identityService.New(users, revocations, tokens, cfg.TokenTTL,
		engine, faces, photos, platformMetrics, log)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:     log,
		Metrics:    platformMetrics,
		Validator:  userSvc,
		Identity:   identityHandler.New(userSvc, log),
		Zones:      zoneHandler.New(zoneSvc, log),
		Faces:      faceHandler.New(faceSvc, log),
		Attendance: attendanceHandler.New(engine, atlog, log),
		Ready:      ready,
	})

	server := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// encoderOrReject keeps enrollment honest when no face service is
// configured: enrolling without an encoder would create profiles that could
// never be matched.
func encoderOrReject(encoder face.Encoder) face.Encoder {
	if encoder != nil {
		return encoder
	}
	return face.UnavailableEncoder{}
}
