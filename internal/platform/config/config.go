package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Built once in main from the
// environment so the rest of the code receives plain values.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	JWTSigningKey string
	TokenTTL      time.Duration

	// UploadDir is where attendance and enrollment photos are written.
	UploadDir string

	// FaceServiceURL points at the external face-encoding service. Empty
	// disables identity verification (the engine falls back to the
	// always-pass verifier).
	FaceServiceURL string

	// KafkaBrokers enables the best-effort audit mirror when non-empty.
	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig holds connection settings for the token revocation store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:           envOr("GEOATTEND_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSigningKey:  envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:       durationOr("TOKEN_TTL", 8*time.Hour),
		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		FaceServiceURL: os.Getenv("FACE_SERVICE_URL"),
		AuditTopic:     envOr("AUDIT_TOPIC", "geoattend.attendance-log"),
	}
	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     intOr("REDIS_POOL_SIZE", 10),
		MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
