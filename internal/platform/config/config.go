package config

import (
	"os"
	"strings"
	"time"
)

// Config captures server-level configuration sourced from the environment.
type Config struct {
	Addr            string
	JWTSigningKey   string
	TokenTTL        time.Duration
	PostgresURL     string
	RedisURL        string
	KafkaBrokers    []string
	UploadsDir      string
	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// Empty PostgresURL / RedisURL / KafkaBrokers select the in-memory fallbacks.
func FromEnv() Config {
	addr := os.Getenv("CAMPUSCONNECT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	uploadsDir := os.Getenv("CAMPUSCONNECT_UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}

	var brokers []string
	if raw := os.Getenv("CAMPUSCONNECT_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:            addr,
		JWTSigningKey:   jwtSigningKey,
		TokenTTL:        7 * 24 * time.Hour,
		PostgresURL:     os.Getenv("CAMPUSCONNECT_POSTGRES_URL"),
		RedisURL:        os.Getenv("CAMPUSCONNECT_REDIS_URL"),
		KafkaBrokers:    brokers,
		UploadsDir:      uploadsDir,
		ShutdownTimeout: 10 * time.Second,
	}
}
