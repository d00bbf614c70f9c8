package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DSN          string
	Port         string
	LinksFile    string
	ProxyURL     string
	SyncInterval time.Duration
}

// Load reads configuration from the environment (and .env when present).
// DB_DSN wins; otherwise the DSN is assembled from the individual DB_* /
// POSTGRES_* variables with local-development defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DSN:          strings.TrimSpace(os.Getenv("DB_DSN")),
		Port:         envOr("PORT", "8080"),
		LinksFile:    envOr("LINKS_FILE", "links.txt"),
		ProxyURL:     strings.TrimSpace(os.Getenv("STATIC_URL")),
		SyncInterval: 24 * time.Hour,
	}

	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SYNC_INTERVAL: %w", err)
		}
		cfg.SyncInterval = d
	}

	if cfg.DSN == "" {
		host := envOr("DB_HOST", "localhost")
		port := envOr("DB_PORT", "5432")
		user := firstEnv("DB_USER", "POSTGRES_USER", "postgres")
		pass := firstEnv("DB_PASSWORD", "POSTGRES_PASSWORD", "postgres")
		name := firstEnv("DB_NAME", "POSTGRES_DB", "shopfeed")
		ssl := envOr("DB_SSLMODE", "disable")
		cfg.DSN = "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// firstEnv returns the first non-empty variable, falling back to def.
func firstEnv(key, alt, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(alt)); v != "" {
		return v
	}
	return def
}
