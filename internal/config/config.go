package config

import (
	"os"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string

	ListenAddr string

	// APIKey is the bearer token allowed to record metrics. If empty,
	// a key is generated and logged at startup.
	APIKey string

	// SummaryExportInterval controls how often the background worker
	// refreshes the Prometheus summary gauges.
	SummaryExportInterval time.Duration
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:           os.Getenv("APP_DATABASE_URL"),
		ListenAddr:            getenv("APP_LISTEN_ADDR", ":8080"),
		APIKey:                getenv("APP_API_KEY", ""),
		SummaryExportInterval: 15 * time.Minute,
	}

	if v := os.Getenv("APP_SUMMARY_EXPORT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SummaryExportInterval = d
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
