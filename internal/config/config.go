package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// CORS
	AllowedOrigins []string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries          int
	InitialBackoff      time.Duration
	MaxConcurrentParses int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Persistence. Supabase when configured, local SQLite otherwise.
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	UseSupabase        bool
	SQLitePath         string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Dev mode. AUTH_DISABLED=true skips JWT checks and serves a single
	// local user, for running against a local SQLite file.
	AuthDisabled bool
	DevUserID    string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:          getEnvInt("MAX_RETRIES", 3),
		InitialBackoff:      getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrentParses: getEnvInt("MAX_CONCURRENT_PARSES", 4),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		UseSupabase:        getEnv("USE_SUPABASE", "false") == "true",
		SQLitePath:         getEnv("SQLITE_PATH", "guru.db"),

		JWTSecret:    getEnv("JWT_SECRET", "guru-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),

		AuthDisabled: getEnv("AUTH_DISABLED", "false") == "true",
		DevUserID:    getEnv("DEV_USER_ID", "local"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
