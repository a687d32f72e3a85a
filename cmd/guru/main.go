package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/config"
	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/handler"
	"github.com/fyodorvi/gem-guru/internal/infra/cache"
	"github.com/fyodorvi/gem-guru/internal/infra/observability"
	"github.com/fyodorvi/gem-guru/internal/infra/pdftext"
	"github.com/fyodorvi/gem-guru/internal/infra/resilience"
	"github.com/fyodorvi/gem-guru/internal/infra/sqlite"
	"github.com/fyodorvi/gem-guru/internal/infra/supabase"
	"github.com/fyodorvi/gem-guru/internal/port"
	"github.com/fyodorvi/gem-guru/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Bool("auth_disabled", cfg.AuthDisabled),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrent_parses", cfg.MaxConcurrentParses),
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(ctx, "gem-guru", cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	calcCache := cache.New[*domain.Calculation](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}
	parseSem := resilience.NewBulkhead(cfg.MaxConcurrentParses)

	// --- Stores ---
	var (
		userStore port.UserStore
		authStore port.AuthStore
	)

	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		supabaseClient := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase"),
			resilienceCfg,
			logger,
		)
		userStore = supabase.NewUserStore(supabaseClient)
		authStore = supabase.NewAuthStore(supabaseClient)
	} else {
		logger.Info("using local SQLite as data backend",
			zap.String("path", cfg.SQLitePath),
		)
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite store", zap.Error(err))
		}
		defer store.Close()
		userStore = store
	}

	// --- Services ---
	guruSvc := service.NewGuruService(
		userStore,
		pdftext.New(),
		calcCache,
		parseSem,
		metrics,
		logger,
	)

	var authSvc *service.AuthService
	if authStore != nil && !cfg.AuthDisabled {
		authSvc = service.NewAuthService(authStore, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
		logger.Info("auth service enabled")
	} else {
		logger.Warn("auth disabled, running in single-user mode",
			zap.String("dev_user_id", cfg.DevUserID),
		)
	}

	// --- Router ---
	router := handler.NewRouter(guruSvc, authSvc, userStore, metrics, logger, handler.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		DevUserID:      cfg.DevUserID,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
