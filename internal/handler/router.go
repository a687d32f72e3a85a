package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/infra/observability"
	"github.com/fyodorvi/gem-guru/internal/port"
	"github.com/fyodorvi/gem-guru/internal/service"
)

var tracer = otel.Tracer("handler")

// Options carries the deployment-specific knobs the router needs.
type Options struct {
	AllowedOrigins []string
	// DevUserID is injected into every request when authSvc is nil.
	DevUserID string
}

// NewRouter creates the HTTP router with all routes and middleware. When
// authSvc is nil the API runs in single-user mode: login is unavailable and
// every request acts as opts.DevUserID.
func NewRouter(svc *service.GuruService, authSvc *service.AuthService, store port.UserStore, metrics *observability.Metrics, logger *zap.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			if authSvc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "auth unavailable: running in single-user mode")
				}))
				return
			}
			r.Post("/login", authLoginHandler(authSvc, logger))
		})

		// =============================================
		// Repayment tracking (protected)
		// =============================================
		r.Group(func(r chi.Router) {
			if authSvc != nil {
				r.Use(JWTAuthMiddleware(authSvc, logger))
			} else {
				r.Use(DevUserMiddleware(opts.DevUserID))
			}

			r.Get("/profile", getProfileHandler(svc, logger))
			r.Post("/profile", setProfileHandler(svc, logger))

			r.Get("/calculate", calculateHandler(svc, logger))
			r.Get("/projection", projectionHandler(svc, logger))

			r.Post("/purchase/add", addPurchaseHandler(svc, logger))
			r.Post("/purchase/{purchaseId}/update", updatePurchaseHandler(svc, logger))
			r.Post("/purchase/{purchaseId}/delete", removePurchaseHandler(svc, logger))
			r.Post("/purchase/remove-paid-off", removePaidOffHandler(svc, logger))

			r.Post("/statement/parse", parseStatementHandler(svc, logger))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(store port.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "guru-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		_, err := store.LoadUserData(r.Context(), "health-check")
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			status = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "store", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
