package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/api/handlers"
	"github.com/offerpilot/offerpilot/internal/api/middleware"
	"github.com/offerpilot/offerpilot/internal/observability"
	"github.com/offerpilot/offerpilot/internal/repository/postgres"
	rediscache "github.com/offerpilot/offerpilot/internal/repository/redis"
	"github.com/offerpilot/offerpilot/internal/resilience"
	"github.com/offerpilot/offerpilot/internal/services/analysis"
	"github.com/offerpilot/offerpilot/pkg/httputil"
)

// Router holds the HTTP router and its dependencies
type Router struct {
	chi.Router
	logger *zap.Logger
}

// RouterConfig contains configuration for the router
type RouterConfig struct {
	Service     *analysis.Service
	ConfigStore rediscache.ConfigStore
	DB          *postgres.DB
	Cache       *rediscache.Cache
	Breakers    *resilience.Manager
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	EnableCORS  bool
	RateLimit   int
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Handler)
	r.Use(chimw.Timeout(120 * time.Second))

	// The widget embeds on customer sites, so cross-origin calls are the
	// normal case, not the exception.
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Rate limiting (if Redis is available)
	if cfg.Cache != nil && cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimitMiddleware(cfg.Cache, cfg.RateLimit, true).Handler)
	}

	// Health check endpoints
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.DB, cfg.Cache, cfg.Breakers))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		analyzeHandler := handlers.NewAnalyzeHandler(cfg.Service, cfg.Logger)
		assessmentHandler := handlers.NewAssessmentHandler(cfg.Service, cfg.Logger)
		adsHandler := handlers.NewAdsHandler(cfg.Service, cfg.Logger)
		offersHandler := handlers.NewOffersHandler(cfg.Service, cfg.Logger)
		widgetHandler := handlers.NewWidgetHandler(cfg.ConfigStore, cfg.Logger)

		r.Post("/analyze", analyzeHandler.Analyze)
		r.Post("/assessments", assessmentHandler.Score)
		r.Get("/ads/search", adsHandler.Search)
		r.Get("/leads/{lead_id}/offers", offersHandler.ListByLead)

		r.Route("/widgets/{widget_id}/config", func(r chi.Router) {
			r.Get("/", widgetHandler.GetConfig)
			r.Put("/", widgetHandler.PutConfig)
		})
	})

	return &Router{
		Router: r,
		logger: cfg.Logger,
	}
}

// healthHandler returns basic health status
func healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "offerpilot-api",
	})
}

// readyHandler checks if the optional dependencies are ready. Neither
// Postgres nor Redis is required to serve an analysis, so absence reads
// as "not configured" rather than unhealthy.
func readyHandler(db *postgres.DB, cache *rediscache.Cache, breakers *resilience.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		allHealthy := true

		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				checks["database"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["database"] = "healthy"
			}
		} else {
			checks["database"] = "not configured"
		}

		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				checks["redis"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["redis"] = "healthy"
			}
		} else {
			checks["redis"] = "not configured"
		}

		// An open breaker degrades responses but does not make the
		// process unready; it is reported for operators, not probes.
		if breakers != nil {
			for name, state := range breakers.AllStates() {
				checks["breaker:"+name] = state.String()
			}
		}

		status := http.StatusOK
		statusText := "ready"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}

		httputil.JSON(w, status, map[string]any{
			"status": statusText,
			"checks": checks,
		})
	}
}
