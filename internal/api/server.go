package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/gridline/fantasy-data/internal/api/handler"
	"github.com/gridline/fantasy-data/internal/auth"
	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/db"
	"github.com/gridline/fantasy-data/internal/predict"
	"github.com/gridline/fantasy-data/internal/vector"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// Deps carries everything the router needs. Predictor and Pool may be nil
// when their backends are not configured.
type Deps struct {
	Config    *config.Config
	Flow      *auth.Flow
	Tokens    *auth.CookieStore
	Fantasy   *yahoo.Service
	Engine    *vector.Engine
	Predictor *predict.Service
	Cache     *cache.Cache
	Pool      *db.Pool
	Logger    *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps Deps) *chi.Mux {
	cfg := deps.Config
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS. Credentials are required because tokens travel as cookies.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(cfg, deps.Flow, deps.Tokens, deps.Fantasy, deps.Engine,
		deps.Predictor, deps.Cache, deps.Pool, deps.Logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/vector", h.HealthCheckVector)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// OAuth
		r.Get("/auth/start", h.AuthStart)
		r.Get("/auth/check", h.AuthCheck)
		r.Post("/auth/logout", h.Logout)

		// Players
		r.Get("/players/search", h.SearchPlayers)
		r.Get("/players/stats", h.GetPlayerStats)

		// Leagues
		r.Get("/leagues", h.GetLeagues)

		// Prediction
		r.Post("/predict", h.PredictPerformance)
		r.Post("/predict/points", h.PredictPoints)
	})

	return r
}
