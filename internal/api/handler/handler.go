// Package handler provides HTTP handlers for all API endpoints. Handlers
// stay thin: token handling goes through the auth flow, provider access
// through the fantasy service, and persistence through the vector engine.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gridline/fantasy-data/internal/api/respond"
	"github.com/gridline/fantasy-data/internal/auth"
	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/db"
	"github.com/gridline/fantasy-data/internal/predict"
	"github.com/gridline/fantasy-data/internal/vector"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	cfg       *config.Config
	flow      *auth.Flow
	tokens    *auth.CookieStore
	fantasy   *yahoo.Service
	engine    *vector.Engine
	predictor *predict.Service
	cache     *cache.Cache
	pool      *db.Pool // nil when the vector backend is Pinecone
	logger    *slog.Logger
}

// New creates a Handler with shared dependencies. predictor and pool may be
// nil when the corresponding backends are not configured.
func New(cfg *config.Config, flow *auth.Flow, tokens *auth.CookieStore, fantasy *yahoo.Service,
	engine *vector.Engine, predictor *predict.Service, c *cache.Cache, pool *db.Pool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		flow:      flow,
		tokens:    tokens,
		fantasy:   fantasy,
		engine:    engine,
		predictor: predictor,
		cache:     c,
		pool:      pool,
		logger:    logger,
	}
}

// requireTokens loads and validates the caller's token record, refreshing it
// when expired. A missing or unrefreshable record writes a 401 and returns
// ok=false; a refreshed record is re-saved before the handler proceeds.
func (h *Handler) requireTokens(w http.ResponseWriter, r *http.Request) (auth.TokenRecord, bool) {
	rec, ok := h.tokens.Load(r)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
		return auth.TokenRecord{}, false
	}
	valid, refreshed, err := h.flow.EnsureValid(r.Context(), rec)
	if err != nil {
		h.tokens.Clear(w)
		respond.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
		return auth.TokenRecord{}, false
	}
	if refreshed {
		h.tokens.Save(w, valid)
	}
	return valid, true
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Fantasy Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when the Postgres vector backend is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not_configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckVector reports vector index readiness.
// @Summary Vector index health check
// @Description Reports whether the similarity index has passed a readiness check.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/vector [get]
func (h *Handler) HealthCheckVector(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.engine.Ready() {
		// Readiness is established lazily; not ready yet is degraded, not down.
		status = "initializing"
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"backend":   h.cfg.VectorBackend,
		"ready":     h.engine.Ready(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
