// Command api is the Fantasy Data API server.
//
// Usage:
//
//	fantasy-api
//	API_PORT=8080 fantasy-api

// @title Fantasy Data API
// @version 1.0.0
// @description Fantasy sports data API: Yahoo OAuth, player search and stats, stat-vector similarity prediction, and model-generated forecasts.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/gridline/fantasy-data/internal/api"
	"github.com/gridline/fantasy-data/internal/auth"
	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/db"
	"github.com/gridline/fantasy-data/internal/predict"
	"github.com/gridline/fantasy-data/internal/vector"
	"github.com/gridline/fantasy-data/internal/yahoo"

	_ "github.com/gridline/fantasy-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Vector store backend
	var pool *db.Pool
	var index vector.Index
	switch cfg.VectorBackend {
	case "postgres":
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		index = vector.NewPostgresIndex(pool, logger)
	default:
		index, err = vector.NewPineconeIndex(cfg.PineconeAPIKey, cfg.VectorIndexName,
			cfg.PineconeCloud, cfg.PineconeRegion, logger)
		if err != nil {
			logger.Error("Failed to create vector index client", "error", err)
			os.Exit(1)
		}
	}
	engine := vector.NewEngine(index, logger)

	// Warm index readiness in the background; first Store retries if needed.
	go func() {
		if err := engine.EnsureReady(ctx); err != nil {
			logger.Warn("Vector index not ready yet", "error", err)
		}
	}()

	// OAuth flow and token store
	flow := auth.NewFlow(cfg.YahooClientID, cfg.YahooClientSecret, cfg.YahooRedirectURI,
		config.YahooAuthURL, config.YahooTokenURL, config.OAuthScope, logger)
	tokens := auth.NewCookieStore(cfg.IsProduction())

	// Provider client and aggregation service
	appCache := cache.New(cfg.CacheEnabled)
	client := yahoo.NewClient(config.YahooAPIBase, cfg.ProviderRateLimit, cfg.ProviderTimeout, logger)
	fantasy := yahoo.NewService(client, engine, appCache, logger)

	// Generative prediction (optional)
	var predictor *predict.Service
	if cfg.GeminiAPIKey != "" {
		predictor = predict.NewService(predict.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel), logger)
		logger.Info("Prediction model configured", "model", cfg.GeminiModel)
	} else {
		logger.Info("Prediction model disabled (no GOOGLE_AI_API_KEY)")
	}

	// Create router
	router := api.NewRouter(api.Deps{
		Config:    cfg,
		Flow:      flow,
		Tokens:    tokens,
		Fantasy:   fantasy,
		Engine:    engine,
		Predictor: predictor,
		Cache:     appCache,
		Pool:      pool,
		Logger:    logger,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Fantasy Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"vector_backend", cfg.VectorBackend,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
