// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Provider constants: Yahoo Fantasy Sports OAuth2 + REST API
// --------------------------------------------------------------------------

const (
	YahooAuthURL  = "https://api.login.yahoo.com/oauth2/request_auth"
	YahooTokenURL = "https://api.login.yahoo.com/oauth2/get_token"
	YahooAPIBase  = "https://fantasysports.yahooapis.com/fantasy/v2"

	// OAuthScope is the read-only fantasy sports scope.
	OAuthScope = "fspt-r"
)

// RegularSeasonWeeks is the number of per-week stat fetches issued for a
// league-scoped stats request (weeks 1..17).
const RegularSeasonWeeks = 17

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (inbound)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Yahoo OAuth2
	YahooClientID     string
	YahooClientSecret string
	YahooRedirectURI  string

	// Provider client
	ProviderTimeout   time.Duration
	ProviderRateLimit int // requests per minute

	// UI landing route for auth redirects
	AuthLandingPath string

	// Vector store
	VectorBackend   string // "pinecone" or "postgres"
	VectorIndexName string
	PineconeAPIKey  string
	PineconeCloud   string
	PineconeRegion  string

	// Postgres (pgvector backend)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Text generation (prediction commentary)
	GeminiAPIKey string
	GeminiModel  string

	// Cache (game-key lookups only)
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	clientID := envOr("YAHOO_CLIENT_ID", "")
	clientSecret := envOr("YAHOO_CLIENT_SECRET", "")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("YAHOO_CLIENT_ID and YAHOO_CLIENT_SECRET must be set")
	}

	cfg := &Config{
		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"https://localhost:3003",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		YahooClientID:     clientID,
		YahooClientSecret: clientSecret,
		YahooRedirectURI:  envOr("YAHOO_REDIRECT_URI", "https://localhost:3003/api/v1/auth/start"),

		ProviderTimeout:   time.Duration(envInt("PROVIDER_TIMEOUT_SECONDS", 15)) * time.Second,
		ProviderRateLimit: envInt("PROVIDER_REQUESTS_PER_MINUTE", 60),

		AuthLandingPath: envOr("AUTH_LANDING_PATH", "/fantasy"),

		VectorBackend:   strings.ToLower(envOr("VECTOR_BACKEND", "pinecone")),
		VectorIndexName: envOr("VECTOR_INDEX_NAME", "fantasy-football-stats"),
		PineconeAPIKey:  envOr("PINECONE_API_KEY", ""),
		PineconeCloud:   envOr("PINECONE_CLOUD", "aws"),
		PineconeRegion:  envOr("PINECONE_REGION", "us-east-1"),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		GeminiAPIKey: envOr("GOOGLE_AI_API_KEY", ""),
		GeminiModel:  envOr("GOOGLE_AI_MODEL", "gemini-1.5-flash"),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}

	switch cfg.VectorBackend {
	case "pinecone":
		if cfg.PineconeAPIKey == "" {
			return nil, fmt.Errorf("PINECONE_API_KEY must be set when VECTOR_BACKEND=pinecone")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set when VECTOR_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q (want pinecone or postgres)", cfg.VectorBackend)
	}

	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
