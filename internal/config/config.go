// Package config provides centralized configuration loaded from environment
// variables. Shared by every playbook subcommand.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Statistics provider
	NBAStatsBaseURL        string
	NBAStatsRequestsPerMin int
	NBAStatsTimeout        time.Duration
	NBAStatsMaxRetries     int
	NBASeason              string // empty means the season in progress

	// Fantasy provider
	YahooBaseURL      string
	YahooClientID     string
	YahooClientSecret string
	YahooTokenFile    string
	YahooGameCode     string

	// Projection
	LookbackGames int
	FetchWorkers  int
	Timezone      string
	Location      *time.Location

	// Cache
	CacheEnabled bool
	RedisURL     string // empty selects the in-process cache

	// Background tasks while serving; zero disables
	// Both bypass cached responses, so any interval yields fresh data.
	RegistryRefreshInterval time.Duration
	CacheWarmInterval       time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	LogLevel    string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		NBAStatsBaseURL:        envOr("NBA_STATS_BASE_URL", "https://stats.nba.com/stats"),
		NBAStatsRequestsPerMin: envInt("NBA_STATS_REQUESTS_PER_MINUTE", 30),
		NBAStatsTimeout:        envDuration("NBA_STATS_TIMEOUT_SECONDS", 30*time.Second),
		NBAStatsMaxRetries:     envInt("NBA_STATS_MAX_RETRIES", 3),
		NBASeason:              envOr("NBA_SEASON", ""),

		YahooBaseURL:      envOr("YAHOO_BASE_URL", "https://fantasysports.yahooapis.com/fantasy/v2"),
		YahooClientID:     envOr("YAHOO_CLIENT_ID", ""),
		YahooClientSecret: envOr("YAHOO_CLIENT_SECRET", ""),
		YahooTokenFile:    envOr("YAHOO_TOKEN_FILE", "yahoo_token.json"),
		YahooGameCode:     envOr("YAHOO_GAME_CODE", "nba"),

		LookbackGames: envInt("LOOKBACK_GAMES", 5),
		FetchWorkers:  envInt("FETCH_WORKERS", 4),
		Timezone:      envOr("TIMEZONE", "America/New_York"),

		CacheEnabled: envBool("CACHE_ENABLED", true),
		RedisURL:     envOr("REDIS_URL", ""),

		RegistryRefreshInterval: envDuration("REGISTRY_REFRESH_INTERVAL", 24*time.Hour),
		CacheWarmInterval:       envDuration("CACHE_WARM_INTERVAL", 0),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", 60*time.Second),
	}

	if cfg.LookbackGames <= 0 {
		return nil, fmt.Errorf("LOOKBACK_GAMES must be positive, got %d", cfg.LookbackGames)
	}
	if cfg.FetchWorkers <= 0 {
		return nil, fmt.Errorf("FETCH_WORKERS must be positive, got %d", cfg.FetchWorkers)
	}
	if cfg.RateLimitEnabled && cfg.RateLimitRequests <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitEnabled && cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", cfg.RateLimitWindow)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasYahooCredentials reports whether the fantasy provider can be used.
func (c *Config) HasYahooCredentials() bool {
	return c.YahooClientID != "" && c.YahooClientSecret != ""
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

// envDuration accepts a Go duration ("90s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
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
