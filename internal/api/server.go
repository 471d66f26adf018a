// Package api assembles the HTTP router: middleware, CORS and the
// projection routes.
package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/albapepper/fantasy-playbook/internal/api/handler"
	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/config"
)

// requestTimeout bounds one projection request end to end.
const requestTimeout = 2 * time.Minute

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(svc handler.Playbook, store cache.Store, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Request-Id"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(svc, store, requestTimeout, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/cache", h.HealthCheckCache)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Projections
		r.Get("/projection/own", h.GetOwnProjection)
		r.Get("/projection/opponent", h.GetOpponentProjection)
		r.Post("/projection", h.PostRosterProjection)
		r.Get("/matchup", h.GetMatchup)

		// Players
		r.Get("/players/resolve", h.ResolvePlayer)
	})

	return r
}
