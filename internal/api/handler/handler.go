// Package handler provides HTTP handlers for all API endpoints. Handlers
// delegate to the playbook service and translate its errors into the
// standard error shape.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/fantasy-playbook/internal/api/respond"
	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// Playbook is the service surface the handlers use. *playbook.Service
// implements it.
type Playbook interface {
	ProjectOwn(ctx context.Context, numGame int) (*playbook.Report, error)
	ProjectOpponent(ctx context.Context, numGame int) (*playbook.Report, error)
	ProjectRoster(ctx context.Context, side playbook.Side, entries []provider.RosterEntry, numGame int) (*playbook.Report, error)
	Matchup(ctx context.Context, numGame int) (*playbook.MatchupReport, error)
	Resolve(ctx context.Context, name, teamHint string) (provider.PlayerID, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	svc     Playbook
	cache   cache.Store
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Handler with shared dependencies. timeout bounds a single
// projection request, which fans out into many provider calls.
func New(svc Playbook, c cache.Store, timeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Handler{svc: svc, cache: c, logger: logger, timeout: timeout}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Fantasy Playbook API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": []string{
			"/api/v1/projection/own",
			"/api/v1/projection/opponent",
			"/api/v1/projection",
			"/api/v1/matchup",
			"/api/v1/players/resolve",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns provider response cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if hc, ok := h.cache.(interface{ HealthCheck(context.Context) error }); ok {
		if err := hc.HealthCheck(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["error"] = err.Error()
		}
	}
	respond.WriteJSONObject(w, status, body)
}
