package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// PlayerSource lists every active player. The statistics client implements it.
type PlayerSource interface {
	ActivePlayers(ctx context.Context) ([]provider.PlayerRecord, error)
}

// refresher is a PlayerSource that can skip its response cache.
type refresher interface {
	RefreshActivePlayers(ctx context.Context) ([]provider.PlayerRecord, error)
}

// Registry holds the active-player listing. It is fetched on first use and
// kept for the life of the process; a failed load is retried on the next
// call rather than cached.
type Registry struct {
	source PlayerSource
	logger *slog.Logger

	mu      sync.Mutex
	players []provider.PlayerRecord
	loaded  bool
}

// NewRegistry creates a lazily loaded registry.
func NewRegistry(source PlayerSource, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{source: source, logger: logger}
}

// NewStaticRegistry wraps an already loaded listing.
func NewStaticRegistry(players []provider.PlayerRecord) *Registry {
	return &Registry{logger: slog.Default(), players: players, loaded: true}
}

// Players returns the listing, loading it on first call. The returned
// slice must not be modified.
func (r *Registry) Players(ctx context.Context) ([]provider.PlayerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.players, nil
	}

	players, err := r.source.ActivePlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load player registry: %w", err)
	}
	r.players = players
	r.loaded = true
	r.logger.Info("Player registry loaded", "players", len(players))
	return r.players, nil
}

// Resolve resolves one name against the registry.
func (r *Registry) Resolve(ctx context.Context, name, teamHint string) (provider.PlayerID, error) {
	players, err := r.Players(ctx)
	if err != nil {
		return 0, err
	}
	return Resolve(name, teamHint, players)
}

// ResolveRoster resolves a whole roster, failing fast.
func (r *Registry) ResolveRoster(ctx context.Context, entries []provider.RosterEntry) (provider.CanonicalRoster, error) {
	players, err := r.Players(ctx)
	if err != nil {
		return nil, err
	}
	roster, err := ResolveRoster(entries, players)
	if err != nil {
		return nil, fmt.Errorf("resolve roster: %w", err)
	}
	r.logger.Debug("Roster resolved", "players", len(roster))
	return roster, nil
}

// Refresh reloads the listing so trades and signings show up in a
// long-running process. Sources with a response cache are asked to skip it.
// On failure the previous listing stays in use.
func (r *Registry) Refresh(ctx context.Context) error {
	if r.source == nil {
		return nil
	}
	load := r.source.ActivePlayers
	if rs, ok := r.source.(refresher); ok {
		load = rs.RefreshActivePlayers
	}
	players, err := load(ctx)
	if err != nil {
		return fmt.Errorf("refresh player registry: %w", err)
	}

	r.mu.Lock()
	r.players = players
	r.loaded = true
	r.mu.Unlock()
	r.logger.Info("Player registry refreshed", "players", len(players))
	return nil
}
