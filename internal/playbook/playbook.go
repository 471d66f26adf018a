// Package playbook wires the roster source, player registry and projection
// aggregator into the operations the CLI and HTTP API expose.
package playbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/fantasy-playbook/internal/calendar"
	"github.com/albapepper/fantasy-playbook/internal/projection"
	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// ErrNoFantasyProvider is returned by roster-driven operations when the
// service was built without a fantasy-league source.
var ErrNoFantasyProvider = errors.New("playbook: fantasy provider not configured")

// Side names whose roster a report covers.
type Side string

const (
	SideOwn      Side = "own"
	SideOpponent Side = "opponent"
	SideCustom   Side = "custom"
)

// Rosters supplies resolver input for both teams. *roster.Adapter
// implements it.
type Rosters interface {
	FetchOwnRoster(ctx context.Context) ([]provider.RosterEntry, error)
	FetchOpponentRoster(ctx context.Context) ([]provider.RosterEntry, error)
}

// Resolver maps roster names to player ids. *resolver.Registry
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, name, teamHint string) (provider.PlayerID, error)
	ResolveRoster(ctx context.Context, entries []provider.RosterEntry) (provider.CanonicalRoster, error)
}

// Projector produces per-player projections for a resolved roster.
// *projection.Aggregator implements it.
type Projector interface {
	RosterBreakdown(ctx context.Context, roster provider.CanonicalRoster, numGame int, today time.Time) ([]projection.PlayerProjection, error)
}

// Options tune a Service. Zero values fall back to defaults.
type Options struct {
	Lookback int
	Clock    calendar.Clock
	Logger   *slog.Logger
}

// Service runs projections end to end.
type Service struct {
	rosters   Rosters
	resolver  Resolver
	projector Projector
	lookback  int
	clock     calendar.Clock
	logger    *slog.Logger
}

// New creates a Service. rosters may be nil when only explicit rosters
// and name resolution are needed.
func New(rosters Rosters, resolver Resolver, projector Projector, opts Options) *Service {
	if opts.Lookback == 0 {
		opts.Lookback = projection.DefaultLookback
	}
	if opts.Clock == nil {
		opts.Clock = calendar.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		rosters:   rosters,
		resolver:  resolver,
		projector: projector,
		lookback:  opts.Lookback,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Report is a projected week for one roster.
type Report struct {
	Side     Side                          `json:"side"`
	Today    time.Time                     `json:"today"`
	WeekEnd  time.Time                     `json:"week_end"`
	Lookback int                           `json:"lookback"`
	Players  []projection.PlayerProjection `json:"players"`
	Totals   provider.CategoryTotals       `json:"totals"`
}

// Lookback returns the default lookback window.
func (s *Service) Lookback() int { return s.lookback }

// Resolve maps a single name to a player id.
func (s *Service) Resolve(ctx context.Context, name, teamHint string) (provider.PlayerID, error) {
	return s.resolver.Resolve(ctx, name, teamHint)
}

// ProjectOwn projects the logged-in team. numGame of zero selects the
// default lookback.
func (s *Service) ProjectOwn(ctx context.Context, numGame int) (*Report, error) {
	if s.rosters == nil {
		return nil, ErrNoFantasyProvider
	}
	entries, err := s.rosters.FetchOwnRoster(ctx)
	if err != nil {
		return nil, err
	}
	return s.ProjectRoster(ctx, SideOwn, entries, numGame)
}

// ProjectOpponent projects this week's opponent.
func (s *Service) ProjectOpponent(ctx context.Context, numGame int) (*Report, error) {
	if s.rosters == nil {
		return nil, ErrNoFantasyProvider
	}
	entries, err := s.rosters.FetchOpponentRoster(ctx)
	if err != nil {
		return nil, err
	}
	return s.ProjectRoster(ctx, SideOpponent, entries, numGame)
}

// ProjectRoster resolves entries and projects them through the end of
// the current scoring week.
func (s *Service) ProjectRoster(ctx context.Context, side Side, entries []provider.RosterEntry, numGame int) (*Report, error) {
	if numGame == 0 {
		numGame = s.lookback
	}
	if numGame < 0 {
		return nil, projection.ErrInvalidLookback
	}

	canonical, err := s.resolver.ResolveRoster(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("resolve %s roster: %w", side, err)
	}

	today := calendar.Date(s.clock())
	players, err := s.projector.RosterBreakdown(ctx, canonical, numGame, today)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Side:     side,
		Today:    today,
		WeekEnd:  calendar.EndOfCurrentWeek(today),
		Lookback: numGame,
		Players:  players,
		Totals:   projection.Totals(players),
	}
	s.logger.Info("Roster projected",
		"side", side,
		"players", len(players),
		"week_end", report.WeekEnd.Format(time.DateOnly))
	return report, nil
}
