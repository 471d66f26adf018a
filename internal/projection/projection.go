// Package projection turns per-player recent averages and remaining-game
// counts into roster-wide weekly category totals.
package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// DefaultLookback is the number of recent games averaged when the caller
// does not say otherwise.
const DefaultLookback = 5

// ErrInvalidLookback is returned for a lookback window below one game.
var ErrInvalidLookback = errors.New("projection: lookback window must be at least one game")

// ErrInsufficientData matches every *InsufficientDataError.
var ErrInsufficientData = errors.New("projection: insufficient game log")

// InsufficientDataError means a player has fewer logged games carrying a
// category than the lookback window.
type InsufficientDataError struct {
	Category provider.Category
	Have     int
	Want     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("need %d games with %s, have %d", e.Want, e.Category, e.Have)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// PlayerCategoryAverage averages each fixed category over the first
// numGame entries of log (most recent first).
func PlayerCategoryAverage(log []provider.GameLogEntry, numGame int) (map[provider.Category]float64, error) {
	if numGame <= 0 {
		return nil, ErrInvalidLookback
	}
	window := log
	if len(window) > numGame {
		window = window[:numGame]
	}

	avg := make(map[provider.Category]float64, len(provider.Categories))
	for _, c := range provider.Categories {
		sum, have := 0.0, 0
		for _, g := range window {
			if v, ok := g.Values[c]; ok {
				sum += v
				have++
			}
		}
		if have < numGame {
			return nil, &InsufficientDataError{Category: c, Have: have, Want: numGame}
		}
		avg[c] = sum / float64(numGame)
	}
	return avg, nil
}

// PlayerProjection is one roster member's contribution.
type PlayerProjection struct {
	Name      string                        `json:"name"`
	ID        provider.PlayerID             `json:"id"`
	GamesLeft int                           `json:"games_left"`
	Averages  map[provider.Category]float64 `json:"averages"`
}

// Totals sums averages times games left across players and derives the
// shooting percentages. A zero attempts total leaves the percentage NaN.
func Totals(players []PlayerProjection) provider.CategoryTotals {
	totals := make(provider.CategoryTotals, len(provider.Categories)+2)
	for _, c := range provider.Categories {
		totals[c] = 0
	}
	for _, p := range players {
		games := float64(p.GamesLeft)
		for _, c := range provider.Categories {
			totals[c] += p.Averages[c] * games
		}
	}
	totals[provider.FGPct] = ratio(totals[provider.FGM], totals[provider.FGA])
	totals[provider.FTPct] = ratio(totals[provider.FTM], totals[provider.FTA])
	return totals
}

func ratio(made, attempted float64) float64 {
	if attempted == 0 {
		return math.NaN()
	}
	return made / attempted
}

// --------------------------------------------------------------------------
// Aggregator
// --------------------------------------------------------------------------

// StatsSource is what the aggregator needs per player. *stats.Fetcher
// implements it.
type StatsSource interface {
	FetchGameLog(ctx context.Context, id provider.PlayerID) ([]provider.GameLogEntry, error)
	GamesRemainingBeforeWeekEnd(ctx context.Context, id provider.PlayerID, today time.Time) (int, error)
}

// Aggregator projects whole rosters.
type Aggregator struct {
	stats   StatsSource
	workers int
	logger  *slog.Logger
}

// NewAggregator creates an Aggregator. workers bounds concurrent per-player
// fetches; values below one mean sequential.
func NewAggregator(stats StatsSource, workers int, logger *slog.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{stats: stats, workers: workers, logger: logger}
}

// RosterBreakdown projects every roster member. The result is ordered by
// name regardless of fetch completion order. Any player failure aborts the
// whole call.
func (a *Aggregator) RosterBreakdown(ctx context.Context, roster provider.CanonicalRoster, numGame int, today time.Time) ([]PlayerProjection, error) {
	if numGame <= 0 {
		return nil, ErrInvalidLookback
	}

	names := make([]string, 0, len(roster))
	for name := range roster {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]PlayerProjection, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, name := range names {
		i, name, id := i, name, roster[name]
		g.Go(func() error {
			p, err := a.projectPlayer(gctx, name, id, numGame, today)
			if err != nil {
				return fmt.Errorf("project %s (%d): %w", name, id, err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RosterProjection returns projected category totals for the roster over
// the rest of the scoring week. It is the entry point for callers that only
// need totals; callers that also report per-player lines use RosterBreakdown
// and Totals, which give the same sums.
func (a *Aggregator) RosterProjection(ctx context.Context, roster provider.CanonicalRoster, numGame int, today time.Time) (provider.CategoryTotals, error) {
	start := time.Now()
	players, err := a.RosterBreakdown(ctx, roster, numGame, today)
	if err != nil {
		return nil, err
	}
	totals := Totals(players)
	a.logger.Info("Roster projected",
		"players", len(players),
		"lookback", numGame,
		"duration", time.Since(start).Round(time.Millisecond))
	return totals, nil
}

func (a *Aggregator) projectPlayer(ctx context.Context, name string, id provider.PlayerID, numGame int, today time.Time) (PlayerProjection, error) {
	log, err := a.stats.FetchGameLog(ctx, id)
	if err != nil {
		return PlayerProjection{}, err
	}
	avg, err := PlayerCategoryAverage(log, numGame)
	if err != nil {
		return PlayerProjection{}, err
	}
	left, err := a.stats.GamesRemainingBeforeWeekEnd(ctx, id, today)
	if err != nil {
		return PlayerProjection{}, err
	}
	a.logger.Debug("Player projected", "name", name, "player_id", id, "games_left", left)
	return PlayerProjection{Name: name, ID: id, GamesLeft: left, Averages: avg}, nil
}
