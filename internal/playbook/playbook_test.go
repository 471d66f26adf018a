package playbook

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fantasy-playbook/internal/projection"
	"github.com/albapepper/fantasy-playbook/internal/provider"
	"github.com/albapepper/fantasy-playbook/internal/resolver"
)

type fakeRosters struct {
	own, opp []provider.RosterEntry
	err      error
}

func (f *fakeRosters) FetchOwnRoster(context.Context) ([]provider.RosterEntry, error) {
	return f.own, f.err
}

func (f *fakeRosters) FetchOpponentRoster(context.Context) ([]provider.RosterEntry, error) {
	return f.opp, f.err
}

// fakeStats serves a flat per-player average and a fixed schedule.
type fakeStats struct {
	perGame map[provider.PlayerID]map[provider.Category]float64
	games   map[provider.PlayerID]int
}

func (f *fakeStats) FetchGameLog(_ context.Context, id provider.PlayerID) ([]provider.GameLogEntry, error) {
	base, ok := f.perGame[id]
	if !ok {
		return nil, nil
	}
	log := make([]provider.GameLogEntry, 5)
	for i := range log {
		values := make(map[provider.Category]float64, len(provider.Categories))
		for _, c := range provider.Categories {
			values[c] = base[c]
		}
		log[i] = provider.GameLogEntry{Values: values}
	}
	return log, nil
}

func (f *fakeStats) GamesRemainingBeforeWeekEnd(_ context.Context, id provider.PlayerID, _ time.Time) (int, error) {
	return f.games[id], nil
}

var registry = []provider.PlayerRecord{
	{FullName: "Stephen Curry", FirstName: "Stephen", LastName: "Curry", Team: "GSW", ID: 1},
	{FullName: "Seth Curry", FirstName: "Seth", LastName: "Curry", Team: "CHA", ID: 2},
	{FullName: "Nikola Jokić", FirstName: "Nikola", LastName: "Jokić", Team: "DEN", ID: 3},
	{FullName: "Rudy Gobert", FirstName: "Rudy", LastName: "Gobert", Team: "MIN", ID: 4},
}

func fixedClock() time.Time {
	// Wednesday; the week ends Monday 2025-11-10.
	return time.Date(2025, time.November, 5, 19, 30, 0, 0, time.UTC)
}

func newService(rosters Rosters) *Service {
	stats := &fakeStats{
		perGame: map[provider.PlayerID]map[provider.Category]float64{
			1: {provider.FGM: 10, provider.FGA: 20, provider.FTM: 5, provider.FTA: 5, provider.PTS: 30, provider.FG3M: 5, provider.AST: 6, provider.TOV: 3},
			3: {provider.FGM: 10, provider.FGA: 18, provider.FTM: 4, provider.FTA: 5, provider.PTS: 26, provider.REB: 12, provider.AST: 9, provider.TOV: 3},
			4: {provider.FGM: 5, provider.FGA: 7, provider.FTM: 2, provider.FTA: 4, provider.PTS: 12, provider.REB: 12, provider.BLK: 2, provider.TOV: 1},
		},
		games: map[provider.PlayerID]int{1: 3, 3: 2, 4: 4},
	}
	return New(rosters,
		resolver.NewStaticRegistry(registry),
		projection.NewAggregator(stats, 2, nil),
		Options{Clock: fixedClock})
}

func TestProjectRoster(t *testing.T) {
	s := newService(nil)

	report, err := s.ProjectRoster(context.Background(), SideCustom, []provider.RosterEntry{
		{DisplayName: "Stephen Curry", TeamHint: "GSW"},
		{DisplayName: "Nikola Jokic"},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, projection.DefaultLookback, report.Lookback)
	assert.Equal(t, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC), report.Today)
	assert.Equal(t, time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC), report.WeekEnd)
	require.Len(t, report.Players, 2)
	assert.Equal(t, "Nikola Jokic", report.Players[0].Name)

	assert.InDelta(t, 30*3+26*2, report.Totals[provider.PTS], 1e-9)
	assert.InDelta(t, 50.0/96.0, report.Totals[provider.FGPct], 1e-9)
	assert.InDelta(t, 23.0/25.0, report.Totals[provider.FTPct], 1e-9)
}

func TestProjectRoster_UnknownPlayerFailsWholeRoster(t *testing.T) {
	s := newService(nil)

	_, err := s.ProjectRoster(context.Background(), SideCustom, []provider.RosterEntry{
		{DisplayName: "Stephen Curry"},
		{DisplayName: "Michael Jordan"},
	}, 5)
	assert.ErrorIs(t, err, resolver.ErrNotFound)
}

func TestProjectRoster_AmbiguousWithoutHint(t *testing.T) {
	s := newService(nil)

	_, err := s.ProjectRoster(context.Background(), SideCustom, []provider.RosterEntry{
		{DisplayName: "S. Curry"},
	}, 5)
	assert.ErrorIs(t, err, resolver.ErrAmbiguousPlayer)
}

func TestProjectRoster_InsufficientData(t *testing.T) {
	s := newService(nil)

	_, err := s.ProjectRoster(context.Background(), SideCustom, []provider.RosterEntry{
		{DisplayName: "Seth Curry", TeamHint: "CHA"},
	}, 5)
	assert.ErrorIs(t, err, projection.ErrInsufficientData)
}

func TestProjectRoster_NegativeLookback(t *testing.T) {
	_, err := newService(nil).ProjectRoster(context.Background(), SideCustom, nil, -1)
	assert.ErrorIs(t, err, projection.ErrInvalidLookback)
}

func TestProjectRoster_EmptyRosterHasUndefinedPercentages(t *testing.T) {
	report, err := newService(nil).ProjectRoster(context.Background(), SideCustom, nil, 5)
	require.NoError(t, err)
	assert.Zero(t, report.Totals[provider.PTS])
	assert.True(t, math.IsNaN(report.Totals[provider.FGPct]))
}

func TestRosterOperationsNeedFantasyProvider(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	_, err := s.ProjectOwn(ctx, 0)
	assert.ErrorIs(t, err, ErrNoFantasyProvider)
	_, err = s.ProjectOpponent(ctx, 0)
	assert.ErrorIs(t, err, ErrNoFantasyProvider)
	_, err = s.Matchup(ctx, 0)
	assert.ErrorIs(t, err, ErrNoFantasyProvider)
}

func TestRosterFetchErrorPropagates(t *testing.T) {
	boom := errors.New("yahoo down")
	_, err := newService(&fakeRosters{err: boom}).ProjectOwn(context.Background(), 0)
	assert.ErrorIs(t, err, boom)
}

func TestMatchup(t *testing.T) {
	s := newService(&fakeRosters{
		own: []provider.RosterEntry{{DisplayName: "Stephen Curry", TeamHint: "GSW"}},
		opp: []provider.RosterEntry{{DisplayName: "Rudy Gobert", TeamHint: "MIN"}},
	})

	report, err := s.Matchup(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, SideOwn, report.Own.Side)
	assert.Equal(t, SideOpponent, report.Opponent.Side)

	leaders := map[provider.Category]Leader{}
	for _, c := range report.Categories {
		leaders[c.Category] = c.Leader
	}
	// Curry: 3 games, Gobert: 4 games.
	assert.Equal(t, LeaderOpponent, leaders[provider.FGPct]) // 0.50 vs 0.714
	assert.Equal(t, LeaderOwn, leaders[provider.FTPct])      // 1.00 vs 0.50
	assert.Equal(t, LeaderOwn, leaders[provider.PTS])        // 90 vs 48
	assert.Equal(t, LeaderOpponent, leaders[provider.REB])   // 0 vs 48
	assert.Equal(t, LeaderOpponent, leaders[provider.TOV])   // 9 vs 4, lower wins
	assert.Equal(t, LeaderTie, leaders[provider.STL])        // 0 vs 0

	assert.Equal(t, len(ScoredCategories), report.OwnWins+report.OpponentWins+report.Ties)
}

func TestCompare(t *testing.T) {
	own := provider.CategoryTotals{provider.TOV: 10, provider.PTS: 100, provider.FGPct: math.NaN(), provider.FTPct: 0.8}
	opp := provider.CategoryTotals{provider.TOV: 12, provider.PTS: 100, provider.FGPct: 0.45, provider.FTPct: 0.7}

	got := map[provider.Category]Leader{}
	for _, r := range Compare(own, opp) {
		got[r.Category] = r.Leader
	}
	assert.Equal(t, LeaderOwn, got[provider.TOV])
	assert.Equal(t, LeaderTie, got[provider.PTS])
	assert.Equal(t, LeaderTie, got[provider.FGPct])
	assert.Equal(t, LeaderOwn, got[provider.FTPct])
}
