// Package stats fetches per-player game logs and future schedules from the
// statistics provider and projects the tabular responses into typed
// records.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/albapepper/fantasy-playbook/internal/calendar"
	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// Column names the statistics provider uses.
const (
	ColGameDate = "GAME_DATE"
)

// TableSource is the statistics provider as the fetcher sees it.
type TableSource interface {
	PlayerGameLog(ctx context.Context, id provider.PlayerID) (*provider.Table, error)
	PlayerNextGames(ctx context.Context, id provider.PlayerID) (*provider.Table, error)
}

// Fetcher retrieves per-player data.
type Fetcher struct {
	source TableSource
	logger *slog.Logger
}

// NewFetcher creates a Fetcher over source.
func NewFetcher(source TableSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{source: source, logger: logger}
}

// FetchGameLog returns the player's game log, most recent game first.
func (f *Fetcher) FetchGameLog(ctx context.Context, id provider.PlayerID) ([]provider.GameLogEntry, error) {
	table, err := f.source.PlayerGameLog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch game log for %d: %w", id, err)
	}
	entries, err := ProjectGameLog(table)
	if err != nil {
		return nil, fmt.Errorf("game log for %d: %w", id, err)
	}
	return entries, nil
}

// FetchFutureGames returns the player's scheduled game dates, ascending.
// The provider is expected to return them ascending; if it does not, the
// dates are sorted and a warning is logged.
func (f *Fetcher) FetchFutureGames(ctx context.Context, id provider.PlayerID) ([]time.Time, error) {
	table, err := f.source.PlayerNextGames(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule for %d: %w", id, err)
	}
	dates, err := ProjectSchedule(table)
	if err != nil {
		return nil, fmt.Errorf("schedule for %d: %w", id, err)
	}
	if !sort.SliceIsSorted(dates, func(i, j int) bool { return dates[i].Before(dates[j]) }) {
		f.logger.Warn("Schedule not in ascending order, sorting", "player_id", id, "games", len(dates))
		sort.SliceStable(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}
	return dates, nil
}

// GamesRemainingBeforeWeekEnd counts scheduled games before the next Monday.
func (f *Fetcher) GamesRemainingBeforeWeekEnd(ctx context.Context, id provider.PlayerID, today time.Time) (int, error) {
	dates, err := f.FetchFutureGames(ctx, id)
	if err != nil {
		return 0, err
	}
	return GamesBefore(dates, calendar.EndOfCurrentWeek(today)), nil
}

// GamesBefore counts the prefix of ascending dates strictly before
// boundary, stopping at the first date on or after it.
func GamesBefore(dates []time.Time, boundary time.Time) int {
	n := 0
	for _, d := range dates {
		if !d.Before(boundary) {
			break
		}
		n++
	}
	return n
}

// --------------------------------------------------------------------------
// Projection from tabular responses
// --------------------------------------------------------------------------

// ProjectGameLog converts a game log result set into entries, keeping only
// the fixed categories and the game date. Missing category columns, and
// null cells, are left out of Values rather than zeroed.
func ProjectGameLog(t *provider.Table) ([]provider.GameLogEntry, error) {
	dateCol := t.Column(ColGameDate)
	if dateCol < 0 {
		return nil, fmt.Errorf("result set %q has no %s column", t.Name, ColGameDate)
	}

	catCols := make(map[provider.Category]int, len(provider.Categories))
	for _, c := range provider.Categories {
		if i := t.Column(string(c)); i >= 0 {
			catCols[c] = i
		}
	}

	entries := make([]provider.GameLogEntry, 0, len(t.Rows))
	for n, row := range t.Rows {
		date, err := parseDateCell(provider.Cell(row, dateCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		values := make(map[provider.Category]float64, len(catCols))
		for c, i := range catCols {
			if v, ok := provider.ExtractValue(provider.Cell(row, i)); ok {
				values[c] = v
			}
		}
		entries = append(entries, provider.GameLogEntry{Date: date, Values: values})
	}
	return entries, nil
}

// ProjectSchedule extracts game dates from a next-games result set, in
// provider order.
func ProjectSchedule(t *provider.Table) ([]time.Time, error) {
	dateCol := t.Column(ColGameDate)
	if dateCol < 0 {
		return nil, fmt.Errorf("result set %q has no %s column", t.Name, ColGameDate)
	}
	dates := make([]time.Time, 0, len(t.Rows))
	for n, row := range t.Rows {
		d, err := parseDateCell(provider.Cell(row, dateCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func parseDateCell(v interface{}) (time.Time, error) {
	s, ok := provider.ExtractString(v)
	if !ok {
		return time.Time{}, &calendar.ParseError{Input: fmt.Sprint(v), Reason: "not a string"}
	}
	return calendar.ParseProviderDate(s)
}
