package nbastats

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/provider"
)

const (
	colPersonID       = "PERSON_ID"
	colLastCommaFirst = "DISPLAY_LAST_COMMA_FIRST"
	colTeamAbbrev     = "TEAM_ABBREVIATION"
	colRosterStatus   = "ROSTERSTATUS"
	seasonTypeRegular = "Regular Season"
	allRemainingGames = "82"
)

// --------------------------------------------------------------------------
// Active players (registry)
// --------------------------------------------------------------------------

// ActivePlayers returns every player on a current roster.
func (c *Client) ActivePlayers(ctx context.Context) ([]provider.PlayerRecord, error) {
	params := url.Values{
		"LeagueID":            {"00"},
		"Season":              {c.season},
		"IsOnlyCurrentSeason": {"1"},
	}
	table, err := c.resultSet(ctx, "/commonallplayers", params, "CommonAllPlayers", cache.TTLPlayerRegistry)
	if err != nil {
		return nil, fmt.Errorf("fetch active players: %w", err)
	}
	players, err := projectPlayers(table)
	if err != nil {
		return nil, fmt.Errorf("active players: %w", err)
	}
	c.logger.Info("Fetched active players", "season", c.season, "count", len(players))
	return players, nil
}

// RefreshActivePlayers is ActivePlayers without the cached listing. The
// fresh response replaces the cached one.
func (c *Client) RefreshActivePlayers(ctx context.Context) ([]provider.PlayerRecord, error) {
	return c.ActivePlayers(cache.Bypass(ctx))
}

func projectPlayers(t *provider.Table) ([]provider.PlayerRecord, error) {
	cols, err := t.MustColumns(colPersonID, colLastCommaFirst, colTeamAbbrev)
	if err != nil {
		return nil, err
	}
	statusCol := t.Column(colRosterStatus)

	players := make([]provider.PlayerRecord, 0, len(t.Rows))
	for n, row := range t.Rows {
		if statusCol >= 0 {
			if status, ok := provider.ExtractValue(provider.Cell(row, statusCol)); ok && status == 0 {
				continue
			}
		}
		id, ok := provider.ExtractValue(provider.Cell(row, cols[colPersonID]))
		if !ok || id != math.Trunc(id) {
			return nil, fmt.Errorf("row %d: bad %s %v", n, colPersonID, provider.Cell(row, cols[colPersonID]))
		}
		display, _ := provider.ExtractString(provider.Cell(row, cols[colLastCommaFirst]))
		team, _ := provider.ExtractString(provider.Cell(row, cols[colTeamAbbrev]))

		first, last := splitLastCommaFirst(display)
		players = append(players, provider.PlayerRecord{
			FullName:  strings.TrimSpace(first + " " + last),
			FirstName: first,
			LastName:  last,
			Team:      team,
			ID:        provider.PlayerID(id),
		})
	}
	return players, nil
}

// splitLastCommaFirst parses "Last, First". Single-name players have no comma.
func splitLastCommaFirst(s string) (first, last string) {
	s = strings.TrimSpace(s)
	i := strings.Index(s, ",")
	if i < 0 {
		return "", s
	}
	return strings.TrimSpace(s[i+1:]), strings.TrimSpace(s[:i])
}

// --------------------------------------------------------------------------
// Per-player tables
// --------------------------------------------------------------------------

// PlayerGameLog returns the player's regular-season game log, most recent
// game first.
func (c *Client) PlayerGameLog(ctx context.Context, id provider.PlayerID) (*provider.Table, error) {
	params := url.Values{
		"PlayerID":   {strconv.FormatInt(int64(id), 10)},
		"Season":     {c.season},
		"SeasonType": {seasonTypeRegular},
		"LeagueID":   {"00"},
	}
	table, err := c.resultSet(ctx, "/playergamelog", params, "PlayerGameLog", cache.TTLGameLog)
	if err != nil {
		return nil, fmt.Errorf("fetch game log: %w", err)
	}
	return table, nil
}

// PlayerNextGames returns the player's remaining scheduled games in date order.
func (c *Client) PlayerNextGames(ctx context.Context, id provider.PlayerID) (*provider.Table, error) {
	params := url.Values{
		"PlayerID":      {strconv.FormatInt(int64(id), 10)},
		"Season":        {c.season},
		"SeasonType":    {seasonTypeRegular},
		"LeagueID":      {"00"},
		"NumberOfGames": {allRemainingGames},
	}
	table, err := c.resultSet(ctx, "/playernextngames", params, "NextNGames", cache.TTLSchedule)
	if err != nil {
		return nil, fmt.Errorf("fetch next games: %w", err)
	}
	return table, nil
}
