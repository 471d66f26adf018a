// Package roster turns fantasy-league rosters into resolver input: the
// eligible (non-IL) players, each with a statistics-provider team
// abbreviation.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// InjuredListPosition marks a player stashed on injured list.
const InjuredListPosition = "IL"

// Player is a roster slot as the fantasy provider reports it.
type Player struct {
	Name              string
	EditorialTeamAbbr string
	EligiblePositions []string
	SelectedPosition  string
}

// FantasyService is the fantasy-league provider. The session behind it is
// already authenticated.
type FantasyService interface {
	OwnTeamKey(ctx context.Context) (string, error)
	OpponentTeamKey(ctx context.Context) (string, error)
	Roster(ctx context.Context, teamKey string) ([]Player, error)
}

// Adapter produces RosterEntry lists for the own and opponent teams.
type Adapter struct {
	service FantasyService
	logger  *slog.Logger
}

// NewAdapter creates an Adapter over service.
func NewAdapter(service FantasyService, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{service: service, logger: logger}
}

// FetchOwnRoster returns the eligible players of the logged-in team.
func (a *Adapter) FetchOwnRoster(ctx context.Context) ([]provider.RosterEntry, error) {
	key, err := a.service.OwnTeamKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("own team: %w", err)
	}
	return a.fetch(ctx, key)
}

// FetchOpponentRoster returns the eligible players of this week's opponent.
func (a *Adapter) FetchOpponentRoster(ctx context.Context) ([]provider.RosterEntry, error) {
	key, err := a.service.OpponentTeamKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("opponent team: %w", err)
	}
	return a.fetch(ctx, key)
}

func (a *Adapter) fetch(ctx context.Context, teamKey string) ([]provider.RosterEntry, error) {
	players, err := a.service.Roster(ctx, teamKey)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", teamKey, err)
	}
	entries := Eligible(players)
	a.logger.Info("Fantasy roster fetched",
		"team_key", teamKey,
		"players", len(players),
		"eligible", len(entries))
	return entries, nil
}

// Eligible drops injured-list players and normalizes team abbreviations.
func Eligible(players []Player) []provider.RosterEntry {
	entries := make([]provider.RosterEntry, 0, len(players))
	for _, p := range players {
		if onInjuredList(p) {
			continue
		}
		entries = append(entries, provider.RosterEntry{
			DisplayName: p.Name,
			TeamHint:    NormalizeTeam(p.EditorialTeamAbbr),
		})
	}
	return entries
}

func onInjuredList(p Player) bool {
	for _, pos := range p.EligiblePositions {
		if pos == InjuredListPosition {
			return true
		}
	}
	return false
}

// fantasyToStats holds the abbreviations the two providers disagree on.
var fantasyToStats = map[string]string{
	"GS": "GSW",
	"NO": "NOP",
	"NY": "NYK",
	"SA": "SAS",
}

// NormalizeTeam maps a fantasy-provider team abbreviation onto the
// statistics provider's. Unknown abbreviations pass through upper-cased.
func NormalizeTeam(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if mapped, ok := fantasyToStats[abbr]; ok {
		return mapped
	}
	return abbr
}
