// Package provider defines the canonical data types the two upstream
// providers normalize into. These structs are the contract between the
// provider clients and the resolver, fetcher and aggregator. Clients output
// these, the core never sees a raw provider response.
package provider

import (
	"encoding/json"
	"math"
	"time"
)

// PlayerID is the canonical identifier issued by the statistics provider
// (PERSON_ID). Every per-player request is keyed by it.
type PlayerID int64

// PlayerRecord is one entry of the active-player registry.
type PlayerRecord struct {
	FullName  string   `json:"full_name"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Team      string   `json:"team"`
	ID        PlayerID `json:"id"`
}

// RosterEntry is a fantasy roster slot reduced to what the resolver needs.
// An empty TeamHint means the fantasy provider gave no team.
type RosterEntry struct {
	DisplayName string `json:"display_name"`
	TeamHint    string `json:"team_hint,omitempty"`
}

// CanonicalRoster maps a roster display name to its resolved identifier.
type CanonicalRoster map[string]PlayerID

// GameLogEntry is a single historical game. Values only carries the
// categories the provider actually returned.
type GameLogEntry struct {
	Date   time.Time            `json:"date"`
	Values map[Category]float64 `json:"values"`
}

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// Category is a statistics column code as the statistics provider names it.
type Category string

const (
	FGM  Category = "FGM"
	FGA  Category = "FGA"
	FTM  Category = "FTM"
	FTA  Category = "FTA"
	PTS  Category = "PTS"
	FG3M Category = "FG3M"
	REB  Category = "REB"
	AST  Category = "AST"
	STL  Category = "STL"
	BLK  Category = "BLK"
	TOV  Category = "TOV"

	// Derived after aggregation, never per player.
	FGPct Category = "FG%"
	FTPct Category = "FT%"
)

// Categories is the fixed set of counting categories, in display order.
var Categories = []Category{FGM, FGA, FTM, FTA, PTS, FG3M, REB, AST, STL, BLK, TOV}

// CategoryTotals accumulates projected values per category. FG% and FT% are
// NaN when the matching attempts total is zero.
type CategoryTotals map[Category]float64

// MarshalJSON renders NaN percentages as null; encoding/json rejects NaN.
func (t CategoryTotals) MarshalJSON() ([]byte, error) {
	out := make(map[Category]*float64, len(t))
	for k, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = nil
			continue
		}
		v := v
		out[k] = &v
	}
	return json.Marshal(out)
}
