// Package resolver maps human-readable roster names onto the statistics
// provider's canonical player identifiers.
//
// Matching is tiered and the first tier to produce a single record wins:
//
//  1. exact full name
//  2. last name
//  3. last name + team
//
// Names are compared case-insensitively with diacritics folded, since the
// fantasy and statistics providers disagree on "Jokic" vs "Jokić".
package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// Resolve returns the identifier of the single registry record matching
// name. teamHint is only consulted when several players share the last
// name; an empty hint skips the team tier.
func Resolve(name, teamHint string, registry []provider.PlayerRecord) (provider.PlayerID, error) {
	key := foldName(name)

	var full []provider.PlayerRecord
	for _, p := range registry {
		if foldName(p.FullName) == key {
			full = append(full, p)
		}
	}
	if len(full) == 1 {
		return full[0].ID, nil
	}

	_, last := SplitName(name)
	lastKey := foldName(last)
	var byLast []provider.PlayerRecord
	for _, p := range registry {
		if foldName(p.LastName) == lastKey {
			byLast = append(byLast, p)
		}
	}
	switch len(byLast) {
	case 0:
		return 0, &NotFoundError{Name: name, TeamHint: teamHint}
	case 1:
		return byLast[0].ID, nil
	}

	if teamHint == "" {
		return 0, &AmbiguousPlayerError{Name: name, Candidates: byLast}
	}

	var byTeam []provider.PlayerRecord
	for _, p := range byLast {
		if strings.EqualFold(p.Team, teamHint) {
			byTeam = append(byTeam, p)
		}
	}
	switch len(byTeam) {
	case 0:
		return 0, &NotFoundError{Name: name, TeamHint: teamHint}
	case 1:
		return byTeam[0].ID, nil
	default:
		return 0, &AmbiguousPlayerError{Name: name, TeamHint: teamHint, Candidates: byTeam}
	}
}

// ResolveRoster resolves every entry independently. The first failure
// aborts the pass; no partial roster is returned.
func ResolveRoster(entries []provider.RosterEntry, registry []provider.PlayerRecord) (provider.CanonicalRoster, error) {
	out := make(provider.CanonicalRoster, len(entries))
	for _, e := range entries {
		id, err := Resolve(e.DisplayName, e.TeamHint, registry)
		if err != nil {
			return nil, err
		}
		out[e.DisplayName] = id
	}
	return out, nil
}

// SplitName splits at the first space: "Jaren Jackson Jr." yields
// ("Jaren", "Jackson Jr."). A single token is treated as a last name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	i := strings.IndexByte(name, ' ')
	if i < 0 {
		return "", name
	}
	return name[:i], strings.TrimSpace(name[i+1:])
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// foldName lower-cases, strips combining marks and collapses whitespace.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
