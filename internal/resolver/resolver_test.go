package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

func rec(id provider.PlayerID, first, last, team string) provider.PlayerRecord {
	return provider.PlayerRecord{
		FullName:  first + " " + last,
		FirstName: first,
		LastName:  last,
		Team:      team,
		ID:        id,
	}
}

var testRegistry = []provider.PlayerRecord{
	rec(201939, "Stephen", "Curry", "GSW"),
	rec(203552, "Seth", "Curry", "CHA"),
	rec(2544, "LeBron", "James", "LAL"),
	rec(1630559, "Bronny", "James", "LAL"),
	rec(1629029, "Luka", "Dončić", "LAL"),
	rec(203999, "Nikola", "Jokić", "DEN"),
	rec(1628991, "Jaren", "Jackson Jr.", "MEM"),
	rec(202710, "Jimmy", "Butler", "GSW"),
}

func TestResolve_ExactFullNameIgnoresHint(t *testing.T) {
	id, err := Resolve("Stephen Curry", "BOS", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(201939), id)
}

func TestResolve_FullNameIsCaseAndAccentInsensitive(t *testing.T) {
	id, err := Resolve("nikola jokic", "", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(203999), id)

	id, err = Resolve("Luka Doncic", "", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(1629029), id)
}

func TestResolve_UniqueLastName(t *testing.T) {
	// Fantasy provider spells the first name differently.
	_, err := Resolve("Jimmy Butler III", "", testRegistry)
	require.Error(t, err, "last name 'Butler III' does not exist")

	id, err := Resolve("J. Butler", "", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(202710), id)
}

func TestResolve_MultiWordLastName(t *testing.T) {
	id, err := Resolve("Jaren Jackson Jr.", "", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(1628991), id)
}

func TestResolve_SharedLastNameDifferentTeams(t *testing.T) {
	id, err := Resolve("S. Curry", "CHA", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(203552), id)

	id, err = Resolve("S. Curry", "gsw", testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(201939), id)

	_, err = Resolve("S. Curry", "MIA", testRegistry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "MIA", nf.TeamHint)
}

func TestResolve_SharedLastNameSameTeamIsAmbiguous(t *testing.T) {
	_, err := Resolve("B. James", "LAL", testRegistry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousPlayer))

	var amb *AmbiguousPlayerError
	require.True(t, errors.As(err, &amb))
	assert.Len(t, amb.Candidates, 2)
}

func TestResolve_SharedLastNameNoHintIsAmbiguous(t *testing.T) {
	_, err := Resolve("B. James", "", testRegistry)
	assert.True(t, errors.Is(err, ErrAmbiguousPlayer))
}

func TestResolve_UnknownLastName(t *testing.T) {
	_, err := Resolve("Michael Jordan", "CHI", testRegistry)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResolveRoster_FailsFast(t *testing.T) {
	entries := []provider.RosterEntry{
		{DisplayName: "Stephen Curry", TeamHint: "GSW"},
		{DisplayName: "Michael Jordan", TeamHint: "CHI"},
	}
	roster, err := ResolveRoster(entries, testRegistry)
	require.Error(t, err)
	assert.Nil(t, roster)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResolveRoster(t *testing.T) {
	entries := []provider.RosterEntry{
		{DisplayName: "Stephen Curry", TeamHint: "GSW"},
		{DisplayName: "Seth Curry", TeamHint: "CHA"},
		{DisplayName: "LeBron James", TeamHint: "LAL"},
	}
	roster, err := ResolveRoster(entries, testRegistry)
	require.NoError(t, err)
	assert.Equal(t, provider.CanonicalRoster{
		"Stephen Curry": 201939,
		"Seth Curry":    203552,
		"LeBron James":  2544,
	}, roster)
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("Karl-Anthony Towns")
	assert.Equal(t, "Karl-Anthony", first)
	assert.Equal(t, "Towns", last)

	first, last = SplitName("Nene")
	assert.Equal(t, "", first)
	assert.Equal(t, "Nene", last)
}

type countingSource struct {
	calls   int
	players []provider.PlayerRecord
	err     error
}

func (s *countingSource) ActivePlayers(ctx context.Context) ([]provider.PlayerRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.players, nil
}

func TestRegistry_LoadsOnce(t *testing.T) {
	src := &countingSource{players: testRegistry}
	reg := NewRegistry(src, nil)
	ctx := context.Background()

	id, err := reg.Resolve(ctx, "LeBron James", "LAL")
	require.NoError(t, err)
	assert.Equal(t, provider.PlayerID(2544), id)

	_, err = reg.ResolveRoster(ctx, []provider.RosterEntry{{DisplayName: "Seth Curry", TeamHint: "CHA"}})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestRegistry_RetriesFailedLoad(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	reg := NewRegistry(src, nil)
	ctx := context.Background()

	_, err := reg.Players(ctx)
	require.Error(t, err)

	src.err = nil
	src.players = testRegistry
	players, err := reg.Players(ctx)
	require.NoError(t, err)
	assert.Len(t, players, len(testRegistry))
	assert.Equal(t, 2, src.calls)
}

func TestRegistry_RefreshKeepsOldListingOnFailure(t *testing.T) {
	src := &countingSource{players: testRegistry}
	reg := NewRegistry(src, nil)
	ctx := context.Background()

	_, err := reg.Players(ctx)
	require.NoError(t, err)

	src.err = errors.New("provider down")
	require.Error(t, reg.Refresh(ctx))
	players, err := reg.Players(ctx)
	require.NoError(t, err)
	assert.Len(t, players, len(testRegistry))

	src.err = nil
	src.players = testRegistry[:1]
	require.NoError(t, reg.Refresh(ctx))
	players, err = reg.Players(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)
	assert.Equal(t, 3, src.calls)
}

type refreshingSource struct {
	countingSource
	refreshes int
}

func (s *refreshingSource) RefreshActivePlayers(ctx context.Context) ([]provider.PlayerRecord, error) {
	s.refreshes++
	return s.players, nil
}

func TestRegistry_RefreshPrefersUncachedLoad(t *testing.T) {
	src := &refreshingSource{countingSource: countingSource{players: testRegistry}}
	reg := NewRegistry(src, nil)
	ctx := context.Background()

	_, err := reg.Players(ctx)
	require.NoError(t, err)
	require.NoError(t, reg.Refresh(ctx))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, src.refreshes)
}
