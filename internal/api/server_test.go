package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fantasy-playbook/internal/api/respond"
	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/config"
	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/projection"
	"github.com/albapepper/fantasy-playbook/internal/provider"
	"github.com/albapepper/fantasy-playbook/internal/resolver"
)

type fakePlaybook struct {
	mu       sync.Mutex
	err      error
	games    int
	entries  []provider.RosterEntry
	resolved provider.PlayerID
	deadline bool
}

func (f *fakePlaybook) report(side playbook.Side, games int) (*playbook.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = games
	if f.err != nil {
		return nil, f.err
	}
	return &playbook.Report{
		Side:     side,
		WeekEnd:  time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
		Lookback: 5,
		Totals: provider.CategoryTotals{
			provider.PTS:   120,
			provider.FGPct: math.NaN(),
		},
	}, nil
}

func (f *fakePlaybook) ProjectOwn(_ context.Context, n int) (*playbook.Report, error) {
	return f.report(playbook.SideOwn, n)
}

func (f *fakePlaybook) ProjectOpponent(_ context.Context, n int) (*playbook.Report, error) {
	return f.report(playbook.SideOpponent, n)
}

func (f *fakePlaybook) ProjectRoster(_ context.Context, side playbook.Side, entries []provider.RosterEntry, n int) (*playbook.Report, error) {
	f.mu.Lock()
	f.entries = entries
	f.mu.Unlock()
	return f.report(side, n)
}

func (f *fakePlaybook) Matchup(ctx context.Context, n int) (*playbook.MatchupReport, error) {
	own, err := f.report(playbook.SideOwn, n)
	if err != nil {
		return nil, err
	}
	opp, _ := f.report(playbook.SideOpponent, n)
	return &playbook.MatchupReport{Own: own, Opponent: opp, Categories: playbook.Compare(own.Totals, opp.Totals)}, nil
}

func (f *fakePlaybook) Resolve(ctx context.Context, name, team string) (provider.PlayerID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.deadline = ctx.Deadline()
	return f.resolved, f.err
}

func newTestRouter(t *testing.T, svc *fakePlaybook, cfg *config.Config) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{CORSAllowOrigins: []string{"*"}}
	}
	store := cache.New(true)
	t.Cleanup(store.Close)
	return NewRouter(svc, store, cfg, nil)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &fakePlaybook{}, nil)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	rec = do(t, h, http.MethodGet, "/health/cache", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "active_keys")
}

func TestOwnProjection(t *testing.T) {
	svc := &fakePlaybook{}
	h := newTestRouter(t, svc, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/projection/own?games=7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7, svc.games)

	var body struct {
		Side   string              `json:"side"`
		Totals map[string]*float64 `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "own", body.Side)
	require.NotNil(t, body.Totals["PTS"])
	assert.Equal(t, 120.0, *body.Totals["PTS"])
	assert.Nil(t, body.Totals["FG%"], "undefined percentage is null")
}

func TestGamesParameter(t *testing.T) {
	h := newTestRouter(t, &fakePlaybook{}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/projection/opponent?games=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_GAMES", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/v1/matchup?games=0", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_LOOKBACK", errorCode(t, rec))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("resolve own roster: %w", &resolver.NotFoundError{Name: "Michael Jordan"}), http.StatusNotFound, "PLAYER_NOT_FOUND"},
		{"ambiguous", &resolver.AmbiguousPlayerError{Name: "Curry", Candidates: []provider.PlayerRecord{
			{FullName: "Stephen Curry", Team: "GSW"}, {FullName: "Seth Curry", Team: "CHA"},
		}}, http.StatusConflict, "AMBIGUOUS_PLAYER"},
		{"insufficient", &projection.InsufficientDataError{Category: provider.PTS, Have: 2, Want: 5}, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
		{"no fantasy", playbook.ErrNoFantasyProvider, http.StatusServiceUnavailable, "FANTASY_UNAVAILABLE"},
		{"timeout", fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"upstream", &provider.StatusError{Provider: "stats", Path: "/playergamelog", Code: 500}, http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakePlaybook{err: tt.err}, nil)
			rec := do(t, h, http.MethodGet, "/api/v1/projection/own", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAmbiguousListsCandidates(t *testing.T) {
	h := newTestRouter(t, &fakePlaybook{err: &resolver.AmbiguousPlayerError{Name: "Curry", Candidates: []provider.PlayerRecord{
		{FullName: "Stephen Curry", Team: "GSW"}, {FullName: "Seth Curry", Team: "CHA"},
	}}}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/players/resolve?name=Curry", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seth Curry (CHA)")
}

func TestResolvePlayer(t *testing.T) {
	svc := &fakePlaybook{resolved: 201939}
	h := newTestRouter(t, svc, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/players/resolve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/players/resolve?name=Stephen+Curry&team=gs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "GSW", body["team"])
	assert.Equal(t, float64(201939), body["id"])
	assert.True(t, svc.deadline, "resolve runs under the request timeout")
}

func TestPostRosterProjection(t *testing.T) {
	svc := &fakePlaybook{}
	h := newTestRouter(t, svc, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/projection",
		`{"players":[{"display_name":"Zion Williamson","team_hint":"no"},{"display_name":"Nikola Jokic"}],"games":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, svc.games)
	assert.Equal(t, []provider.RosterEntry{
		{DisplayName: "Zion Williamson", TeamHint: "NOP"},
		{DisplayName: "Nikola Jokic", TeamHint: ""},
	}, svc.entries)

	rec = do(t, h, http.MethodPost, "/api/v1/projection", `{"players":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_ROSTER", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/v1/projection", `{"roster":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", errorCode(t, rec))
}

func TestMatchupRoute(t *testing.T) {
	h := newTestRouter(t, &fakePlaybook{}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/matchup", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"leader":"tie"`)
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	}
	h := newTestRouter(t, &fakePlaybook{}, cfg)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}
