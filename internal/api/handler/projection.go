package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/albapepper/fantasy-playbook/internal/api/respond"
	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/provider"
	"github.com/albapepper/fantasy-playbook/internal/roster"
)

// parseGames reads the optional games query parameter. Absent means the
// service default.
func parseGames(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("games")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_GAMES", "games must be an integer")
		return 0, false
	}
	if n <= 0 {
		respond.WriteError(w, http.StatusUnprocessableEntity, "INVALID_LOOKBACK", "games must be at least 1")
		return 0, false
	}
	return n, true
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// GetOwnProjection projects the logged-in team through the end of the week.
func (h *Handler) GetOwnProjection(w http.ResponseWriter, r *http.Request) {
	games, ok := parseGames(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	report, err := h.svc.ProjectOwn(ctx, games)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// GetOpponentProjection projects this week's opponent.
func (h *Handler) GetOpponentProjection(w http.ResponseWriter, r *http.Request) {
	games, ok := parseGames(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	report, err := h.svc.ProjectOpponent(ctx, games)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// GetMatchup compares both rosters category by category.
func (h *Handler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	games, ok := parseGames(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	report, err := h.svc.Matchup(ctx, games)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// rosterRequest is the body of POST /api/v1/projection.
type rosterRequest struct {
	Players []provider.RosterEntry `json:"players"`
	Games   int                    `json:"games"`
}

// PostRosterProjection projects an arbitrary list of players, for trade
// and waiver what-ifs.
func (h *Handler) PostRosterProjection(w http.ResponseWriter, r *http.Request) {
	var req rosterRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a roster object", err.Error())
		return
	}
	if len(req.Players) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "EMPTY_ROSTER", "players must not be empty")
		return
	}
	if req.Games < 0 {
		respond.WriteError(w, http.StatusUnprocessableEntity, "INVALID_LOOKBACK", "games must be at least 1")
		return
	}
	for i := range req.Players {
		req.Players[i].TeamHint = roster.NormalizeTeam(req.Players[i].TeamHint)
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	report, err := h.svc.ProjectRoster(ctx, playbook.SideCustom, req.Players, req.Games)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// ResolvePlayer maps ?name= (and optional &team=) to a player id.
func (h *Handler) ResolvePlayer(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_NAME", "name query parameter is required")
		return
	}
	team := roster.NormalizeTeam(r.URL.Query().Get("team"))
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	id, err := h.svc.Resolve(ctx, name, team)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name": name,
		"team": team,
		"id":   id,
	})
}
