package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/albapepper/fantasy-playbook/internal/api/respond"
	"github.com/albapepper/fantasy-playbook/internal/calendar"
	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/projection"
	"github.com/albapepper/fantasy-playbook/internal/resolver"
)

// writeServiceError maps a playbook error onto a status and error code.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ambiguous *resolver.AmbiguousPlayerError

	switch {
	case errors.As(err, &ambiguous):
		names := make([]string, 0, len(ambiguous.Candidates))
		for _, c := range ambiguous.Candidates {
			names = append(names, fmt.Sprintf("%s (%s)", c.FullName, c.Team))
		}
		respond.WriteErrorDetail(w, http.StatusConflict, "AMBIGUOUS_PLAYER", err.Error(),
			"candidates: "+strings.Join(names, ", "))
	case errors.Is(err, resolver.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", err.Error())
	case errors.Is(err, projection.ErrInvalidLookback):
		respond.WriteError(w, http.StatusUnprocessableEntity, "INVALID_LOOKBACK", err.Error())
	case errors.Is(err, projection.ErrInsufficientData):
		respond.WriteError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", err.Error())
	case errors.Is(err, playbook.ErrNoFantasyProvider):
		respond.WriteError(w, http.StatusServiceUnavailable, "FANTASY_UNAVAILABLE", "Fantasy provider is not configured")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respond.WriteError(w, http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE", "Statistics provider is failing, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		respond.WriteError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Provider requests timed out")
	case errors.Is(err, calendar.ErrParse):
		h.logger.Error("Provider returned malformed data", "path", r.URL.Path, "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "PROVIDER_DATA", "Provider returned malformed data", err.Error())
	default:
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Provider request failed", err.Error())
	}
}
