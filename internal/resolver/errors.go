package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("resolver: player not found")
	// ErrAmbiguousPlayer matches every *AmbiguousPlayerError.
	ErrAmbiguousPlayer = errors.New("resolver: ambiguous player")
)

// NotFoundError means no registry record survived the matching tiers.
type NotFoundError struct {
	Name     string
	TeamHint string
}

func (e *NotFoundError) Error() string {
	if e.TeamHint == "" {
		return fmt.Sprintf("no active player matches %q", e.Name)
	}
	return fmt.Sprintf("no active player matches %q on %s", e.Name, e.TeamHint)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousPlayerError means two or more active players share the last
// name and team. It needs manual disambiguation upstream.
type AmbiguousPlayerError struct {
	Name       string
	TeamHint   string
	Candidates []provider.PlayerRecord
}

func (e *AmbiguousPlayerError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = fmt.Sprintf("%s (%s, %d)", c.FullName, c.Team, c.ID)
	}
	return fmt.Sprintf("%q matches %d active players: %s", e.Name, len(e.Candidates), strings.Join(names, ", "))
}

func (e *AmbiguousPlayerError) Is(target error) bool { return target == ErrAmbiguousPlayer }
