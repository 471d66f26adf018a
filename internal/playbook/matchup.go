package playbook

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/fantasy-playbook/internal/provider"
)

// Leader is who a category favours.
type Leader string

const (
	LeaderOwn      Leader = "own"
	LeaderOpponent Leader = "opponent"
	LeaderTie      Leader = "tie"
)

// CategoryResult is the projected outcome of one scoring category.
type CategoryResult struct {
	Category provider.Category `json:"category"`
	Leader   Leader            `json:"leader"`
}

// MatchupReport compares both rosters of the current week.
type MatchupReport struct {
	Own          *Report          `json:"own"`
	Opponent     *Report          `json:"opponent"`
	Categories   []CategoryResult `json:"categories"`
	OwnWins      int              `json:"own_wins"`
	OpponentWins int              `json:"opponent_wins"`
	Ties         int              `json:"ties"`
}

// Matchup projects both sides of this week's head-to-head.
func (s *Service) Matchup(ctx context.Context, numGame int) (*MatchupReport, error) {
	if s.rosters == nil {
		return nil, ErrNoFantasyProvider
	}

	var own, opp *Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		own, err = s.ProjectOwn(gctx, numGame)
		return err
	})
	g.Go(func() error {
		var err error
		opp, err = s.ProjectOpponent(gctx, numGame)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &MatchupReport{Own: own, Opponent: opp}
	report.Categories = Compare(own.Totals, opp.Totals)
	for _, c := range report.Categories {
		switch c.Leader {
		case LeaderOwn:
			report.OwnWins++
		case LeaderOpponent:
			report.OpponentWins++
		default:
			report.Ties++
		}
	}
	return report, nil
}

// ScoredCategories lists the categories a head-to-head week is decided on,
// in display order. Attempts are not scored on their own.
var ScoredCategories = []provider.Category{
	provider.FGPct, provider.FTPct, provider.FG3M, provider.PTS,
	provider.REB, provider.AST, provider.STL, provider.BLK, provider.TOV,
}

// Compare decides every scored category. Turnovers favour the lower
// total; an undefined percentage on either side is a tie.
func Compare(own, opp provider.CategoryTotals) []CategoryResult {
	out := make([]CategoryResult, 0, len(ScoredCategories))
	for _, c := range ScoredCategories {
		a, b := own[c], opp[c]
		leader := LeaderTie
		switch {
		case math.IsNaN(a) || math.IsNaN(b) || a == b:
		case (a > b) != (c == provider.TOV):
			leader = LeaderOwn
		default:
			leader = LeaderOpponent
		}
		out = append(out, CategoryResult{Category: c, Leader: leader})
	}
	return out
}
