package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/provider"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// displayCategories is the column order of the totals table.
var displayCategories = append(append([]provider.Category{}, provider.Categories...), provider.FGPct, provider.FTPct)

func formatValue(c provider.Category, v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	if c == provider.FGPct || c == provider.FTPct {
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func writeReport(w io.Writer, r *playbook.Report, breakdown bool) error {
	fmt.Fprintf(w, "%s roster, %d players, last %d games, through %s\n\n",
		r.Side, len(r.Players), r.Lookback, r.WeekEnd.AddDate(0, 0, -1).Format("Mon Jan 2"))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if breakdown {
		header := []string{"PLAYER", "G"}
		for _, c := range provider.Categories {
			header = append(header, string(c))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
		for _, p := range r.Players {
			row := []string{p.Name, fmt.Sprint(p.GamesLeft)}
			for _, c := range provider.Categories {
				row = append(row, formatValue(c, p.Averages[c]))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
		}
		fmt.Fprintln(tw)
	}

	header := make([]string, 0, len(displayCategories))
	row := make([]string, 0, len(displayCategories))
	for _, c := range displayCategories {
		header = append(header, string(c))
		row = append(row, formatValue(c, r.Totals[c]))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	return tw.Flush()
}

func writeMatchup(w io.Writer, m *playbook.MatchupReport) error {
	fmt.Fprintf(w, "Projected through %s (last %d games)\n\n",
		m.Own.WeekEnd.AddDate(0, 0, -1).Format("Mon Jan 2"), m.Own.Lookback)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CAT\tOWN\tOPP\tLEADER")
	for _, c := range m.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Category,
			formatValue(c.Category, m.Own.Totals[c.Category]),
			formatValue(c.Category, m.Opponent.Totals[c.Category]),
			c.Leader)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d-%d-%d\n", m.OwnWins, m.OpponentWins, m.Ties)
	return err
}
