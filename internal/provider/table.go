package provider

import (
	"fmt"
	"strings"
)

// Table is a tabular provider response: named columns and positional rows.
// It only exists at the fetch boundary; callers project it into typed
// records once and never pass it further.
type Table struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rowSet"`
}

// Column returns the index of header name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// MustColumns returns indexes for every named column, failing on the first
// missing one.
func (t *Table) MustColumns(names ...string) (map[string]int, error) {
	out := make(map[string]int, len(names))
	for _, n := range names {
		i := t.Column(n)
		if i < 0 {
			return nil, fmt.Errorf("result set %q has no %s column", t.Name, n)
		}
		out[n] = i
	}
	return out, nil
}

// Cell returns row[i], or nil when the row is short.
func Cell(row []interface{}, i int) interface{} {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}
