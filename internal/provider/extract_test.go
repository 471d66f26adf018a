package provider

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float", 12.0, 12, true},
		{"int", 7, 7, true},
		{"int64", int64(3), 3, true},
		{"json number", json.Number("0.5"), 0.5, true},
		{"numeric string", "21", 21, true},
		{"garbage string", "n/a", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryTotals_MarshalJSON_NaNIsNull(t *testing.T) {
	totals := CategoryTotals{PTS: 60, FGPct: math.NaN()}

	raw, err := json.Marshal(totals)
	require.NoError(t, err)

	var decoded map[string]*float64
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "FG%")
	assert.Nil(t, decoded["FG%"])
	require.NotNil(t, decoded["PTS"])
	assert.Equal(t, 60.0, *decoded["PTS"])
}
