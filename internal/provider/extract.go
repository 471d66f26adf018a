package provider

import (
	"encoding/json"
	"strconv"
)

// ExtractValue normalizes a cell from a tabular API response to a float.
//
// The statistics provider returns rowSet cells as bare JSON numbers, but
// decoded via json.Number, plain float64, or occasionally as strings
// ("12") depending on the endpoint. null cells (DNP games) are not
// extractable.
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ExtractString returns val as a string when it is one.
func ExtractString(val interface{}) (string, bool) {
	s, ok := val.(string)
	return s, ok
}
