package entities

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StatValue is a character-sheet number that may arrive as free-form
// text ("45", "", "n/a") or as a JSON number. It resolves to a typed
// valid-or-not value exactly once, at the JSON boundary; consumers never
// re-parse.
type StatValue struct {
	Raw   string
	Value int
	Valid bool
}

// StatFromInt builds a valid StatValue, mostly for tests and defaults.
func StatFromInt(v int) StatValue {
	return StatValue{Raw: strconv.Itoa(v), Value: v, Valid: true}
}

// Int returns the numeric value, zero when unparseable.
func (v StatValue) Int() int {
	if !v.Valid {
		return 0
	}
	return v.Value
}

// UnmarshalJSON accepts a JSON string or number.
func (v *StatValue) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*v = StatValue{}
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v.Raw = raw
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			v.Value, v.Valid = 0, false
			return nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			// Free-form text like "1D3 + DB"; kept verbatim, numerically zero.
			v.Value, v.Valid = 0, false
			return nil
		}
		v.Value, v.Valid = n, true
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v.Raw = s
	v.Value = int(f)
	v.Valid = true
	return nil
}

// MarshalJSON re-emits the original raw text so stored documents
// round-trip byte-for-byte.
func (v StatValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw)
}
