package remote

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dispatch-console/backend/internal/model"
)

// Row fields arrive from the query service loosely typed: amounts as numbers
// or strings or null, booleans as booleans or the string "true", coordinates
// as "{lat, lng}" or "lat lng" free text. Everything is normalized here, at
// the ingestion boundary, so nothing downstream ever sees a raw field.

// ParseCoordinates parses a textually encoded lat/lng pair. Braces and
// parentheses are stripped; comma and whitespace both act as separators.
func ParseCoordinates(s string) (model.Coordinates, error) {
	cleaned := strings.Trim(strings.TrimSpace(s), "{}()")
	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(parts) != 2 {
		return model.Coordinates{}, fmt.Errorf("malformed coordinates: %q", s)
	}

	lat, latErr := strconv.ParseFloat(parts[0], 64)
	lng, lngErr := strconv.ParseFloat(parts[1], 64)
	if latErr != nil || lngErr != nil ||
		math.IsNaN(lat) || math.IsNaN(lng) ||
		math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return model.Coordinates{}, fmt.Errorf("malformed coordinates: %q", s)
	}

	return model.Coordinates{Lat: lat, Lng: lng}, nil
}

// amount normalizes a possibly-null, possibly-string numeric field.
// Unparseable values default to 0.
func amount(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}

	return 0
}

// truthy normalizes the inconsistent boolean encoding used by booking status
// fields: a JSON true, or the string "true", counts as set.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}

	return false
}

// dateOnly validates a schedule_date field and returns its yyyy-MM-dd form.
// The second return is false when the field cannot be treated as a date, in
// which case the caller excludes the record.
func dateOnly(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
		return "", false
	}
	return s[:10], true
}
