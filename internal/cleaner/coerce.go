package cleaner

import (
	"strconv"
	"strings"
	"time"
)

// Per-semantic-type coercion. Every function is total: a cell that cannot be
// parsed maps to the type's safe default instead of failing the row, and the
// boolean return tells the caller whether a fallback happened.

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	time.RFC3339,
}

// coerceDate parses the listing date. Unparseable values become nil.
func coerceDate(raw string) (*time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// coerceBool maps a controlled vocabulary to true; everything else, including
// absent input, is false. Booleans are never null.
func coerceBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "si", "sí", "yes", "true", "1":
		return true
	}
	return false
}

// coerceNullFloat parses a decimal, returning nil on anything non-numeric.
func coerceNullFloat(raw string) (*float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

// coerceNullInt parses an integer, tolerating integral decimals such as
// "3.0". Anything else becomes nil.
func coerceNullInt(raw string) (*int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil, false
	}
	n := int(f)
	return &n, true
}

// sanitizeBathCount coerces a raw full- or half-bath cell to a non-negative
// count: whitespace trimmed, thousands separators removed, unparseable or
// missing input defaulting to 0.
func sanitizeBathCount(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}
