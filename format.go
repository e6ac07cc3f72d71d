package miqat

import (
	"fmt"
	"math"
	"strings"

	"github.com/thurmanmarka/miqat/internal/timeutil"
)

// OutputFormat selects how decimal hours are rendered as "HH:MM".
type OutputFormat int

const (
	// FormatMixed floors sunrise, sunset and maghrib and rounds the other
	// events to the nearest minute, as published timetables do.
	FormatMixed OutputFormat = iota

	// FormatFloor truncates every event to the minute.
	FormatFloor

	// FormatRound rounds every event to the nearest minute.
	FormatRound
)

var formatNames = map[OutputFormat]string{
	FormatMixed: "mixed",
	FormatFloor: "floor",
	FormatRound: "round",
}

func (f OutputFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("OutputFormat(%d)", int(f))
}

// ParseOutputFormat parses "floor", "round" or "mixed".
func ParseOutputFormat(s string) (OutputFormat, error) {
	for f, name := range formatNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown output format %q (use floor, round or mixed)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f OutputFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *OutputFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseOutputFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Rounding is how a single event is reduced to whole minutes.
type Rounding int

const (
	RoundNearest Rounding = iota
	RoundDown
)

// policy maps each event to its rounding.
type policy [eventCount]Rounding

func uniform(r Rounding) policy {
	var p policy
	for i := range p {
		p[i] = r
	}
	return p
}

var formatPolicies = map[OutputFormat]policy{
	FormatMixed: {Sunrise: RoundDown, Sunset: RoundDown, Maghrib: RoundDown},
	FormatFloor: uniform(RoundDown),
	FormatRound: uniform(RoundNearest),
}

// RoundingFor returns the rounding f applies to event e.
func RoundingFor(f OutputFormat, e Event) Rounding {
	p, ok := formatPolicies[f]
	if !ok {
		p = formatPolicies[FormatMixed]
	}
	return p[e]
}

// FormatHours renders decimal hours as a zero-padded 24-hour "HH:MM".
// Values are wrapped into [0, 24) first; rounding up from 23:59.5 yields
// "00:00".
func FormatHours(h float64, r Rounding) (string, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return "", fmt.Errorf("%w: cannot format %v hours", ErrInvalidInput, h)
	}

	minutes := timeutil.Normalize24(h) * 60

	var total int
	switch r {
	case RoundDown:
		total = int(math.Floor(minutes))
	default:
		total = int(math.Round(minutes))
	}
	total %= 24 * 60

	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// Format renders every available event with the rounding f assigns to it.
// Events that do not occur are left out of the map and reported through
// the returned error.
func (t Times) Format(f OutputFormat) (map[string]string, error) {
	out := make(map[string]string, eventCount)
	for _, e := range Events() {
		h, err := t.Hours(e)
		if err != nil {
			continue
		}
		s, err := FormatHours(h, RoundingFor(f, e))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e, err)
		}
		out[e.String()] = s
	}
	return out, t.Err()
}
