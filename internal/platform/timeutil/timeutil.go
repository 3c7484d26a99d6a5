package timeutil

import (
	"strings"
	"time"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
)

// Accepted input layouts, tried in order. Layouts without a zone are
// interpreted in the server's local time.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse parses a client-supplied date or date-time. On failure it returns
// apperr.ErrInvalidDate naming field.
func Parse(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.InvalidDate(field)
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.InvalidDate(field)
}

// ParseOptional is Parse that returns nil for an empty value.
func ParseOptional(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := Parse(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// EndOfDayIfDateOnly widens a date-only value (midnight) to the end of
// that day so "end=2024-05-31" includes the whole day.
func EndOfDayIfDateOnly(raw string, t time.Time) time.Time {
	if len(strings.TrimSpace(raw)) == len("2006-01-02") {
		return EndOfDay(t)
	}
	return t
}
