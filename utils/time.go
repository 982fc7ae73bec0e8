// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"time"
)

// Clock returns the current instant. Flows take one so tests can pin time.
type Clock func() time.Time

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// CalendarDate returns midnight UTC of the calendar day t falls on in loc.
// Dates are stored as midnight UTC so they compare and serialize without offsets.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns today's calendar date in loc according to clock
func Today(clock Clock, loc *time.Location) time.Time {
	if clock == nil {
		clock = UTCNow
	}
	return CalendarDate(clock(), loc)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD)
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// LoadLocation loads the named timezone, falling back to UTC when it is unknown
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatesBetween returns every calendar date from..to inclusive. Empty when to is before from.
func DatesBetween(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
