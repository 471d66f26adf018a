// Package calendar parses provider date strings and computes the scoring
// week boundary.
//
// All dates are calendar dates: midnight UTC of the given year/month/day.
// Comparisons between provider dates and the week boundary therefore never
// depend on the process time zone.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrParse matches every *ParseError via errors.Is.
var ErrParse = errors.New("calendar: malformed provider date")

// ParseError reports a provider date string that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse provider date %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// monthByAbbrev is built once; callers must not mutate it.
var monthByAbbrev = func() map[string]time.Month {
	m := make(map[string]time.Month, 12)
	for mo := time.January; mo <= time.December; mo++ {
		m[strings.ToUpper(mo.String()[:3])] = mo
	}
	return m
}()

// ParseProviderDate parses "MonthAbbrev Day, Year" (e.g. "Jan 5, 2023" or
// the provider's upper-case "JAN 05, 2023") into a calendar date.
func ParseProviderDate(s string) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 3 {
		return time.Time{}, &ParseError{Input: s, Reason: fmt.Sprintf("want 3 tokens, got %d", len(fields))}
	}

	month, ok := monthByAbbrev[strings.ToUpper(fields[0])]
	if !ok {
		return time.Time{}, &ParseError{Input: s, Reason: fmt.Sprintf("unknown month %q", fields[0])}
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Reason: fmt.Sprintf("bad day %q", fields[1])}
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Reason: fmt.Sprintf("bad year %q", fields[2])}
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March; reject instead.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, &ParseError{Input: s, Reason: "day out of range"}
	}
	return d, nil
}

// Date returns the calendar date of t in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekdayIndex numbers days Monday=0 .. Sunday=6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// EndOfCurrentWeek returns the next Monday strictly after today. A Monday
// maps to the following Monday, a Sunday to the next day.
func EndOfCurrentWeek(today time.Time) time.Time {
	d := Date(today)
	return d.AddDate(0, 0, 7-weekdayIndex(d))
}

// Clock supplies "today". Production code passes Now; tests pin a date.
type Clock func() time.Time

// Now is the wall clock.
func Now() time.Time { return time.Now() }

// InLocation returns a Clock that reads the wall clock in loc, so "today"
// follows the league's time zone rather than the host's.
func InLocation(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}
