// Package calendar flattens scan events into one timeline and projects it
// onto a six-week month grid.
package calendar

import (
	"strings"
	"time"
)

// Date is a calendar day without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the normalized date for y, m, d; out-of-range values roll
// over the way time.Date does (month 13 is January of the next year).
func DateOf(y int, m time.Month, d int) Date {
	return FromTime(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of week, Sunday being 0.
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return DateOf(d.Year, d.Month, d.Day+n) }

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date { return Date{Year: d.Year, Month: d.Month, Day: 1} }

// SameMonth reports whether d and o fall in the same month of the same year.
func (d Date) SameMonth(o Date) bool { return d.Year == o.Year && d.Month == o.Month }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.Time().Format(time.DateOnly) }

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText accepts anything ParseDate accepts.
func (d *Date) UnmarshalText(b []byte) error {
	v, ok := ParseDate(string(b))
	if !ok {
		return &time.ParseError{Layout: time.DateOnly, Value: string(b), Message: ": unrecognized date"}
	}
	*d = v
	return nil
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
	time.RFC1123,
}

// ParseDate parses an event date. A value with exactly three dash-separated
// parts is read as year, month and day from each part's leading integer and
// normalized; anything else goes through a list of common layouts.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	if parts := strings.Split(s, "-"); len(parts) == 3 {
		y, ok1 := leadingInt(parts[0])
		m, ok2 := leadingInt(parts[1])
		d, ok3 := leadingInt(parts[2])
		if !ok1 || !ok2 || !ok3 {
			return Date{}, false
		}
		return DateOf(y, time.Month(m), d), true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}
	return Date{}, false
}

// leadingInt reads an optionally signed run of leading digits after
// leading whitespace, ignoring anything that follows.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' || digits >= 9 {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
