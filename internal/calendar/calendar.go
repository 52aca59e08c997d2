package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/starford/scanboard/internal/models"
)

// GridCells is the fixed size of a month grid: six weeks of seven days.
const GridCells = 42

// EventRef is an event together with the scan that owns it.
type EventRef struct {
	models.Event
	ScanID string `json:"scanId"`
}

// ParsedDate returns the parsed event date; ok is false when it cannot be placed.
func (e EventRef) ParsedDate() (Date, bool) { return ParseDate(e.Event.Date) }

// On reports whether e falls on d.
func (e EventRef) On(d Date) bool {
	pd, ok := e.ParsedDate()
	return ok && pd == d
}

// Flatten returns every event of every scan in store order, with timed
// events ordered by time among themselves. Untimed events keep the
// positions they were encountered at; this is a weak ordering that does
// not consider the date.
func Flatten(scans []models.ScanResult) []EventRef {
	var out []EventRef
	for _, s := range scans {
		for _, ev := range s.Events {
			out = append(out, EventRef{Event: ev, ScanID: s.ID})
		}
	}
	if out == nil {
		return []EventRef{}
	}

	var slots []int
	var timed []EventRef
	for i, e := range out {
		if e.Time != "" {
			slots = append(slots, i)
			timed = append(timed, e)
		}
	}
	slices.SortStableFunc(timed, func(a, b EventRef) int {
		return strings.Compare(a.Time, b.Time)
	})
	for i, pos := range slots {
		out[pos] = timed[i]
	}
	return out
}

// ForDay returns the events placed on d, preserving timeline order.
func ForDay(events []EventRef, d Date) []EventRef {
	out := []EventRef{}
	for _, e := range events {
		if e.On(d) {
			out = append(out, e)
		}
	}
	return out
}

// DayCell is one square of the month grid.
type DayCell struct {
	Date       Date       `json:"date"`
	InMonth    bool       `json:"inMonth"`
	IsToday    bool       `json:"isToday"`
	IsSelected bool       `json:"isSelected"`
	Events     []EventRef `json:"events"`
}

// Grid builds the 42-cell grid for month m of year y: trailing days of the
// previous month up to the first weekday, the whole month, then leading
// days of the next month.
func Grid(y int, m time.Month, today, selected Date, events []EventRef) [GridCells]DayCell {
	first := DateOf(y, m, 1)
	lead := int(first.Weekday())

	byDay := make(map[Date][]EventRef)
	for _, e := range events {
		if d, ok := e.ParsedDate(); ok {
			byDay[d] = append(byDay[d], e)
		}
	}

	var grid [GridCells]DayCell
	start := first.AddDays(-lead)
	for i := range grid {
		d := start.AddDays(i)
		evs := byDay[d]
		if evs == nil {
			evs = []EventRef{}
		}
		grid[i] = DayCell{
			Date:       d,
			InMonth:    d.SameMonth(first),
			IsToday:    d == today,
			IsSelected: d == selected,
			Events:     evs,
		}
	}
	return grid
}

// Cursor is the calendar view state: the displayed month and the selected day.
type Cursor struct {
	Current  Date `json:"current"`
	Selected Date `json:"selected"`
}

// NewCursor returns a cursor showing now's month with now selected.
func NewCursor(now time.Time) Cursor {
	var c Cursor
	c.Today(now)
	return c
}

// ChangeMonth moves the displayed month by offset months.
func (c *Cursor) ChangeMonth(offset int) {
	c.Current = DateOf(c.Current.Year, c.Current.Month+time.Month(offset), 1)
}

// Today shows now's month and selects now.
func (c *Cursor) Today(now time.Time) {
	d := FromTime(now)
	c.Current = d.FirstOfMonth()
	c.Selected = d
}

// Select selects d, re-centering the grid when d lies in another month.
func (c *Cursor) Select(d Date) {
	c.Selected = d
	if !d.SameMonth(c.Current) {
		c.Current = d.FirstOfMonth()
	}
}

// Grid builds the grid for the displayed month.
func (c Cursor) Grid(today Date, events []EventRef) [GridCells]DayCell {
	return Grid(c.Current.Year, c.Current.Month, today, c.Selected, events)
}

// SelectedEvents returns the events on the selected day. An empty result is valid.
func (c Cursor) SelectedEvents(events []EventRef) []EventRef {
	return ForDay(events, c.Selected)
}
