package calendar

import (
	"testing"
	"time"

	"github.com/starford/scanboard/internal/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-15", Date{2024, time.March, 15}, true},
		{"2024-3-5", Date{2024, time.March, 5}, true},
		{"2024-13-01", Date{2025, time.January, 1}, true},
		{"2024-02-30", Date{2024, time.March, 1}, true},
		{"2024-03-15T10:00", Date{2024, time.March, 15}, true},
		{"2024/03/15", Date{2024, time.March, 15}, true},
		{"March 15, 2024", Date{2024, time.March, 15}, true},
		{"15 Mar 2024", Date{2024, time.March, 15}, true},
		{"2024-xx-15", Date{}, false},
		{"next tuesday", Date{}, false},
		{"", Date{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGridAlwaysFortyTwoCells(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		g := Grid(2024, m, Date{}, Date{}, nil)
		inMonth := 0
		for _, c := range g {
			if c.InMonth {
				inMonth++
			}
		}
		if inMonth != DaysIn(2024, m) {
			t.Errorf("%v: in-month cells = %d, want %d", m, inMonth, DaysIn(2024, m))
		}
	}
}

func TestGridLeadingPadding(t *testing.T) {
	// September 2024 starts on a Sunday: no leading padding.
	g := Grid(2024, time.September, Date{}, Date{}, nil)
	if g[0].Date != (Date{2024, time.September, 1}) || !g[0].InMonth {
		t.Errorf("cell 0 = %+v, want Sep 1", g[0])
	}
	if g[7].Date != (Date{2024, time.September, 8}) {
		t.Errorf("cell 7 = %v, want Sep 8", g[7].Date)
	}

	// May 2024 starts on a Wednesday: three padding cells from April.
	g = Grid(2024, time.May, Date{}, Date{}, nil)
	for i := 0; i < 3; i++ {
		if g[i].InMonth {
			t.Errorf("cell %d should be padding", i)
		}
	}
	if g[0].Date != (Date{2024, time.April, 28}) {
		t.Errorf("cell 0 = %v, want Apr 28", g[0].Date)
	}
	if g[3].Date != (Date{2024, time.May, 1}) {
		t.Errorf("cell 3 = %v, want May 1", g[3].Date)
	}
	if g[41].Date != (Date{2024, time.June, 8}) || g[41].InMonth {
		t.Errorf("cell 41 = %+v, want Jun 8 padding", g[41])
	}
}

func TestGridEventPlacement(t *testing.T) {
	scans := []models.ScanResult{{
		ID: "s1",
		Events: []models.Event{
			{ID: "e1", Title: "Dentist", Date: "2024-03-15"},
			{ID: "e2", Title: "Vague", Date: "sometime"},
		},
	}}
	events := Flatten(scans)
	if len(events) != 2 {
		t.Fatalf("unparseable event dropped from timeline: %d", len(events))
	}

	today := Date{2024, time.March, 1}
	selected := Date{2024, time.March, 15}
	g := Grid(2024, time.March, today, selected, events)

	hits := 0
	for _, c := range g {
		if len(c.Events) > 0 {
			hits++
			if c.Date != selected || c.Events[0].ID != "e1" || c.Events[0].ScanID != "s1" {
				t.Errorf("event placed on %v: %+v", c.Date, c.Events)
			}
			if !c.IsSelected {
				t.Error("cell should be selected")
			}
		}
		if c.IsToday != (c.Date == today) {
			t.Errorf("IsToday wrong on %v", c.Date)
		}
	}
	if hits != 1 {
		t.Errorf("event appears in %d cells, want 1", hits)
	}
}

func TestFlattenWeakTimeOrder(t *testing.T) {
	scans := []models.ScanResult{
		{ID: "b", Events: []models.Event{
			{ID: "1", Time: "15:00"},
			{ID: "2"},
			{ID: "3", Time: "09:00"},
		}},
		{ID: "a", Events: []models.Event{
			{ID: "4", Time: "12:00"},
			{ID: "5"},
			{ID: "6", Time: "09:00"},
		}},
	}
	got := ""
	for _, e := range Flatten(scans) {
		got += e.ID
	}
	// Untimed 2 and 5 stay put; timed events fill the other slots by time.
	if got != "326451" {
		t.Errorf("order = %s, want 326451", got)
	}
}

func TestFlattenEmpty(t *testing.T) {
	if got := Flatten(nil); got == nil || len(got) != 0 {
		t.Errorf("Flatten(nil) = %v", got)
	}
}

func TestCursor(t *testing.T) {
	now := time.Date(2024, time.March, 20, 14, 0, 0, 0, time.UTC)
	c := NewCursor(now)
	if c.Current != (Date{2024, time.March, 1}) || c.Selected != (Date{2024, time.March, 20}) {
		t.Fatalf("cursor = %+v", c)
	}

	c.ChangeMonth(-3)
	if c.Current != (Date{2023, time.December, 1}) {
		t.Errorf("current = %v, want 2023-12-01", c.Current)
	}
	c.ChangeMonth(14)
	if c.Current != (Date{2025, time.February, 1}) {
		t.Errorf("current = %v, want 2025-02-01", c.Current)
	}

	c.Today(now)
	c.Select(Date{2024, time.April, 2})
	if c.Current != (Date{2024, time.April, 1}) {
		t.Errorf("selecting padding day should re-center, current = %v", c.Current)
	}
	c.Select(Date{2024, time.April, 9})
	if c.Current != (Date{2024, time.April, 1}) || c.Selected != (Date{2024, time.April, 9}) {
		t.Errorf("cursor = %+v", c)
	}
}

func TestSelectedEvents(t *testing.T) {
	events := Flatten([]models.ScanResult{{ID: "s", Events: []models.Event{
		{ID: "a", Date: "2024-03-15", Time: "10:00"},
		{ID: "b", Date: "2024-03-16"},
	}}})
	c := Cursor{Current: Date{2024, time.March, 1}, Selected: Date{2024, time.March, 15}}
	got := c.SelectedEvents(events)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("selected events = %+v", got)
	}
	c.Select(Date{2024, time.March, 1})
	if got := c.SelectedEvents(events); got == nil || len(got) != 0 {
		t.Errorf("empty day = %v, want empty slice", got)
	}
}
