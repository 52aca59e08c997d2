package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/calendar"
)

const syncTimeout = 2 * time.Minute

type calendarModel struct {
	svc   *app.Service
	sync  SyncFunc
	width int

	cal     app.CalendarView
	syncing bool
}

func newCalendarModel(svc *app.Service, sync SyncFunc) calendarModel {
	return calendarModel{svc: svc, sync: sync}
}

func (c *calendarModel) setSize(w, _ int) {
	c.width = w
}

type calendarDataMsg struct {
	cal app.CalendarView
}

type syncDoneMsg struct {
	text string
	err  error
}

func (c calendarModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return calendarDataMsg{cal: c.svc.Calendar()}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		c.cal = msg.cal
		return c, nil

	case syncDoneMsg:
		c.syncing = false
		if msg.err != nil {
			return c, func() tea.Msg { return errStatus(msg.err) }
		}
		return c, func() tea.Msg { return statusMsg{text: msg.text} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			return c, c.move(-1)
		case key.Matches(msg, keys.Right):
			return c, c.move(1)
		case key.Matches(msg, keys.Up):
			return c, c.move(-7)
		case key.Matches(msg, keys.Down):
			return c, c.move(7)
		case key.Matches(msg, keys.PrevMonth):
			return c, c.load(func() (app.CalendarView, error) { return c.svc.CalendarMonth(-1), nil })
		case key.Matches(msg, keys.NextMonth):
			return c, c.load(func() (app.CalendarView, error) { return c.svc.CalendarMonth(1), nil })
		case key.Matches(msg, keys.Today):
			return c, c.load(func() (app.CalendarView, error) { return c.svc.CalendarToday(), nil })
		case key.Matches(msg, keys.Sync):
			return c.startSync()
		}
	}
	return c, nil
}

// move selects the day n days away from the current selection. Leaving the
// displayed month recenters the grid on the new day.
func (c calendarModel) move(n int) tea.Cmd {
	sel := c.cal.Selected
	if sel.IsZero() {
		sel = c.cal.Today
	}
	target := sel.AddDays(n)
	return c.load(func() (app.CalendarView, error) {
		return c.svc.CalendarSelect(target.String())
	})
}

func (c calendarModel) load(fn func() (app.CalendarView, error)) tea.Cmd {
	return func() tea.Msg {
		cv, err := fn()
		if err != nil {
			return errStatus(err)
		}
		return calendarDataMsg{cal: cv}
	}
}

func (c calendarModel) startSync() (calendarModel, tea.Cmd) {
	switch {
	case c.sync == nil:
		return c, func() tea.Msg {
			return statusMsg{text: "Google Calendar is not configured", isError: true}
		}
	case !c.svc.Preference(app.PrefCalendarSync):
		return c, func() tea.Msg {
			return statusMsg{text: "Calendar sync is turned off in settings", isError: true}
		}
	case c.syncing:
		return c, nil
	}
	c.syncing = true
	sync := c.sync
	return c, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		res, err := sync(ctx)
		if err != nil {
			return syncDoneMsg{err: err}
		}
		return syncDoneMsg{text: fmt.Sprintf("Synced: %d created, %d updated, %d skipped",
			res.Created, res.Updated, res.Skipped)}
	}
}

func (c calendarModel) view() string {
	w := c.width - 4
	cur := c.cal.Current
	if cur.IsZero() {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading calendar..."))
	}

	header := titleStyle.Render(cur.Time().Format("January 2006"))
	grid := c.renderGrid()

	selTitle := "Events on " + c.cal.Selected.Time().Format("Mon, Jan 2")
	rows := []string{header, "", grid, "", subtitleStyle.Render(selTitle)}
	if len(c.cal.SelectedEvents) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing scheduled."))
	}
	for _, e := range c.cal.SelectedEvents {
		when := e.Time
		if when == "" {
			when = "all day"
		}
		line := fmt.Sprintf("  %s  %s", highlightStyle.Render(fmt.Sprintf("%-7s", when)), e.Title)
		if e.Location != "" {
			line += mutedStyle.Render(" @ " + e.Location)
		}
		rows = append(rows, line)
	}

	nav := "  arrows: move  [/]: month  t: today"
	if c.sync != nil {
		nav += "  g: google sync"
	}
	if c.syncing {
		nav = "  syncing with Google Calendar..."
	}
	rows = append(rows, "", mutedStyle.Render(nav))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (c calendarModel) renderGrid() string {
	var b strings.Builder
	for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %-4s", d)))
	}
	for i, cell := range c.cal.Cells {
		if i%7 == 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderCell(cell))
	}
	return b.String()
}

func renderCell(cell calendar.DayCell) string {
	mark := " "
	if len(cell.Events) > 0 {
		mark = "•"
	}
	text := fmt.Sprintf("%2d%s", cell.Date.Day, mark)

	style := normalItemStyle
	switch {
	case cell.IsSelected:
		style = selectedCellStyle
	case cell.IsToday:
		style = todayCellStyle
	case !cell.InMonth:
		style = outsideCellStyle
	}
	return " " + style.Render(text) + "  "
}
