package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/navigation"
)

type dashboardModel struct {
	svc    *app.Service
	width  int
	height int

	data          app.Dashboard
	cursor        int
	pendingDelete string

	chart barchart.Model
}

func newDashboardModel(svc *app.Service) dashboardModel {
	return dashboardModel{
		svc:   svc,
		chart: barchart.New(40, 8),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.buildChart()
}

type dashboardDataMsg struct {
	data app.Dashboard
}

func (d dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return dashboardDataMsg{data: d.svc.Dashboard()}
	}
}

// capturing reports whether a delete confirmation owns the keyboard.
func (d dashboardModel) capturing() bool {
	return d.pendingDelete != ""
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.data = msg.data
		d.cursor = clamp(d.cursor, 0, len(d.data.Recent)-1)
		d.buildChart()
		return d, nil

	case tea.KeyMsg:
		if d.pendingDelete != "" {
			return d.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, keys.Up):
			d.cursor = clamp(d.cursor-1, 0, len(d.data.Recent)-1)
		case key.Matches(msg, keys.Down):
			d.cursor = clamp(d.cursor+1, 0, len(d.data.Recent)-1)
		case key.Matches(msg, keys.Enter):
			if id, ok := d.selected(); ok {
				return d, d.viewScan(id)
			}
		case key.Matches(msg, keys.Delete):
			if id, ok := d.selected(); ok {
				d.pendingDelete = id
			}
		case key.Matches(msg, keys.New):
			return d, navigate(d.svc, navigation.Scanner)
		}
	}
	return d, nil
}

func (d dashboardModel) updateConfirm(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		id := d.pendingDelete
		d.pendingDelete = ""
		return d, func() tea.Msg {
			st, err := d.svc.DeleteScan(id)
			if err != nil {
				return errStatus(err)
			}
			return viewMsg{state: st}
		}
	case key.Matches(msg, keys.Cancel):
		d.pendingDelete = ""
	}
	return d, nil
}

func (d dashboardModel) selected() (string, bool) {
	if d.cursor < 0 || d.cursor >= len(d.data.Recent) {
		return "", false
	}
	return d.data.Recent[d.cursor].ID, true
}

func (d dashboardModel) viewScan(id string) tea.Cmd {
	return func() tea.Msg {
		st, err := d.svc.ViewScan(id)
		if err != nil {
			return errStatus(err)
		}
		return viewMsg{state: st}
	}
}

func (d *dashboardModel) buildChart() {
	chartWidth := max(d.width-8, 28)
	d.chart = barchart.New(chartWidth, 8)

	bars := make([]barchart.BarData, 0, len(d.data.Activity))
	for _, day := range d.data.Activity {
		bars = append(bars, barchart.BarData{
			Label: day.Day.Time().Format("Mon"),
			Values: []barchart.BarValue{{
				Name:  "tasks",
				Value: float64(day.Tasks),
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	w := d.width - 4
	st := d.data.Stats

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Scans", st.ScanCount),
		statBox("Tasks", st.TotalTasks),
		statBox("Events", st.TotalEvents),
	)

	rows := []string{
		titleStyle.Render("Dashboard"),
		"",
		stats,
		"",
		subtitleStyle.Render("Tasks extracted, last 7 days"),
		d.chart.View(),
		"",
		subtitleStyle.Render("Recent scans"),
		d.renderRecent(w),
	}

	if d.pendingDelete != "" {
		rows = append(rows, "", warningStyle.Render("Delete this scan? y: delete  n: keep"))
	} else {
		rows = append(rows, "", mutedStyle.Render("  enter: open  d: delete  n: new scan"))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (d dashboardModel) renderRecent(w int) string {
	if len(d.data.Recent) == 0 {
		return mutedStyle.Render("  No scans yet. Press n to scan an image.")
	}
	var rows []string
	for i, s := range d.data.Recent {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%s  %s  %s",
			cursor,
			formatCaptured(s.Timestamp),
			truncate(s.Summary, max(w-40, 10)),
			mutedStyle.Render(fmt.Sprintf("%dt %de", len(s.Tasks), len(s.Events))),
		)
		rows = append(rows, style.Render(line))
	}
	return strings.Join(rows, "\n")
}

func statBox(label string, n int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(0, 2).
		MarginRight(1).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			highlightStyle.Bold(true).Render(fmt.Sprintf("%d", n)),
			mutedStyle.Render(label),
		))
}
