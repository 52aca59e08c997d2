package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/tasks"
)

var (
	filterCycle = []tasks.Filter{tasks.FilterAll, tasks.FilterPending, tasks.FilterCompleted}
	sortCycle   = []tasks.Sort{tasks.SortDeadline, tasks.SortPriority, tasks.SortTitle}
)

type resultsModel struct {
	svc    *app.Service
	width  int
	height int

	scan   models.ScanResult
	tasks  app.TaskView
	filter tasks.Filter
	sort   tasks.Sort
	cursor int
}

func newResultsModel(svc *app.Service) resultsModel {
	return resultsModel{
		svc:    svc,
		filter: tasks.FilterAll,
		sort:   tasks.SortDeadline,
	}
}

func (r *resultsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type resultsDataMsg struct {
	scan  models.ScanResult
	tasks app.TaskView
}

func (r resultsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tv, err := r.svc.Tasks(r.filter, r.sort)
		if err != nil {
			return errStatus(err)
		}
		scan, err := r.svc.GetScan(tv.ScanID)
		if err != nil {
			return errStatus(err)
		}
		return resultsDataMsg{scan: scan, tasks: tv}
	}
}

func (r resultsModel) capturing() bool {
	return r.tasks.Delete.Pending
}

func (r resultsModel) update(msg tea.Msg) (resultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsDataMsg:
		if msg.scan.ID != r.scan.ID {
			r.cursor = 0
		}
		r.scan = msg.scan
		r.tasks = msg.tasks
		r.cursor = clamp(r.cursor, 0, len(r.tasks.Tasks)-1)
		return r, nil

	case tea.KeyMsg:
		if r.tasks.Delete.Pending {
			return r.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, keys.Up):
			r.cursor = clamp(r.cursor-1, 0, len(r.tasks.Tasks)-1)
		case key.Matches(msg, keys.Down):
			r.cursor = clamp(r.cursor+1, 0, len(r.tasks.Tasks)-1)
		case key.Matches(msg, keys.Toggle):
			if t, ok := r.selected(); ok {
				return r, r.mutate(func() error {
					_, err := r.svc.ToggleTask(t.ID)
					return err
				})
			}
		case key.Matches(msg, keys.Delete):
			if t, ok := r.selected(); ok {
				return r, r.mutate(func() error {
					_, err := r.svc.RequestTaskDelete(t.ID)
					return err
				})
			}
		case key.Matches(msg, keys.Filter):
			r.filter = next(filterCycle, r.filter)
			return r, r.refresh()
		case key.Matches(msg, keys.Sort):
			r.sort = next(sortCycle, r.sort)
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r resultsModel) updateConfirm(msg tea.KeyMsg) (resultsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		return r, r.mutate(func() error {
			_, err := r.svc.ConfirmTaskDelete(r.filter, r.sort)
			return err
		})
	case key.Matches(msg, keys.Cancel):
		return r, r.mutate(func() error {
			r.svc.CancelTaskDelete()
			return nil
		})
	}
	return r, nil
}

// mutate runs fn and reloads the projection.
func (r resultsModel) mutate(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errStatus(err)
		}
		return r.refresh()()
	}
}

func (r resultsModel) selected() (models.Task, bool) {
	if r.cursor < 0 || r.cursor >= len(r.tasks.Tasks) {
		return models.Task{}, false
	}
	return r.tasks.Tasks[r.cursor], true
}

func next[T comparable](cycle []T, cur T) T {
	for i, v := range cycle {
		if v == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (r resultsModel) view() string {
	w := r.width - 4
	if r.scan.ID == "" {
		return panelStyle.Width(w).Render(mutedStyle.Render("No scan selected."))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Results"), "  ",
		mutedStyle.Render(formatCaptured(r.scan.Timestamp)),
	)

	rows := []string{
		header,
		normalItemStyle.Render(r.scan.Summary),
		"",
		subtitleStyle.Render(fmt.Sprintf("Tasks %d/%d done   filter: %s   sort: %s",
			r.tasks.Completed, r.tasks.Total, r.filter, r.sort)),
		r.renderTasks(w),
	}

	if r.tasks.Delete.Pending {
		rows = append(rows, "", warningStyle.Render("Delete this task? y: delete  n: keep"))
	}

	if len(r.scan.Events) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Events"))
		for _, e := range r.scan.Events {
			when := strings.TrimSpace(e.Date + " " + e.Time)
			line := fmt.Sprintf("  %s  %s", highlightStyle.Render(when), e.Title)
			if e.Location != "" {
				line += mutedStyle.Render(" @ " + e.Location)
			}
			rows = append(rows, line)
		}
	}

	if len(r.scan.Notes) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Notes"))
		for _, n := range r.scan.Notes {
			title := n.Title
			if title == "" {
				title = "Note"
			}
			rows = append(rows, fmt.Sprintf("  %s  %s", titleStyle.Render(title), truncate(n.Content, max(w-30, 20))))
			if len(n.Tags) > 0 {
				rows = append(rows, mutedStyle.Render("    #"+strings.Join(n.Tags, " #")))
			}
		}
	}

	if len(r.scan.StudyPlan) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Study plan"))
		for i, step := range r.scan.StudyPlan {
			rows = append(rows, fmt.Sprintf("  %d. %s", i+1, step))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  space: toggle  d: delete  f: filter  s: sort  esc: back"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (r resultsModel) renderTasks(w int) string {
	if len(r.tasks.Tasks) == 0 {
		return mutedStyle.Render("  No tasks match this filter.")
	}
	var rows []string
	for i, t := range r.tasks.Tasks {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		box := "[ ]"
		if t.Completed {
			box = successStyle.Render("[x]")
		}
		deadline := ""
		if t.Deadline != "" {
			deadline = mutedStyle.Render(" due " + t.Deadline)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s%s",
			cursor, box, priorityBadge(t.Priority), style.Render(truncate(t.Title, max(w-30, 10))), deadline))
	}
	return strings.Join(rows, "\n")
}

func priorityBadge(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return errorStyle.Render("H")
	case models.PriorityMedium:
		return warningStyle.Render("M")
	default:
		return mutedStyle.Render("L")
	}
}
