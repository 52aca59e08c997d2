package app

import (
	"fmt"

	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/sse"
	"github.com/starford/scanboard/internal/tasks"
)

// TaskView is the results task list of the active scan.
type TaskView struct {
	ScanID    string            `json:"scanId"`
	Filter    tasks.Filter      `json:"filter"`
	Sort      tasks.Sort        `json:"sort"`
	Tasks     []models.Task     `json:"tasks"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Delete    tasks.DeleteState `json:"delete"`
}

// Tasks projects the active scan's task overlay.
func (s *Service) Tasks(f tasks.Filter, srt tasks.Sort) (TaskView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverlay(); err != nil {
		return TaskView{}, err
	}
	return s.taskView(f, srt), nil
}

// ToggleTask flips the completion flag of one task in the overlay.
func (s *Service) ToggleTask(id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverlay(); err != nil {
		return models.Task{}, err
	}
	t, err := s.overlay.Toggle(id)
	if err != nil {
		return models.Task{}, err
	}
	s.publish(sse.TypeTaskUpdated, t)
	return t, nil
}

// RequestTaskDelete marks a task as pending deletion.
func (s *Service) RequestTaskDelete(id string) (tasks.DeleteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverlay(); err != nil {
		return tasks.DeleteState{}, err
	}
	if err := s.overlay.RequestDelete(id); err != nil {
		return tasks.DeleteState{}, err
	}
	return s.overlay.DeleteState(), nil
}

// ConfirmTaskDelete removes the pending task from the overlay and returns
// the remaining tasks projected with f and srt.
func (s *Service) ConfirmTaskDelete(f tasks.Filter, srt tasks.Sort) (TaskView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverlay(); err != nil {
		return TaskView{}, err
	}
	t, err := s.overlay.ConfirmDelete()
	if err != nil {
		return TaskView{}, err
	}
	s.publish(sse.TypeTaskUpdated, map[string]any{"id": t.ID, "deleted": true})
	return s.taskView(f, srt), nil
}

// CancelTaskDelete clears the pending marker.
func (s *Service) CancelTaskDelete() tasks.DeleteState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay.CancelDelete()
	return s.overlay.DeleteState()
}

// ensureOverlay seeds the overlay when the active scan differs from the one
// it was seeded from.
func (s *Service) ensureOverlay() error {
	id := s.store.ActiveID()
	if id == "" {
		return fmt.Errorf("no active scan: %w", apperr.ErrNotFound)
	}
	if s.overlay.ScanID() != id {
		s.seedOverlay()
	}
	return nil
}

func (s *Service) seedOverlay() {
	active, ok := s.store.Active()
	if !ok {
		s.overlay.Reset()
		return
	}
	s.overlay.Seed(active.ID, active.Tasks)
}

func (s *Service) taskView(f tasks.Filter, srt tasks.Sort) TaskView {
	return TaskView{
		ScanID:    s.overlay.ScanID(),
		Filter:    f,
		Sort:      srt,
		Tasks:     s.overlay.Project(f, srt),
		Completed: s.overlay.CompletedCount(),
		Total:     s.overlay.TotalCount(),
		Delete:    s.overlay.DeleteState(),
	}
}

// CalendarView is the month grid with the selected day's events.
type CalendarView struct {
	Current        calendar.Date                        `json:"current"`
	Selected       calendar.Date                        `json:"selected"`
	Today          calendar.Date                        `json:"today"`
	Cells          [calendar.GridCells]calendar.DayCell `json:"cells"`
	SelectedEvents []calendar.EventRef                  `json:"selectedEvents"`
}

// Calendar returns the calendar for the current cursor.
func (s *Service) Calendar() CalendarView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calendarView()
}

// CalendarMonth moves the displayed month by offset.
func (s *Service) CalendarMonth(offset int) CalendarView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.ChangeMonth(offset)
	return s.calendarView()
}

// CalendarToday jumps to the current month and selects today.
func (s *Service) CalendarToday() CalendarView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Today(s.now())
	return s.calendarView()
}

// CalendarSelect selects a day given as text.
func (s *Service) CalendarSelect(date string) (CalendarView, error) {
	d, ok := calendar.ParseDate(date)
	if !ok {
		return CalendarView{}, fmt.Errorf("unparseable date %q: %w", date, apperr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Select(d)
	return s.calendarView(), nil
}

// AllEvents returns every event of every scan in calendar order.
func (s *Service) AllEvents() []calendar.EventRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calendar.Flatten(s.store.FindAll())
}

// EventsOn returns the events on one day.
func (s *Service) EventsOn(d calendar.Date) []calendar.EventRef {
	return calendar.ForDay(s.AllEvents(), d)
}

func (s *Service) calendarView() CalendarView {
	events := calendar.Flatten(s.store.FindAll())
	today := calendar.FromTime(s.now())
	return CalendarView{
		Current:        s.cursor.Current,
		Selected:       s.cursor.Selected,
		Today:          today,
		Cells:          s.cursor.Grid(today, events),
		SelectedEvents: s.cursor.SelectedEvents(events),
	}
}
