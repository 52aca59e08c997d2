package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/tasks"
)

const syncTimeout = 2 * time.Minute

// ListTasks handles GET /api/tasks?filter=&sort=.
//
//	@Summary	Task list of the active scan
//	@Tags		tasks
//	@Produce	json
//	@Param		filter	query	string	false	"Filter"	Enums(all, pending, completed)
//	@Param		sort	query	string	false	"Sort"		Enums(deadline, priority, title)
//	@Success	200		{object}	app.TaskView
//	@Failure	404		{object}	errResponse
//	@Router		/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	f, s, err := taskQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.Tasks(f, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func taskQuery(r *http.Request) (tasks.Filter, tasks.Sort, error) {
	q := r.URL.Query()
	f, err := tasks.ParseFilter(q.Get("filter"))
	if err != nil {
		return "", "", err
	}
	s, err := tasks.ParseSort(q.Get("sort"))
	if err != nil {
		return "", "", err
	}
	return f, s, nil
}

// ToggleTask handles POST /api/tasks/{id}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.ToggleTask(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// RequestTaskDelete handles POST /api/tasks/{id}/delete.
func (h *Handler) RequestTaskDelete(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.RequestTaskDelete(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ConfirmTaskDelete handles POST /api/tasks/delete/confirm?filter=&sort=.
// The response is the task list projected with the given filter and sort.
func (h *Handler) ConfirmTaskDelete(w http.ResponseWriter, r *http.Request) {
	f, s, err := taskQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.ConfirmTaskDelete(f, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CancelTaskDelete handles POST /api/tasks/delete/cancel.
func (h *Handler) CancelTaskDelete(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CancelTaskDelete())
}

// Calendar handles GET /api/calendar.
//
//	@Summary	Month grid and the selected day's events
//	@Tags		calendar
//	@Produce	json
//	@Success	200	{object}	app.CalendarView
//	@Router		/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Calendar())
}

// CalendarMonth handles POST /api/calendar/month.
func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offset int `json:"offset"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.CalendarMonth(req.Offset))
}

// CalendarToday handles POST /api/calendar/today.
func (h *Handler) CalendarToday(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CalendarToday())
}

// CalendarSelect handles POST /api/calendar/select.
func (h *Handler) CalendarSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	view, err := h.svc.CalendarSelect(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CalendarSync handles POST /api/calendar/sync.
//
//	@Summary	Push every event to Google Calendar
//	@Tags		calendar
//	@Produce	json
//	@Success	200	{object}	gcal.Result
//	@Failure	409	{object}	errResponse
//	@Failure	503	{object}	errResponse
//	@Router		/calendar/sync [post]
func (h *Handler) CalendarSync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("calendar sync is not configured"))
		return
	}
	if !h.svc.Preference(app.PrefCalendarSync) {
		writeJSON(w, http.StatusConflict, errorBody("calendar sync is turned off in settings"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()
	res, err := h.syncer.Sync(ctx, h.svc.AllEvents())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
