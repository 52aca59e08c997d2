package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/auth"
	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/gcal"
)

// CalendarSyncer pushes events to an external calendar.
type CalendarSyncer interface {
	Sync(ctx context.Context, events []calendar.EventRef) (gcal.Result, error)
}

// Config wires optional collaborators into the router.
type Config struct {
	AuthMode  auth.Mode
	AuthToken string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// Syncer, if non-nil, serves POST /calendar/sync.
	Syncer CalendarSyncer
	// Fetcher loads images given by URL in POST /scans.
	Fetcher *capture.Fetcher
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *app.Service, cfg Config) chi.Router {
	h := NewHandler(svc, cfg.Fetcher, cfg.Syncer)

	r := chi.NewRouter()

	// Signing in must stay reachable when access requires a session.
	if cfg.AuthMode == auth.ModeSession {
		r.Post("/session", h.Login)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthMode, cfg.AuthToken, svc.ValidSessionToken))

		if cfg.AuthMode != auth.ModeSession {
			r.Post("/session", h.Login)
		}
		r.Get("/session", h.GetSession)
		r.Delete("/session", h.Logout)

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)

		r.Get("/settings", h.GetSettings)
		r.Post("/settings/dark-mode", h.ToggleDarkMode)
		r.Post("/settings/preferences/{name}", h.TogglePreference)

		r.Get("/view", h.GetView)
		r.Post("/view", h.Navigate)
		r.Post("/view/back", h.Back)

		r.Get("/dashboard", h.Dashboard)

		r.Get("/scans", h.ListScans)
		r.Post("/scans", h.UploadScan)
		r.Delete("/scans", h.ClearScans)
		r.Delete("/scans/pending", h.DiscardPending)
		r.Post("/scans/process", h.ProcessScan)
		r.Get("/scans/status", h.ScanStatus)
		r.Get("/scans/{id}", h.GetScan)
		r.Get("/scans/{id}/image", h.ScanImage)
		r.Post("/scans/{id}/view", h.ViewScan)
		r.Delete("/scans/{id}", h.DeleteScan)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks/{id}/toggle", h.ToggleTask)
		r.Post("/tasks/{id}/delete", h.RequestTaskDelete)
		r.Post("/tasks/delete/confirm", h.ConfirmTaskDelete)
		r.Post("/tasks/delete/cancel", h.CancelTaskDelete)

		r.Get("/calendar", h.Calendar)
		r.Post("/calendar/month", h.CalendarMonth)
		r.Post("/calendar/today", h.CalendarToday)
		r.Post("/calendar/select", h.CalendarSelect)
		r.Post("/calendar/sync", h.CalendarSync)

		r.Get("/search", h.Search)
		r.Get("/export", h.Export)

		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	return r
}
