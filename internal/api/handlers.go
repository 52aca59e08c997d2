package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/navigation"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *app.Service
	fetcher *capture.Fetcher
	syncer  CalendarSyncer
}

// NewHandler creates a new Handler. fetcher may be nil, in which case only
// data URIs and uploads are accepted.
func NewHandler(svc *app.Service, fetcher *capture.Fetcher, syncer CalendarSyncer) *Handler {
	return &Handler{svc: svc, fetcher: fetcher, syncer: syncer}
}

// Login handles POST /api/session.
//
//	@Summary	Sign in with any credentials
//	@Tags		session
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	auth.Session
//	@Failure	400	{object}	errResponse
//	@Router		/session [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	sess, ok := h.svc.Session()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not signed in"))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Logout handles DELETE /api/session.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Logout())
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Profile())
}

// UpdateProfile handles PUT /api/profile.
//
//	@Summary	Replace the user profile
//	@Tags		session
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	models.Profile
//	@Failure	400	{object}	errResponse
//	@Router		/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := readJSON(w, r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	out, err := h.svc.UpdateProfile(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings())
}

// ToggleDarkMode handles POST /api/settings/dark-mode.
func (h *Handler) ToggleDarkMode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ToggleDarkMode())
}

// TogglePreference handles POST /api/settings/preferences/{name}.
func (h *Handler) TogglePreference(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.TogglePreference(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetView handles GET /api/view.
func (h *Handler) GetView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ViewState())
}

// Navigate handles POST /api/view.
//
//	@Summary	Switch the current view
//	@Tags		view
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	app.ViewState
//	@Failure	400	{object}	errResponse
//	@Router		/view [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	v, err := navigation.ParseView(req.View)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vs, err := h.svc.Navigate(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// Back handles POST /api/view/back.
func (h *Handler) Back(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Back())
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary	Dashboard statistics, recent scans and activity
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	app.Dashboard
//	@Router		/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dashboard())
}
