// Package app composes the scan store, navigation, task overlay, calendar
// cursor, scanner workflow, session and settings into one state object with
// atomic mutators.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scanboard/internal/analyzer"
	"github.com/starford/scanboard/internal/apperr"
	"github.com/starford/scanboard/internal/archive"
	"github.com/starford/scanboard/internal/auth"
	"github.com/starford/scanboard/internal/calendar"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/navigation"
	"github.com/starford/scanboard/internal/normalize"
	"github.com/starford/scanboard/internal/scanner"
	"github.com/starford/scanboard/internal/scanstore"
	"github.com/starford/scanboard/internal/sse"
	"github.com/starford/scanboard/internal/tasks"
)

// Preference names.
const (
	PrefNotifications = "notifications"
	PrefEmailDigest   = "emailDigest"
	PrefCalendarSync  = "calendarSync"
)

// DefaultProfile is shown before anyone signs in.
var DefaultProfile = models.Profile{
	Name:  "John Doe",
	Email: "john.doe@example.com",
	Role:  "Productivity Enthusiast",
}

// Notifier receives change events.
type Notifier interface {
	Publish(event sse.Event)
	PublishStoreChange(event sse.Event, dashboard any)
}

// Settings are the user's display and notification preferences.
type Settings struct {
	DarkMode    bool            `json:"darkMode"`
	Preferences map[string]bool `json:"preferences"`
}

// ViewState is the navigation state as seen by clients.
type ViewState struct {
	View         navigation.View `json:"view"`
	ActiveScanID string          `json:"activeScanId,omitempty"`
}

// Service is the single composed application state. Every exported method
// is safe for concurrent use and runs atomically.
type Service struct {
	auth         *auth.Authenticator
	mirror       archive.Mirror
	blobs        *capture.Blobs
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
	newID        normalize.IDFunc
	progressTick time.Duration

	workflow   *scanner.Workflow
	background *scanner.Workflow
	ingestMu   sync.Mutex

	mu       sync.Mutex
	store    *scanstore.Store
	nav      *navigation.State
	overlay  *tasks.Overlay
	cursor   calendar.Cursor
	session  *auth.Session
	profile  models.Profile
	settings Settings
}

// New builds a Service around an analyzer. When a mirror is configured the
// store is restored from it.
func New(an analyzer.Analyzer, opts ...Option) (*Service, error) {
	s := &Service{
		logger:  slog.Default(),
		now:     time.Now,
		store:   scanstore.New(),
		nav:     navigation.New(),
		overlay: tasks.NewOverlay(),
		profile: DefaultProfile,
		settings: Settings{Preferences: map[string]bool{
			PrefNotifications: true,
			PrefEmailDigest:   false,
			PrefCalendarSync:  true,
		}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auth == nil {
		s.auth = auth.New()
	}
	s.cursor = calendar.NewCursor(s.now())

	wfOpts := []scanner.Option{
		scanner.WithClock(s.now),
		scanner.WithNotify(s.publishProgress),
	}
	if s.progressTick > 0 {
		wfOpts = append(wfOpts, scanner.WithTick(s.progressTick))
	}
	s.workflow = scanner.New(an, normalize.New(s.newID), wfOpts...)
	s.background = scanner.New(an, normalize.New(s.newID), scanner.WithClock(s.now))

	if s.mirror != nil {
		scans, err := s.mirror.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("app: restore scans: %w", err)
		}
		if err := s.store.Restore(scans); err != nil {
			return nil, fmt.Errorf("app: restore scans: %w", err)
		}
		s.logger.Info("scans restored", slog.Int("count", len(scans)))
	}
	return s, nil
}

// Login signs in with any credentials. The simulated delay runs outside
// the state lock.
func (s *Service) Login(ctx context.Context, email, secret string) (auth.Session, error) {
	sess, err := s.auth.Login(ctx, email, secret)
	if err != nil {
		return auth.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Name = sess.Profile.Name
	s.profile.Email = sess.Profile.Email
	sess.Profile = s.profile
	s.session = &sess
	s.logger.Info("signed in", slog.String("email", sess.Profile.Email))
	return sess, nil
}

// Logout ends the session and returns to the dashboard.
func (s *Service) Logout() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.nav.Logout()
	return s.viewState()
}

// Session returns the current session, if any.
func (s *Service) Session() (auth.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return auth.Session{}, false
	}
	sess := *s.session
	sess.Profile = s.profile
	return sess, true
}

// ValidSessionToken reports whether token belongs to the current session.
func (s *Service) ValidSessionToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && token != "" && s.session.Token == token
}

// Profile returns the user profile.
func (s *Service) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// UpdateProfile replaces the profile after validation.
func (s *Service) UpdateProfile(p models.Profile) (models.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Role = strings.TrimSpace(p.Role)
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Email, validation.Required, validation.Match(emailRe)),
		validation.Field(&p.Role, validation.Length(0, 100)),
	); err != nil {
		return models.Profile{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return s.profile, nil
}

// Settings returns a copy of the settings.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsCopy()
}

// ToggleDarkMode flips the dark-mode flag.
func (s *Service) ToggleDarkMode() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.DarkMode = !s.settings.DarkMode
	return s.settingsCopy()
}

// TogglePreference flips a known preference.
func (s *Service) TogglePreference(name string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings.Preferences[name]
	if !ok {
		return Settings{}, fmt.Errorf("unknown preference %q: %w", name, apperr.ErrInvalidInput)
	}
	s.settings.Preferences[name] = !v
	return s.settingsCopy(), nil
}

// Preference returns the value of a preference.
func (s *Service) Preference(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Preferences[name]
}

func (s *Service) settingsCopy() Settings {
	prefs := make(map[string]bool, len(s.settings.Preferences))
	for k, v := range s.settings.Preferences {
		prefs[k] = v
	}
	return Settings{DarkMode: s.settings.DarkMode, Preferences: prefs}
}

// ViewState returns the navigation state.
func (s *Service) ViewState() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewState()
}

// Navigate switches views.
func (s *Service) Navigate(v navigation.View) (ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.nav.Navigate(v); err != nil {
		return s.viewState(), err
	}
	return s.viewState(), nil
}

// Back performs back-navigation.
func (s *Service) Back() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Back()
	return s.viewState()
}

func (s *Service) viewState() ViewState {
	return ViewState{View: s.nav.View(), ActiveScanID: s.nav.ActiveScanID()}
}
