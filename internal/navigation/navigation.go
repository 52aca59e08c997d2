// Package navigation implements the view state machine.
package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/scanboard/internal/apperr"
)

// View is one application screen.
type View string

// Known views. Documents is declared but has no transition into it.
const (
	Dashboard       View = "DASHBOARD"
	Scanner         View = "SCANNER"
	Results         View = "RESULTS"
	Calendar        View = "CALENDAR"
	Documents       View = "DOCUMENTS"
	Settings        View = "SETTINGS"
	AccountSecurity View = "ACCOUNT_SECURITY"
)

// ErrUnreachableView is returned when navigating to a reserved view.
var ErrUnreachableView = errors.New("view is not reachable")

// ParseView parses a view name case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case Dashboard, Scanner, Results, Calendar, Documents, Settings, AccountSecurity:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q: %w", s, apperr.ErrInvalidInput)
}

// State holds the current view and the active scan reference.
type State struct {
	view   View
	active string
}

// New returns a state on the dashboard with no active scan.
func New() *State {
	return &State{view: Dashboard}
}

// View returns the current view.
func (s *State) View() View { return s.view }

// ActiveScanID returns the active scan id, or "".
func (s *State) ActiveScanID() string { return s.active }

// CompleteScan shows the results of a freshly stored scan.
func (s *State) CompleteScan(id string) {
	s.active = id
	s.view = Results
}

// ViewResult shows the results of a scan picked from a list.
func (s *State) ViewResult(id string) {
	s.active = id
	s.view = Results
}

// Navigate switches to v. Results without an active scan falls back to
// the dashboard.
func (s *State) Navigate(v View) (View, error) {
	switch v {
	case Documents:
		return s.view, fmt.Errorf("navigate to %s: %w", v, ErrUnreachableView)
	case Results:
		if s.active == "" {
			s.view = Dashboard
			return s.view, nil
		}
	case Dashboard, Scanner, Calendar, Settings, AccountSecurity:
	default:
		return s.view, fmt.Errorf("unknown view %q: %w", v, apperr.ErrInvalidInput)
	}
	s.view = v
	return s.view, nil
}

// ScanDeleted reacts to a scan removal. Deleting the active scan returns
// to the dashboard; any other deletion leaves the state unchanged.
func (s *State) ScanDeleted(id string, wasActive bool) {
	if !wasActive && id != s.active {
		return
	}
	s.active = ""
	s.view = Dashboard
}

// DataCleared reacts to the store being emptied.
func (s *State) DataCleared() {
	s.active = ""
	s.view = Dashboard
}

// Back performs back-navigation. Account security always returns to
// settings; other views return to the dashboard.
func (s *State) Back() View {
	switch s.view {
	case AccountSecurity:
		s.view = Settings
	case Dashboard:
	default:
		s.view = Dashboard
	}
	return s.view
}

// CancelScan leaves the scanner for the dashboard.
func (s *State) CancelScan() {
	if s.view == Scanner {
		s.view = Dashboard
	}
}

// Logout resets to the dashboard. The active scan is kept because scans
// outlive the session.
func (s *State) Logout() {
	s.view = Dashboard
}
