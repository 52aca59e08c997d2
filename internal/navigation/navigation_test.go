package navigation

import (
	"errors"
	"testing"

	"github.com/starford/scanboard/internal/apperr"
)

func TestCompleteScanShowsResults(t *testing.T) {
	s := New()
	s.CompleteScan("a")
	if s.View() != Results || s.ActiveScanID() != "a" {
		t.Errorf("state = %s/%q", s.View(), s.ActiveScanID())
	}
}

func TestResultsWithoutActiveFallsBack(t *testing.T) {
	s := New()
	v, err := s.Navigate(Results)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if v != Dashboard {
		t.Errorf("view = %s, want DASHBOARD", v)
	}

	s.ViewResult("x")
	_, _ = s.Navigate(Calendar)
	if v, _ := s.Navigate(Results); v != Results {
		t.Errorf("view = %s, want RESULTS", v)
	}
}

func TestDocumentsUnreachable(t *testing.T) {
	s := New()
	_, _ = s.Navigate(Settings)
	v, err := s.Navigate(Documents)
	if !errors.Is(err, ErrUnreachableView) {
		t.Errorf("err = %v, want ErrUnreachableView", err)
	}
	if v != Settings {
		t.Errorf("view = %s, want SETTINGS", v)
	}
}

func TestScanDeleted(t *testing.T) {
	s := New()
	s.ViewResult("a")

	s.ScanDeleted("b", false)
	if s.View() != Results || s.ActiveScanID() != "a" {
		t.Errorf("non-active delete changed state: %s/%q", s.View(), s.ActiveScanID())
	}

	s.ScanDeleted("a", true)
	if s.View() != Dashboard || s.ActiveScanID() != "" {
		t.Errorf("active delete: %s/%q", s.View(), s.ActiveScanID())
	}
}

func TestDataCleared(t *testing.T) {
	s := New()
	s.ViewResult("a")
	s.DataCleared()
	if s.View() != Dashboard || s.ActiveScanID() != "" {
		t.Errorf("state = %s/%q", s.View(), s.ActiveScanID())
	}
}

func TestBackFromAccountSecurityIsSettings(t *testing.T) {
	s := New()
	_, _ = s.Navigate(Calendar)
	_, _ = s.Navigate(AccountSecurity)
	if v := s.Back(); v != Settings {
		t.Errorf("back = %s, want SETTINGS", v)
	}
	if v := s.Back(); v != Dashboard {
		t.Errorf("back = %s, want DASHBOARD", v)
	}
}

func TestCancelScanAndLogout(t *testing.T) {
	s := New()
	_, _ = s.Navigate(Scanner)
	s.CancelScan()
	if s.View() != Dashboard {
		t.Errorf("view = %s", s.View())
	}
	_, _ = s.Navigate(Settings)
	s.Logout()
	if s.View() != Dashboard {
		t.Errorf("view = %s", s.View())
	}
}

func TestParseView(t *testing.T) {
	if v, err := ParseView("account_security"); err != nil || v != AccountSecurity {
		t.Errorf("ParseView = %s, %v", v, err)
	}
	if _, err := ParseView("inbox"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
