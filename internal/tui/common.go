package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/gcal"
	"github.com/starford/scanboard/internal/navigation"
)

// SyncFunc pushes every calendar event to an external calendar.
type SyncFunc func(ctx context.Context) (gcal.Result, error)

// tabs are the views reachable from the header, in key order.
var tabs = []struct {
	view navigation.View
	name string
}{
	{navigation.Dashboard, "Dashboard"},
	{navigation.Scanner, "Scanner"},
	{navigation.Results, "Results"},
	{navigation.Calendar, "Calendar"},
	{navigation.Settings, "Settings"},
}

// --- Messages ---

type viewMsg struct {
	state app.ViewState
}

type statusMsg struct {
	text    string
	isError bool
}

type loggedInMsg struct {
	name string
}

type loggedOutMsg struct{}

type themeMsg struct {
	dark bool
}

func errStatus(err error) tea.Msg {
	return statusMsg{text: errText(err), isError: true}
}

func errText(err error) string {
	if errors.Is(err, navigation.ErrUnreachableView) {
		return "That view is not available yet"
	}
	return err.Error()
}

// --- Commands ---

func navigate(svc *app.Service, v navigation.View) tea.Cmd {
	return func() tea.Msg {
		st, err := svc.Navigate(v)
		if err != nil {
			return errStatus(err)
		}
		return viewMsg{state: st}
	}
}

func back(svc *app.Service) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{state: svc.Back()}
	}
}

// --- Helpers ---

func formatCaptured(ms int64) string {
	return time.UnixMilli(ms).Format("Jan 02 15:04")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func clamp(i, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(i, lo), hi)
}
