package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/capture"
	"github.com/starford/scanboard/internal/scanner"
)

const pollInterval = 200 * time.Millisecond

type scannerModel struct {
	svc   *app.Service
	width int

	state scanner.State
	path  *string

	formActive bool
	form       *huh.Form

	bar progress.Model
}

func newScannerModel(svc *app.Service) scannerModel {
	p := ""
	return scannerModel{
		svc:  svc,
		path: &p,
		bar:  progress.New(progress.WithDefaultGradient()),
	}
}

func (s *scannerModel) setSize(w, _ int) {
	s.width = w
	s.bar.Width = max(w-12, 20)
}

type scanStateMsg struct {
	state scanner.State
}

type scanPollMsg struct{}

type scanDoneMsg struct {
	err error
}

func (s scannerModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return scanStateMsg{state: s.svc.ScanStatus()}
	}
}

func (s scannerModel) capturing() bool {
	return s.formActive || s.state.Status == scanner.StatusAnalyzing
}

func (s scannerModel) update(msg tea.Msg) (scannerModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case scanStateMsg:
		s.state = msg.state
		if s.state.Status == scanner.StatusIdle {
			return s.showForm()
		}
		return s, nil

	case scanPollMsg:
		s.state = s.svc.ScanStatus()
		if s.state.Status == scanner.StatusAnalyzing {
			return s, poll()
		}
		return s, nil

	case scanDoneMsg:
		s.state = s.svc.ScanStatus()
		if msg.err != nil {
			return s, func() tea.Msg { return errStatus(msg.err) }
		}
		return s, func() tea.Msg { return viewMsg{state: s.svc.ViewState()} }

	case tea.KeyMsg:
		if s.state.Status == scanner.StatusAnalyzing {
			if key.Matches(msg, keys.Quit) {
				return s, tea.Quit
			}
			return s, nil
		}
		switch {
		case key.Matches(msg, keys.Enter):
			if s.state.HasImage {
				return s.analyze()
			}
			return s.showForm()
		case key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s scannerModel) showForm() (scannerModel, tea.Cmd) {
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Image file").
				Description("Path to a PNG, JPEG, GIF or WebP photo").
				Value(s.path).
				Validate(func(p string) error {
					if strings.TrimSpace(p) == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),
		).Title("New scan"),
	).WithShowHelp(true).WithShowErrors(true)
	s.formActive = true
	return s, s.form.Init()
}

func (s scannerModel) updateForm(msg tea.Msg) (scannerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, s.cancel()
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		s.form = nil
		return s, s.load(strings.TrimSpace(*s.path))
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, s.cancel()
	}
	return s, cmd
}

func (s scannerModel) load(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := capture.FromFile(path)
		if err != nil {
			return errStatus(err)
		}
		st, err := s.svc.StartScan(img)
		if err != nil {
			return errStatus(err)
		}
		return scanStateMsg{state: st}
	}
}

func (s scannerModel) analyze() (scannerModel, tea.Cmd) {
	s.state.Status = scanner.StatusAnalyzing
	s.state.Progress = 0
	process := func() tea.Msg {
		_, err := s.svc.ProcessScan(context.Background())
		return scanDoneMsg{err: err}
	}
	return s, tea.Batch(process, poll())
}

func (s scannerModel) cancel() tea.Cmd {
	return func() tea.Msg {
		st, err := s.svc.CancelScan()
		if err != nil {
			return errStatus(err)
		}
		return viewMsg{state: st}
	}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return scanPollMsg{} })
}

func (s scannerModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Scanner")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()))
	}

	rows := []string{title, ""}
	switch s.state.Status {
	case scanner.StatusPreview:
		rows = append(rows,
			normalItemStyle.Render("Image ready: "+*s.path),
			mutedStyle.Render("checksum "+truncate(s.state.ImageChecksum, 16)),
			"",
			mutedStyle.Render("  enter: analyze  n: pick another  esc: cancel"))
	case scanner.StatusAnalyzing:
		rows = append(rows,
			highlightStyle.Render(s.state.Stage),
			"",
			s.bar.ViewAs(float64(s.state.Progress)/100))
	case scanner.StatusFailed:
		rows = append(rows,
			errorStyle.Render(s.state.Stage),
			mutedStyle.Render(s.state.Error),
			"",
			mutedStyle.Render("  enter: retry  n: pick another  esc: cancel"))
	default:
		rows = append(rows, mutedStyle.Render("  enter: choose an image"))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
