package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
)

type loginModel struct {
	svc   *app.Service
	width int

	form       *huh.Form
	signingIn  bool
	email      *string
	password   *string
	lastFailed string
}

func newLoginModel(svc *app.Service) loginModel {
	email, password := "", ""
	return loginModel{svc: svc, email: &email, password: &password}
}

func (l *loginModel) setSize(w, _ int) {
	l.width = w
}

func (l loginModel) start() (loginModel, tea.Cmd) {
	*l.password = ""
	l.signingIn = false
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(l.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(l.password),
		).Title("Sign in"),
	).WithShowHelp(true).WithShowErrors(true)
	return l, l.form.Init()
}

type loginFailedMsg struct {
	err error
}

func (l loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginFailedMsg:
		l.lastFailed = msg.err.Error()
		return l.start()
	}
	if l.form == nil || l.signingIn {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}
	switch l.form.State {
	case huh.StateCompleted:
		l.signingIn = true
		return l, l.login(*l.email, *l.password)
	case huh.StateAborted:
		return l, tea.Quit
	}
	return l, cmd
}

func (l loginModel) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := l.svc.Login(context.Background(), email, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return loggedInMsg{name: sess.Profile.Name}
	}
}

func (l loginModel) view() string {
	w := min(l.width-4, 60)
	title := titleStyle.Render("scanboard")
	sub := mutedStyle.Render("Any email and password will do.")

	var body string
	switch {
	case l.signingIn:
		body = highlightStyle.Render("Signing in...")
	case l.form != nil:
		body = l.form.View()
	}

	rows := []string{title, sub, "", body}
	if l.lastFailed != "" {
		rows = append(rows, "", errorStyle.Render(l.lastFailed))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
