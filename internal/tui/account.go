package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/auth"
)

type accountModel struct {
	svc   *app.Service
	width int

	session  auth.Session
	signedIn bool
}

func newAccountModel(svc *app.Service) accountModel {
	return accountModel{svc: svc}
}

func (a *accountModel) setSize(w, _ int) {
	a.width = w
}

type accountDataMsg struct {
	session  auth.Session
	signedIn bool
}

func (a accountModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sess, ok := a.svc.Session()
		return accountDataMsg{session: sess, signedIn: ok}
	}
}

func (a accountModel) update(msg tea.Msg) (accountModel, tea.Cmd) {
	if msg, ok := msg.(accountDataMsg); ok {
		a.session = msg.session
		a.signedIn = msg.signedIn
	}
	return a, nil
}

func (a accountModel) view() string {
	w := a.width - 4
	rows := []string{titleStyle.Render("Account security"), ""}
	if !a.signedIn {
		rows = append(rows, mutedStyle.Render("  Not signed in."))
	} else {
		p := a.session.Profile
		rows = append(rows,
			fmt.Sprintf("  %s %s", highlightStyle.Render(auth.Initials(p.Name)), titleStyle.Render(p.Name)),
			fmt.Sprintf("  %-12s %s", "Email", p.Email),
			fmt.Sprintf("  %-12s %s", "Signed in", a.session.StartedAt.Format(time.DateTime)),
			fmt.Sprintf("  %-12s %s", "Session", truncate(a.session.Token, 9)),
		)
	}
	rows = append(rows, "", mutedStyle.Render("  esc: back to settings"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
