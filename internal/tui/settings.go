package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/navigation"
)

// settingRows are the toggles in display order. The empty name is dark mode.
var settingRows = []struct {
	pref  string
	label string
}{
	{"", "Dark mode"},
	{app.PrefNotifications, "Notifications"},
	{app.PrefEmailDigest, "Email digest"},
	{app.PrefCalendarSync, "Calendar sync"},
}

type settingsModel struct {
	svc   *app.Service
	width int

	settings     app.Settings
	profile      models.Profile
	cursor       int
	confirmClear bool

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	name  *string
	email *string
	role  *string
}

func newSettingsModel(svc *app.Service) settingsModel {
	n, e, r := "", "", ""
	return settingsModel{svc: svc, name: &n, email: &e, role: &r}
}

func (s *settingsModel) setSize(w, _ int) {
	s.width = w
}

type settingsDataMsg struct {
	settings app.Settings
	profile  models.Profile
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: s.svc.Settings(), profile: s.svc.Profile()}
	}
}

func (s settingsModel) capturing() bool {
	return s.formActive || s.confirmClear
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.profile = msg.profile
		return s, nil

	case tea.KeyMsg:
		if s.confirmClear {
			return s.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, keys.Up):
			s.cursor = clamp(s.cursor-1, 0, len(settingRows)-1)
		case key.Matches(msg, keys.Down):
			s.cursor = clamp(s.cursor+1, 0, len(settingRows)-1)
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			return s, s.toggle(settingRows[s.cursor].pref)
		case key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.Account):
			return s, navigate(s.svc, navigation.AccountSecurity)
		case key.Matches(msg, keys.Clear):
			s.confirmClear = true
		case key.Matches(msg, keys.Logout):
			return s, func() tea.Msg {
				s.svc.Logout()
				return loggedOutMsg{}
			}
		}
	}
	return s, nil
}

func (s settingsModel) toggle(pref string) tea.Cmd {
	return func() tea.Msg {
		if pref == "" {
			st := s.svc.ToggleDarkMode()
			return themeMsg{dark: st.DarkMode}
		}
		if _, err := s.svc.TogglePreference(pref); err != nil {
			return errStatus(err)
		}
		return s.refresh()()
	}
}

func (s settingsModel) updateConfirm(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		s.confirmClear = false
		return s, func() tea.Msg {
			return viewMsg{state: s.svc.ClearData()}
		}
	case key.Matches(msg, keys.Cancel):
		s.confirmClear = false
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.name = s.profile.Name
	*s.email = s.profile.Email
	*s.role = s.profile.Role

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(s.name),
			huh.NewInput().Title("Email").Value(s.email),
			huh.NewInput().Title("Role").Value(s.role),
		).Title("Profile"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateAborted {
		s.formActive = false
		s.form = nil
		return s, nil
	}
	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		p := s.profile
		p.Name, p.Email, p.Role = *s.name, *s.email, *s.role
		return s, func() tea.Msg {
			if _, err := s.svc.UpdateProfile(p); err != nil {
				return errStatus(err)
			}
			return s.refresh()()
		}
	}
	return s, cmd
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()))
	}

	rows := []string{
		title,
		"",
		subtitleStyle.Render("Profile"),
		fmt.Sprintf("  %s  %s", titleStyle.Render(s.profile.Name), mutedStyle.Render(s.profile.Email)),
	}
	if s.profile.Role != "" {
		rows = append(rows, mutedStyle.Render("  "+s.profile.Role))
	}
	rows = append(rows, "", subtitleStyle.Render("Preferences"))

	for i, r := range settingRows {
		on := s.settings.Preferences[r.pref]
		if r.pref == "" {
			on = s.settings.DarkMode
		}
		state := mutedStyle.Render("off")
		if on {
			state = successStyle.Render("on")
		}
		cursor := "  "
		style := normalItemStyle
		if i == s.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		label := lipgloss.NewStyle().Width(20).Render(r.label)
		rows = append(rows, cursor+style.Render(label)+" "+state)
	}

	rows = append(rows, "")
	if s.confirmClear {
		rows = append(rows, warningStyle.Render("Delete every scan? y: clear  n: keep"))
	} else {
		rows = append(rows, mutedStyle.Render("  space: toggle  e: edit profile  a: account  c: clear data  L: log out"))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
