// Package tui is a terminal client over the application service.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/scanboard/internal/app"
	"github.com/starford/scanboard/internal/navigation"
)

// Option configures the App.
type Option func(*App)

// WithSyncer enables the Google Calendar sync key.
func WithSyncer(fn SyncFunc) Option {
	return func(a *App) { a.sync = fn }
}

// App is the root Bubble Tea model.
type App struct {
	svc    *app.Service
	sync   SyncFunc
	width  int
	height int

	signedIn bool
	view     navigation.View
	showHelp bool

	login     loginModel
	dashboard dashboardModel
	scanner   scannerModel
	results   resultsModel
	calendar  calendarModel
	settings  settingsModel
	account   accountModel

	help      help.Model
	status    string
	statusErr bool
}

// New returns the root model. A session already open on svc skips sign-in.
func New(svc *app.Service, opts ...Option) App {
	a := App{svc: svc}
	for _, opt := range opts {
		opt(&a)
	}
	h := help.New()
	h.ShowAll = false

	_, a.signedIn = svc.Session()
	a.view = svc.ViewState().View
	a.help = h
	a.login = newLoginModel(svc)
	a.dashboard = newDashboardModel(svc)
	a.scanner = newScannerModel(svc)
	a.results = newResultsModel(svc)
	a.calendar = newCalendarModel(svc, a.sync)
	a.settings = newSettingsModel(svc)
	a.account = newAccountModel(svc)
	applyTheme(svc.Settings().DarkMode)
	return a
}

func (a App) Init() tea.Cmd {
	if !a.signedIn {
		return func() tea.Msg { return loggedOutMsg{} }
	}
	return a.refreshCurrentView()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.login.setSize(a.width, contentHeight)
		a.dashboard.setSize(a.width, contentHeight)
		a.scanner.setSize(a.width, contentHeight)
		a.results.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.account.setSize(a.width, contentHeight)
		return a, nil

	case loggedInMsg:
		a.signedIn = true
		a.status = "Welcome, " + msg.name
		a.statusErr = false
		a.view = a.svc.ViewState().View
		return a, a.refreshCurrentView()

	case loggedOutMsg:
		a.signedIn = false
		a.view = a.svc.ViewState().View
		var cmd tea.Cmd
		a.login, cmd = a.login.start()
		return a, cmd

	case viewMsg:
		a.view = msg.state.View
		return a, a.refreshCurrentView()

	case themeMsg:
		applyTheme(msg.dark)
		return a, a.settings.refresh()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case tea.KeyMsg:
		if !a.signedIn {
			break
		}
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a, navigate(a.svc, navigation.Dashboard)
		case key.Matches(msg, keys.Tab2):
			return a, navigate(a.svc, navigation.Scanner)
		case key.Matches(msg, keys.Tab3):
			return a, a.openResults()
		case key.Matches(msg, keys.Tab4):
			return a, navigate(a.svc, navigation.Calendar)
		case key.Matches(msg, keys.Tab5):
			return a, navigate(a.svc, navigation.Settings)
		case key.Matches(msg, keys.Back):
			if a.view == navigation.Scanner {
				return a, a.scanner.cancel()
			}
			return a, back(a.svc)
		}
	}

	if !a.signedIn {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}
	return a.routeMessage(msg)
}

// openResults navigates to results, reporting when there is nothing to show.
func (a App) openResults() tea.Cmd {
	return func() tea.Msg {
		st, err := a.svc.Navigate(navigation.Results)
		if err != nil {
			return errStatus(err)
		}
		if st.View != navigation.Results {
			return statusMsg{text: "Open a scan from the dashboard first"}
		}
		return viewMsg{state: st}
	}
}

// routeMessage hands data messages to the model that owns them and
// everything else to the active view.
func (a App) routeMessage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case dashboardDataMsg:
		a.dashboard, cmd = a.dashboard.update(msg)
	case scanStateMsg, scanPollMsg, scanDoneMsg:
		a.scanner, cmd = a.scanner.update(msg)
	case resultsDataMsg:
		a.results, cmd = a.results.update(msg)
	case calendarDataMsg, syncDoneMsg:
		a.calendar, cmd = a.calendar.update(msg)
	case settingsDataMsg:
		a.settings, cmd = a.settings.update(msg)
	case accountDataMsg:
		a.account, cmd = a.account.update(msg)
	default:
		return a.updateActiveView(msg)
	}
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case navigation.Dashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case navigation.Scanner:
		a.scanner, cmd = a.scanner.update(msg)
	case navigation.Results:
		a.results, cmd = a.results.update(msg)
	case navigation.Calendar:
		a.calendar, cmd = a.calendar.update(msg)
	case navigation.Settings:
		a.settings, cmd = a.settings.update(msg)
	case navigation.AccountSecurity:
		a.account, cmd = a.account.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.view {
	case navigation.Dashboard:
		return a.dashboard.capturing()
	case navigation.Scanner:
		return a.scanner.capturing()
	case navigation.Results:
		return a.results.capturing()
	case navigation.Settings:
		return a.settings.capturing()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.view {
	case navigation.Dashboard:
		return a.dashboard.refresh()
	case navigation.Scanner:
		return a.scanner.refresh()
	case navigation.Results:
		return a.results.refresh()
	case navigation.Calendar:
		return a.calendar.refresh()
	case navigation.Settings:
		return a.settings.refresh()
	case navigation.AccountSecurity:
		return a.account.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case !a.signedIn:
		content = a.login.view()
	case a.view == navigation.Scanner:
		content = a.scanner.view()
	case a.view == navigation.Results:
		content = a.results.view()
	case a.view == navigation.Calendar:
		content = a.calendar.view()
	case a.view == navigation.Settings:
		content = a.settings.view()
	case a.view == navigation.AccountSecurity:
		content = a.account.view()
	default:
		content = a.dashboard.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var row []string
	for _, t := range tabs {
		active := t.view == a.view ||
			(t.view == navigation.Settings && a.view == navigation.AccountSecurity)
		if active && a.signedIn {
			row = append(row, activeTabStyle.Render(t.name))
		} else {
			row = append(row, inactiveTabStyle.Render(t.name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, row...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("scanboard")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		right = style.Render(" " + a.status)
	}

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
