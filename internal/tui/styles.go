package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	muted     lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	fg        lipgloss.Color
	subtle    lipgloss.Color
	highlight lipgloss.Color
}

var (
	lightPalette = palette{
		primary:   lipgloss.Color("#4F46E5"),
		secondary: lipgloss.Color("#0D9488"),
		muted:     lipgloss.Color("#6B7280"),
		success:   lipgloss.Color("#16A34A"),
		warning:   lipgloss.Color("#D97706"),
		danger:    lipgloss.Color("#DC2626"),
		fg:        lipgloss.Color("#1F2937"),
		subtle:    lipgloss.Color("#D1D5DB"),
		highlight: lipgloss.Color("#2563EB"),
	}
	darkPalette = palette{
		primary:   lipgloss.Color("#818CF8"),
		secondary: lipgloss.Color("#2DD4BF"),
		muted:     lipgloss.Color("#9CA3AF"),
		success:   lipgloss.Color("#4ADE80"),
		warning:   lipgloss.Color("#FBBF24"),
		danger:    lipgloss.Color("#F87171"),
		fg:        lipgloss.Color("#E5E7EB"),
		subtle:    lipgloss.Color("#374151"),
		highlight: lipgloss.Color("#60A5FA"),
	}
)

// Styles
var (
	colorPrimary lipgloss.Color
	colorSubtle  lipgloss.Color

	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
	todayCellStyle    lipgloss.Style
	selectedCellStyle lipgloss.Style
	outsideCellStyle  lipgloss.Style
)

func init() { applyTheme(false) }

// applyTheme rebuilds every style from the light or dark palette.
func applyTheme(dark bool) {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	colorPrimary = p.primary
	colorSubtle = p.subtle

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.primary).
		Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.subtle).
		Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.fg)
	subtitleStyle = lipgloss.NewStyle().Foreground(p.secondary)
	successStyle = lipgloss.NewStyle().Foreground(p.success)
	warningStyle = lipgloss.NewStyle().Foreground(p.warning)
	errorStyle = lipgloss.NewStyle().Foreground(p.danger)
	mutedStyle = lipgloss.NewStyle().Foreground(p.muted)
	highlightStyle = lipgloss.NewStyle().Foreground(p.highlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(p.fg)

	todayCellStyle = lipgloss.NewStyle().Bold(true).Foreground(p.secondary)
	selectedCellStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(p.primary)
	outsideCellStyle = lipgloss.NewStyle().Foreground(p.subtle)
}
