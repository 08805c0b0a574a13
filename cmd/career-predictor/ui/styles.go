package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#4F46E5")
	Accent      = lipgloss.Color("#22C55E")
	Muted       = lipgloss.Color("#6B7280")
	Destructive = lipgloss.Color("#E53935")
	Info        = lipgloss.Color("#2196F3")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	labelStyle        = lipgloss.NewStyle().Width(22)
	focusedLabelStyle = labelStyle.Foreground(Primary).Bold(true)
	fieldErrorStyle   = lipgloss.NewStyle().Foreground(Destructive).PaddingLeft(22)
	generalErrorStyle = lipgloss.NewStyle().Foreground(Destructive).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Primary).
			Padding(0, 3).
			MarginTop(1)
	busyButtonStyle = buttonStyle.Background(Muted)

	progressLabelStyle = lipgloss.NewStyle().Foreground(Muted)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(1, 2).
			MarginTop(1)
	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	cardLabelStyle = lipgloss.NewStyle().Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(Muted).MarginTop(1)
)

func toastStyle(level string) lipgloss.Style {
	color := Info
	switch level {
	case "success":
		color = Accent
	case "error":
		color = Destructive
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(color).
		Foreground(color).
		PaddingLeft(1)
}
