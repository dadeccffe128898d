package dashboard

import "github.com/charmbracelet/lipgloss"

const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

type styles struct {
	app, title, section, selected, option, help, ok, warn, err, encrypted, log lipgloss.Style
}

func newStyles() styles {
	return styles{
		app: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)).
			Foreground(lipgloss.Color(draculaForeground)),
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		section: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)).
			Bold(true),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)).
			Bold(true),
		option: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)),
		err: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)),
		encrypted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPurple)),
		log: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)),
	}
}
