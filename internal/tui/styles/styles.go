package styles

import (
	"kilocam/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles defines the core UI styles
type Styles struct {
	App       lipgloss.Style
	Title     lipgloss.Style
	Card      lipgloss.Style
	Label     lipgloss.Style
	Directory lipgloss.Style
	File      lipgloss.Style
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
}

// Theme is the active style set. It is replaced when the config theme
// changes.
var Theme = FromTheme(config.GetTheme("default"))

// FromTheme builds the style set for a palette.
func FromTheme(t config.Theme) Styles {
	primary := lipgloss.Color(t.Primary)
	border := lipgloss.Color(t.Border)
	muted := lipgloss.Color(t.Muted)

	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(muted).
			Width(13),
		Directory: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		File: lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().
			Reverse(true),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Help: lipgloss.NewStyle().
			Foreground(muted),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(t.Warning)).
			Padding(0, 1),
	}
}

// Apply makes t the active theme.
func Apply(t config.Theme) {
	Theme = FromTheme(t)
}
