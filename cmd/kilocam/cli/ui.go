// Package cli holds the terminal output helpers shared by the kilocam
// commands.
package cli

import (
	"fmt"
	"io"
	"strings"

	"kilocam/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// ColorTheme is the set of styles the CLI prints with.
type ColorTheme struct {
	Name    string
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Header  lipgloss.Style
	Box     lipgloss.Style
	Muted   lipgloss.Style
}

// CurrentTheme is the active theme, starts with default.
var CurrentTheme = NewColorTheme(config.GetTheme("default"))

// NewColorTheme builds CLI styles from a configured palette.
func NewColorTheme(t config.Theme) ColorTheme {
	return ColorTheme{
		Name:    t.Name,
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
	}
}

// SetTheme sets the current theme from the config palette.
func SetTheme(t config.Theme) {
	CurrentTheme = NewColorTheme(t)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Success.Render("✓ "+message))
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Error.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Warning.Render("! "+message))
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Info.Render("ℹ "+message))
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Header.Render(message))
	fmt.Fprintln(w, CurrentTheme.Muted.Render(strings.Repeat("─", lipgloss.Width(message))))
}

// DrawBox draws a rounded box around content using the current theme.
func DrawBox(content string) string {
	return CurrentTheme.Box.Render(content)
}

// Muted renders secondary text.
func Muted(s string) string {
	return CurrentTheme.Muted.Render(s)
}
