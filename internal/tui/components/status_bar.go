package components

import (
	"kilocam/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tone selects the status bar color.
type Tone int

const (
	Info Tone = iota
	Success
	Failure
)

type StatusBar struct {
	text    string
	tone    Tone
	spinner spinner.Model
	busy    int
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return &StatusBar{
		spinner: s,
	}
}

// Begin marks one more request in flight and returns the spinner tick to
// schedule when the bar was idle.
func (s *StatusBar) Begin(text string) tea.Cmd {
	s.text, s.tone = text, Info
	s.busy++
	if s.busy == 1 {
		return s.spinner.Tick
	}
	return nil
}

// End marks one request finished.
func (s *StatusBar) End() {
	if s.busy > 0 {
		s.busy--
	}
}

// Loading reports whether any request is in flight.
func (s *StatusBar) Loading() bool {
	return s.busy > 0
}

func (s *StatusBar) SetText(text string, tone Tone) {
	s.text, s.tone = text, tone
}

func (s *StatusBar) Text() string {
	return s.text
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.Loading() {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.Loading() {
		return ""
	}

	var style lipgloss.Style
	switch s.tone {
	case Success:
		style = styles.Theme.Success
	case Failure:
		style = styles.Theme.Error
	default:
		style = styles.Theme.Help
	}

	if s.Loading() {
		return s.spinner.View() + " " + style.Render(s.text)
	}
	return style.Render(s.text)
}
