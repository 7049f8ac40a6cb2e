package views

import (
	"strings"

	"kilocam/internal/tui/common"
	"kilocam/internal/tui/components"
	"kilocam/internal/tui/styles"
)

func RenderMainView(m common.ModelReader) string {
	var sb strings.Builder

	sb.WriteString(components.RenderStatusCard(m.DeviceURL(), m.DeviceStatus()))
	sb.WriteString("\n")

	switch m.Mode() {
	case common.Settings:
		sb.WriteString(m.SettingsView())
	case common.Preview:
		sb.WriteString(styles.Theme.Title.Render("Test photo") + "\n")
		sb.WriteString(m.PreviewView())
		sb.WriteString("\n" + styles.Theme.Help.Render("esc close • ↑/↓ scroll"))
	default:
		sb.WriteString(m.FileListView())
	}

	if m.Mode() == common.Confirm {
		sb.WriteString("\n" + RenderPrompt(m.Prompt()))
	}

	if bar := m.StatusBarView(); bar != "" {
		sb.WriteString("\n" + bar)
	}
	sb.WriteString("\n" + m.HelpView())

	return styles.Theme.App.Render(sb.String())
}

// RenderPrompt draws a yes/no confirmation box.
func RenderPrompt(prompt string) string {
	return styles.Theme.Prompt.Render(
		styles.Theme.Warning.Render(prompt) + "\n" + styles.Theme.Help.Render("[y] yes  [n] no"),
	)
}
