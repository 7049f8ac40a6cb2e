package components

import (
	"strings"

	"kilocam/internal/device"
	"kilocam/internal/format"
	"kilocam/internal/tui/styles"
)

// RenderStatusCard draws the device status. A nil status means none has
// been fetched yet.
func RenderStatusCard(url string, s *device.Status) string {
	var b strings.Builder
	b.WriteString(styles.Theme.Title.Render("KiloCam "+url) + "\n")
	if s == nil {
		b.WriteString(styles.Theme.Muted.Render("status not loaded (s to refresh)"))
		return styles.Theme.Card.Render(b.String())
	}

	rows := format.StatusLines(s)
	for i, row := range rows {
		b.WriteString(styles.Theme.Label.Render(row[0]+":") + " " + row[1])
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return styles.Theme.Card.Render(b.String())
}
