// Package format renders device data as text shared by the CLI, TUI and GUI.
package format

import (
	"fmt"
	"strings"

	"kilocam/internal/device"

	"github.com/dustin/go-humanize"
)

// Size renders a byte count, e.g. "1.2 MB".
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// EntryName is the entry name with a trailing "/" for directories.
func EntryName(e device.Entry) string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}

// EntrySize is the size column: blank for directories.
func EntrySize(e device.Entry) string {
	if e.IsDir {
		return ""
	}
	return Size(e.Size)
}

// EntryLabel is a single-line label such as "IMG_0001.jpg (23 kB)" or
// "2024-01-01/".
func EntryLabel(e device.Entry) string {
	if e.IsDir {
		return EntryName(e)
	}
	return fmt.Sprintf("%s (%s)", e.Name, Size(e.Size))
}

// Totals counts directories and files and sums file sizes.
func Totals(entries []device.Entry) (dirs, files int, bytes int64) {
	for _, e := range entries {
		if e.IsDir {
			dirs++
			continue
		}
		files++
		bytes += e.Size
	}
	return dirs, files, bytes
}

// Summary is a footer such as "2 folders, 3 files, 1.5 MB".
func Summary(entries []device.Entry) string {
	dirs, files, bytes := Totals(entries)
	return fmt.Sprintf("%s, %s, %s", plural(dirs, "folder"), plural(files, "file"), Size(bytes))
}

// StatusLines is the status card as label/value rows.
func StatusLines(s *device.Status) [][2]string {
	return [][2]string{
		{"Name", orDash(s.Name)},
		{"Storage", orDash(s.Storage)},
		{"Device time", orDash(s.Time)},
		{"Interval", fmt.Sprintf("%d s", s.Interval)},
		{"Light PWM", fmt.Sprintf("%d", s.LightPWM)},
		{"Light warmup", fmt.Sprintf("%d ms", s.LightDur)},
	}
}

// StatusCard renders the status card as aligned plain text.
func StatusCard(s *device.Status) string {
	var sb strings.Builder
	for _, row := range StatusLines(s) {
		fmt.Fprintf(&sb, "%-13s %s\n", row[0]+":", row[1])
	}
	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
