package components

import (
	"fmt"
	"strings"

	"kilocam/internal/browser"
	"kilocam/internal/device"
	"kilocam/internal/format"
	"kilocam/internal/tui/styles"
)

// FileList renders one directory of the device, directories first, with a
// cursor and a scrolling window of Height rows.
type FileList struct {
	entries    []device.Entry
	cursor     int
	offset     int
	currentDir string
	Height     int
}

func NewFileList() *FileList {
	return &FileList{currentDir: browser.Root, Height: 15}
}

// SetEntries replaces the rows. The cursor is kept on the same name when it
// is still listed, otherwise it is clamped.
func (fl *FileList) SetEntries(dir string, entries []device.Entry) {
	var keep string
	if fl.currentDir == dir {
		if e, ok := fl.Current(); ok {
			keep = e.Name
		}
	} else {
		fl.cursor, fl.offset = 0, 0
	}
	fl.currentDir = dir
	fl.entries = entries

	if keep != "" {
		for i, e := range entries {
			if e.Name == keep {
				fl.cursor = i
				break
			}
		}
	}
	fl.clamp()
}

func (fl *FileList) CurrentDir() string {
	return fl.currentDir
}

func (fl *FileList) Entries() []device.Entry {
	return fl.entries
}

func (fl *FileList) Cursor() int {
	return fl.cursor
}

// Current returns the entry under the cursor.
func (fl *FileList) Current() (device.Entry, bool) {
	if fl.cursor < 0 || fl.cursor >= len(fl.entries) {
		return device.Entry{}, false
	}
	return fl.entries[fl.cursor], true
}

func (fl *FileList) MoveCursor(delta int) {
	fl.cursor += delta
	fl.clamp()
}

func (fl *FileList) Home() {
	fl.cursor = 0
	fl.clamp()
}

func (fl *FileList) End() {
	fl.cursor = len(fl.entries) - 1
	fl.clamp()
}

func (fl *FileList) clamp() {
	if fl.cursor >= len(fl.entries) {
		fl.cursor = len(fl.entries) - 1
	}
	if fl.cursor < 0 {
		fl.cursor = 0
	}
	if fl.Height <= 0 {
		return
	}
	if fl.cursor < fl.offset {
		fl.offset = fl.cursor
	}
	if fl.cursor >= fl.offset+fl.Height {
		fl.offset = fl.cursor - fl.Height + 1
	}
}

func (fl *FileList) View() string {
	var s strings.Builder

	s.WriteString(styles.Theme.Title.Render("Files: "+fl.currentDir) + "\n")
	if browser.CanGoUp(fl.currentDir) {
		s.WriteString(styles.Theme.Muted.Render("  ../  (backspace to go up)") + "\n")
	}

	if len(fl.entries) == 0 {
		s.WriteString(styles.Theme.Muted.Render("  (empty)") + "\n")
		return s.String()
	}

	end := len(fl.entries)
	if fl.Height > 0 && fl.offset+fl.Height < end {
		end = fl.offset + fl.Height
	}
	for i := fl.offset; i < end; i++ {
		e := fl.entries[i]
		cursor := " "
		if i == fl.cursor {
			cursor = ">"
		}

		padded := fmt.Sprintf("%-40s", format.EntryName(e))
		name := styles.Theme.File.Render(padded)
		if e.IsDir {
			name = styles.Theme.Directory.Render(padded)
		}
		line := fmt.Sprintf("%s %s %s", cursor, name, styles.Theme.Muted.Render(fmt.Sprintf("%9s", format.EntrySize(e))))
		if i == fl.cursor {
			line = styles.Theme.Selected.Render(line)
		}
		s.WriteString(line + "\n")
	}

	s.WriteString(styles.Theme.Muted.Render(format.Summary(fl.entries)) + "\n")
	return s.String()
}
