package common

import "kilocam/internal/device"

// Mode is what the keyboard currently drives.
type Mode int

const (
	Normal   Mode = iota // browsing
	Settings             // editing the settings form
	Confirm              // answering a yes/no prompt
	Preview              // looking at a captured photo
)

func (m Mode) String() string {
	switch m {
	case Settings:
		return "settings"
	case Confirm:
		return "confirm"
	case Preview:
		return "preview"
	}
	return "browse"
}

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Mode() Mode
	DeviceStatus() *device.Status
	DeviceURL() string
	Prompt() string
	ShowHelp() bool

	// Rendered sub-components owned by the model.
	FileListView() string
	SettingsView() string
	PreviewView() string
	StatusBarView() string
	HelpView() string
}
