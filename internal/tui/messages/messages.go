package messages

import (
	"kilocam/internal/browser"
	"kilocam/internal/config"
	"kilocam/internal/device"
	"kilocam/internal/preview"
)

type ErrorMsg struct {
	Err error
}

// StatusMsg carries one status snapshot.
type StatusMsg struct {
	Status *device.Status
	Err    error
}

// ListingMsg carries the answer to one navigation request made through
// Browser.
type ListingMsg struct {
	Browser *browser.Browser
	Listing browser.Listing
}

// ActionDoneMsg reports the device's reply to a one-shot action.
type ActionDoneMsg struct {
	Action string
	Text   string
	Err    error
}

// SettingsSavedMsg reports the outcome of a settings save.
type SettingsSavedMsg struct {
	Settings device.Settings
	Text     string
	Err      error
}

// PreviewMsg carries a captured photo.
type PreviewMsg struct {
	Preview *preview.Preview
	Saved   string
	Err     error
}

// DeleteDoneMsg reports a delete; on success the browser was re-listed.
type DeleteDoneMsg struct {
	Target browser.Target
	Err    error
}

// DownloadProgressMsg is sent as each download trigger fires.
type DownloadProgressMsg struct {
	Index int
	Total int
	Path  string
}

// DownloadDoneMsg ends a bulk download.
type DownloadDoneMsg struct {
	Dir     string
	Total   int
	Results []browser.Result
	Err     error
}

type ConfigUpdateMsg struct {
	Config *config.Config
}
