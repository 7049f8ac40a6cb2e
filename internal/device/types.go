package device

import (
	"kilocam/internal/errors"
)

// Light PWM bounds accepted by the device's light driver.
const (
	MinLightPWM = 1000
	MaxLightPWM = 2000
	// MaxNameLen is the SSID length limit the device name is used as.
	MaxNameLen = 32
)

// Status is the snapshot returned by /status.
type Status struct {
	Name     string `json:"name"`
	Storage  string `json:"storage"`
	Time     string `json:"time"`
	Interval int    `json:"interval"`
	LightPWM int    `json:"lightPwm"`
	LightDur int    `json:"lightDur"`
}

// Settings returns the editable part of the snapshot.
func (s Status) Settings() Settings {
	return Settings{
		Name:     s.Name,
		Interval: s.Interval,
		LightPWM: s.LightPWM,
		LightDur: s.LightDur,
	}
}

// Settings is one combined /save-config update. Name is optional and is
// only sent when non-empty.
type Settings struct {
	Name     string
	Interval int // seconds between captures
	LightPWM int
	LightDur int // light warmup in ms
}

// Validate checks ranges before anything is sent to the device.
func (s Settings) Validate() error {
	if s.Interval < 1 {
		return errors.NewSettingError("interval", "must be at least 1 second, got %d", s.Interval)
	}
	if s.LightPWM < MinLightPWM || s.LightPWM > MaxLightPWM {
		return errors.NewSettingError("lightPwm", "must be between %d and %d, got %d", MinLightPWM, MaxLightPWM, s.LightPWM)
	}
	if s.LightDur < 0 {
		return errors.NewSettingError("lightDur", "must not be negative, got %d", s.LightDur)
	}
	if len(s.Name) > MaxNameLen {
		return errors.NewSettingError("name", "must be at most %d bytes, got %d", MaxNameLen, len(s.Name))
	}
	return nil
}

// Entry is one row of a /list response.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size"`
}

// Action is a /control command.
type Action string

const (
	ActionStart    Action = "start"
	ActionShutdown Action = "shutdown"
	ActionLight    Action = "light"
)

// Valid reports whether a is one of the commands the device understands.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionShutdown, ActionLight:
		return true
	}
	return false
}

// Capture is the payload returned by /capture.
type Capture struct {
	Data        []byte
	ContentType string
}
