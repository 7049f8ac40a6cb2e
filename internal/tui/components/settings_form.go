package components

import (
	"strconv"
	"strings"

	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field order in the form.
const (
	FieldName = iota
	FieldInterval
	FieldLightPWM
	FieldLightDur
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Device name",
	"Interval (s)",
	"Light PWM",
	"Warmup (ms)",
}

// SettingsForm edits the device settings. It is pre-filled from the last
// status and produces a validated device.Settings.
type SettingsForm struct {
	inputs []textinput.Model
	cursor int
}

func NewSettingsForm() *SettingsForm {
	sf := &SettingsForm{inputs: make([]textinput.Model, fieldCount)}
	placeholders := [fieldCount]string{"unchanged", "300", "1000-2000", "1000"}
	for i := range sf.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.Width = 24
		input.Prompt = ""
		sf.inputs[i] = input
	}
	sf.inputs[FieldName].CharLimit = device.MaxNameLen
	for _, i := range []int{FieldInterval, FieldLightPWM, FieldLightDur} {
		sf.inputs[i].CharLimit = 7
	}
	return sf
}

// Fill pre-fills the form from a status snapshot.
func (sf *SettingsForm) Fill(s *device.Status) {
	if s == nil {
		return
	}
	sf.inputs[FieldName].SetValue(s.Name)
	sf.inputs[FieldInterval].SetValue(strconv.Itoa(s.Interval))
	sf.inputs[FieldLightPWM].SetValue(strconv.Itoa(s.LightPWM))
	sf.inputs[FieldLightDur].SetValue(strconv.Itoa(s.LightDur))
}

// SetValue sets one field.
func (sf *SettingsForm) SetValue(field int, v string) {
	sf.inputs[field].SetValue(v)
}

// Focus puts the cursor on the first field.
func (sf *SettingsForm) Focus() tea.Cmd {
	sf.cursor = 0
	return sf.focusCursor()
}

// Blur leaves the form.
func (sf *SettingsForm) Blur() {
	for i := range sf.inputs {
		sf.inputs[i].Blur()
	}
}

func (sf *SettingsForm) focusCursor() tea.Cmd {
	var cmd tea.Cmd
	for i := range sf.inputs {
		if i == sf.cursor {
			cmd = sf.inputs[i].Focus()
		} else {
			sf.inputs[i].Blur()
		}
	}
	return cmd
}

// Update handles field cycling and typing. Saving and cancelling are left
// to the caller.
func (sf *SettingsForm) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			sf.cursor = (sf.cursor + 1) % len(sf.inputs)
			return sf.focusCursor()
		case "shift+tab", "up":
			sf.cursor = (sf.cursor - 1 + len(sf.inputs)) % len(sf.inputs)
			return sf.focusCursor()
		}
	}

	var cmd tea.Cmd
	sf.inputs[sf.cursor], cmd = sf.inputs[sf.cursor].Update(msg)
	return cmd
}

// Settings parses and validates the form.
func (sf *SettingsForm) Settings() (device.Settings, error) {
	var s device.Settings
	var err error
	s.Name = strings.TrimSpace(sf.inputs[FieldName].Value())
	if s.Interval, err = sf.number(FieldInterval, "interval"); err != nil {
		return s, err
	}
	if s.LightPWM, err = sf.number(FieldLightPWM, "lightPwm"); err != nil {
		return s, err
	}
	if s.LightDur, err = sf.number(FieldLightDur, "lightDur"); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func (sf *SettingsForm) number(field int, name string) (int, error) {
	v := strings.TrimSpace(sf.inputs[field].Value())
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewSettingError(name, "%q is not a whole number", v)
	}
	return n, nil
}

func (sf *SettingsForm) View() string {
	var s strings.Builder
	s.WriteString(styles.Theme.Title.Render("Settings") + "\n")
	for i, input := range sf.inputs {
		marker := "  "
		if i == sf.cursor {
			marker = "> "
		}
		s.WriteString(marker + styles.Theme.Label.Render(fieldLabels[i]) + " " + input.View() + "\n")
	}
	s.WriteString(styles.Theme.Help.Render("tab next field • enter save • esc cancel"))
	return styles.Theme.Card.Render(s.String())
}
