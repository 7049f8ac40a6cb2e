package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Open     key.Binding
	Back     key.Binding
	Refresh  key.Binding
	Status   key.Binding
	Settings key.Binding
	SyncTime key.Binding
	Start    key.Binding
	Shutdown key.Binding
	Light    key.Binding
	Capture  key.Binding
	Delete   key.Binding
	Download key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding

	Yes  key.Binding
	No   key.Binding
	Save key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Open:     key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("backspace", "h", "left"), key.WithHelp("⌫", "up a dir")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh files")),
	Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "refresh status")),
	Settings: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit settings")),
	SyncTime: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sync time")),
	Start:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "start run")),
	Shutdown: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "shutdown")),
	Light:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "light")),
	Capture:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "photo")),
	Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Download: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "download all")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Yes:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:   key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	Save: key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "save")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Delete, k.Download, k.Capture, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Open, k.Back},
		{k.Refresh, k.Delete, k.Download, k.Cancel},
		{k.Status, k.Settings, k.SyncTime, k.Light, k.Capture},
		{k.Start, k.Shutdown, k.Help, k.Quit},
	}
}
