package tui

import (
	"context"
	"fmt"

	"kilocam/internal/browser"
	"kilocam/internal/config"
	"kilocam/internal/confirm"
	"kilocam/internal/control"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/format"
	"kilocam/internal/tui/common"
	"kilocam/internal/tui/components"
	"kilocam/internal/tui/messages"
	"kilocam/internal/tui/styles"
	"kilocam/internal/tui/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type Model struct {
	cfg    *config.Config
	client *device.Client
	ctrl   *control.Controller
	br     *browser.Browser

	ctx  context.Context
	stop context.CancelFunc

	// Core state
	mode     common.Mode
	status   *device.Status
	files    *components.FileList
	form     *components.SettingsForm
	bar      *components.StatusBar
	help     help.Model
	preview  viewport.Model
	showHelp bool
	width    int
	height   int

	// Confirm mode state
	prompt string
	onYes  func() tea.Cmd

	download *downloadState
	changes  <-chan *config.Config
}

type downloadState struct {
	dir       string
	cancel    context.CancelFunc
	progress  <-chan messages.DownloadProgressMsg
	cancelled bool
}

// New builds the console for the device configured in cfg.
func New(cfg *config.Config) *Model {
	ctx, stop := context.WithCancel(context.Background())
	m := &Model{
		cfg:     cfg,
		ctx:     ctx,
		stop:    stop,
		mode:    common.Normal,
		files:   components.NewFileList(),
		form:    components.NewSettingsForm(),
		bar:     components.NewStatusBar(),
		help:    help.New(),
		preview: viewport.New(80, 20),
	}
	styles.Apply(cfg.Theme)
	m.connect()
	return m
}

// connect (re)creates the device-facing parts from the current config.
func (m *Model) connect() {
	m.client = device.NewClient(m.cfg.Device.URL, device.WithTimeout(m.cfg.Timeout()))
	// the console asks for confirmation itself before dispatching
	m.ctrl = control.New(m.client, confirm.Yes)
	m.br = browser.New(m.client)
	m.status = nil
	m.files.SetEntries(browser.Root, nil)
}

// WatchConfig makes the model apply every configuration delivered on ch.
func (m *Model) WatchConfig(ch <-chan *config.Config) {
	m.changes = ch
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.navigate(browser.Root), m.listenConfig())
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case messages.StatusMsg:
		m.bar.End()
		if msg.Err != nil {
			// prior values stay on screen
			m.bar.SetText("Status refresh failed: "+msg.Err.Error(), components.Failure)
			return m, nil
		}
		m.status = msg.Status
		m.bar.SetText("Status updated", components.Info)
		return m, nil

	case messages.ListingMsg:
		m.bar.End()
		if msg.Browser != m.br {
			return m, nil
		}
		err := m.br.Apply(msg.Listing)
		switch {
		case errors.IsStale(err):
			return m, nil
		case err != nil:
			m.bar.SetText(err.Error(), components.Failure)
			return m, nil
		}
		m.files.SetEntries(m.br.Path(), m.br.Entries())
		m.bar.SetText(format.Summary(m.br.Entries()), components.Info)
		return m, nil

	case messages.ActionDoneMsg:
		m.bar.End()
		if msg.Err != nil {
			m.bar.SetText(fmt.Sprintf("%s failed: %v", msg.Action, msg.Err), components.Failure)
			return m, nil
		}
		m.bar.SetText(msg.Text, components.Success)
		return m, nil

	case messages.SettingsSavedMsg:
		m.bar.End()
		if msg.Err != nil {
			m.bar.SetText("Save failed: "+msg.Err.Error(), components.Failure)
			return m, nil
		}
		m.mode = common.Normal
		m.form.Blur()
		m.bar.SetText(msg.Text, components.Success)
		return m, nil

	case messages.PreviewMsg:
		m.bar.End()
		if msg.Err != nil {
			m.bar.SetText("Capture failed: "+msg.Err.Error(), components.Failure)
			return m, nil
		}
		m.showPreview(msg)
		return m, nil

	case messages.DeleteDoneMsg:
		m.bar.End()
		m.handleDeleteDone(msg)
		return m, nil

	case progressMsg:
		if m.download != nil && m.download.progress == msg.ch && !m.download.cancelled {
			p := msg.DownloadProgressMsg
			m.bar.SetText(fmt.Sprintf("Downloading %d/%d: %s", p.Index+1, p.Total, p.Path), components.Info)
		}
		return m, listen(msg.ch)

	case messages.DownloadDoneMsg:
		m.bar.End()
		m.download = nil
		m.handleDownloadDone(msg)
		return m, nil

	case messages.ConfigUpdateMsg:
		return m, tea.Batch(m.applyConfig(msg.Config), m.listenConfig())
	}

	return m, m.bar.Update(msg)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case common.Confirm:
		return m.handleConfirmKeys(msg)
	case common.Settings:
		return m.handleSettingsKeys(msg)
	case common.Preview:
		return m.handlePreviewKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.cancelDownload()
		m.stop()
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		m.files.MoveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.files.MoveCursor(1)
	case key.Matches(msg, keys.Top):
		m.files.Home()
	case key.Matches(msg, keys.Bottom):
		m.files.End()
	case key.Matches(msg, keys.Open):
		e, ok := m.files.Current()
		if !ok {
			return m, nil
		}
		if !e.IsDir {
			m.bar.SetText(fmt.Sprintf("%s (%s)", browser.Resolve(m.br.Path(), e.Name), format.Size(e.Size)), components.Info)
			return m, nil
		}
		return m, m.navigate(browser.Resolve(m.br.Path(), e.Name))
	case key.Matches(msg, keys.Back):
		if !browser.CanGoUp(m.br.Path()) {
			return m, nil
		}
		return m, m.navigate(browser.Parent(m.br.Path()))
	case key.Matches(msg, keys.Refresh):
		return m, m.navigate(m.br.Path())
	case key.Matches(msg, keys.Status):
		return m, m.fetchStatus()
	case key.Matches(msg, keys.Settings):
		m.form.Fill(m.status)
		m.mode = common.Settings
		return m, m.form.Focus()
	case key.Matches(msg, keys.SyncTime):
		return m, m.syncTime()
	case key.Matches(msg, keys.Start):
		return m, m.ask(control.StartPrompt, m.startCollection)
	case key.Matches(msg, keys.Shutdown):
		return m, m.ask(control.ShutdownPrompt, m.shutdown)
	case key.Matches(msg, keys.Light):
		return m, m.toggleLight()
	case key.Matches(msg, keys.Capture):
		return m, m.takePhoto()
	case key.Matches(msg, keys.Delete):
		e, ok := m.files.Current()
		if !ok {
			return m, nil
		}
		target := m.br.TargetOf(e)
		return m, m.ask(target.Prompt(), func() tea.Cmd { return m.delete(target) })
	case key.Matches(msg, keys.Download):
		if m.download != nil {
			m.bar.SetText("A download is already running (esc to cancel)", components.Info)
			return m, nil
		}
		dir := m.br.Path()
		return m, m.ask(browser.Prompt(dir), func() tea.Cmd { return m.startDownload(dir) })
	case key.Matches(msg, keys.Cancel):
		if m.download != nil && !m.download.cancelled {
			m.cancelDownload()
			m.bar.SetText("Download cancelled; files already started will finish", components.Info)
		}
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		run := m.onYes
		m.mode, m.prompt, m.onYes = common.Normal, "", nil
		return m, run()
	case key.Matches(msg, keys.No):
		m.mode, m.prompt, m.onYes = common.Normal, "", nil
		m.bar.SetText("Cancelled", components.Info)
	}
	return m, nil
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.mode = common.Normal
		m.form.Blur()
		return m, nil
	case key.Matches(msg, keys.Save):
		s, err := m.form.Settings()
		if err != nil {
			m.bar.SetText(err.Error(), components.Failure)
			return m, nil
		}
		return m, m.saveSettings(s)
	}
	return m, m.form.Update(msg)
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.mode = common.Normal
		return m, nil
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// ask enters confirm mode; run is called only after "y".
func (m *Model) ask(prompt string, run func() tea.Cmd) tea.Cmd {
	if m.cfg.Confirm.AssumeYes {
		return run()
	}
	m.mode, m.prompt, m.onYes = common.Confirm, prompt, run
	return nil
}

func (m *Model) handleDeleteDone(msg messages.DeleteDoneMsg) {
	switch {
	case msg.Err == nil:
		m.files.SetEntries(m.br.Path(), m.br.Entries())
		m.bar.SetText("Deleted "+msg.Target.Path, components.Success)
	case errors.IsPartialDelete(msg.Err):
		m.bar.SetText(fmt.Sprintf("Delete of %s incomplete, some contents were removed: %v", msg.Target.Path, msg.Err), components.Failure)
	default:
		m.bar.SetText(fmt.Sprintf("Delete failed: %v", msg.Err), components.Failure)
	}
}

func (m *Model) handleDownloadDone(msg messages.DownloadDoneMsg) {
	switch {
	case errors.IsNothingToDownload(msg.Err):
		m.bar.SetText("No files to download in "+msg.Dir, components.Info)
	case msg.Err != nil:
		m.bar.SetText(fmt.Sprintf("Download of %s: %v", msg.Dir, msg.Err), components.Failure)
	case len(msg.Results) < msg.Total:
		m.bar.SetText(fmt.Sprintf("Download of %s stopped after %d of %d files", msg.Dir, len(msg.Results), msg.Total), components.Info)
	default:
		m.bar.SetText(fmt.Sprintf("Downloaded %d files to %s", len(msg.Results), m.cfg.Downloads.Dir), components.Success)
	}
}

func (m *Model) showPreview(msg messages.PreviewMsg) {
	p := msg.Preview
	content := p.Summary(format.Size)
	if msg.Saved != "" {
		content += "\nsaved to " + msg.Saved
	}
	if thumb, err := p.Thumbnail(m.cfg.Preview.Width); err == nil {
		content += "\n\n" + thumb
	}
	m.preview.SetContent(content)
	m.preview.GotoTop()
	m.mode = common.Preview
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.files.Height = max(height-16, 5)
	m.preview.Width = width
	m.preview.Height = max(height-10, 5)
}

// applyConfig switches to a reloaded configuration. A new device address
// resets the console and reloads everything.
func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	reconnect := cfg.Device.URL != m.cfg.Device.URL || cfg.Device.Timeout != m.cfg.Device.Timeout
	m.cfg = cfg
	styles.Apply(cfg.Theme)
	m.bar.SetText("Configuration reloaded", components.Info)
	if !reconnect {
		return nil
	}
	m.cancelDownload()
	m.connect()
	return tea.Batch(m.fetchStatus(), m.navigate(browser.Root))
}

func (m *Model) cancelDownload() {
	if m.download != nil && !m.download.cancelled {
		m.download.cancel()
		m.download.cancelled = true
	}
}

// Getters
func (m *Model) Mode() common.Mode { return m.mode }

func (m *Model) DeviceStatus() *device.Status { return m.status }

func (m *Model) DeviceURL() string { return m.client.BaseURL() }

func (m *Model) Path() string { return m.br.Path() }

func (m *Model) Entries() []device.Entry { return m.files.Entries() }

func (m *Model) Cursor() int { return m.files.Cursor() }

func (m *Model) Prompt() string { return m.prompt }

func (m *Model) ShowHelp() bool { return m.showHelp }

func (m *Model) StatusText() string { return m.bar.Text() }

func (m *Model) Downloading() bool { return m.download != nil }

func (m *Model) FileListView() string { return m.files.View() }

func (m *Model) SettingsView() string { return m.form.View() }

func (m *Model) PreviewView() string { return m.preview.View() }

func (m *Model) StatusBarView() string { return m.bar.View() }

func (m *Model) HelpView() string { return m.help.View(keys) }

// Settings returns the form's field values as parsed settings.
func (m *Model) Settings() (device.Settings, error) { return m.form.Settings() }
