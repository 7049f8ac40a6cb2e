//go:build !nogui

// Package gui is the desktop control panel for a KiloCam, built on fyne.
package gui

import (
	"context"
	"fmt"
	"sync"

	"kilocam/internal/browser"
	"kilocam/internal/confirm"
	"kilocam/internal/config"
	"kilocam/internal/control"
	"kilocam/internal/device"
	"kilocam/internal/log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	ctx        context.Context

	client *device.Client
	ctrl   *control.Controller
	br     *browser.Browser

	// device tab
	statusLabel   *widget.Label
	nameEntry     *widget.Entry
	intervalEntry *widget.Entry
	pwmEntry      *widget.Entry
	durEntry      *widget.Entry
	photo         *canvas.Image
	photoInfo     *widget.Label

	// files tab
	pathLabel *widget.Label
	upButton  *widget.Button
	fileList  *widget.List
	summary   *widget.Label
	progress  *widget.ProgressBar

	mu             sync.Mutex
	entries        []device.Entry
	selected       int
	cancelDownload context.CancelFunc

	message *widget.Label

	// async runs device calls off the UI goroutine.
	async func(func())
	// ask shows a yes/no dialog and calls yes when the operator agrees.
	ask func(title, prompt string, yes func())
}

// NewApp creates the GUI application for the device named in cfg.
func NewApp(cfg *config.Config) *App {
	return newApp(app.NewWithID("io.github.kilocam"), cfg)
}

func newApp(fyneApp fyne.App, cfg *config.Config) *App {
	a := &App{
		fyneApp:  fyneApp,
		cfg:      cfg,
		ctx:      context.Background(),
		selected: -1,
		async:    func(f func()) { go f() },
	}
	a.ask = a.showConfirm
	a.connect()
	a.mainWindow = fyneApp.NewWindow("KiloCam")
	a.setupMainWindow()
	return a
}

// connect builds the device client and the controller and browser on top
// of it. Dialogs confirm before the controller is called, so it never asks.
func (a *App) connect() {
	a.client = device.NewClient(a.cfg.Device.URL, device.WithTimeout(a.cfg.Timeout()))
	a.ctrl = control.New(a.client, confirm.Yes)
	a.br = browser.New(a.client)
}

// watchConfig applies every configuration the watcher accepts.
func (a *App) watchConfig(changes <-chan *config.Config) {
	for cfg := range changes {
		a.applyConfig(cfg)
	}
}

// applyConfig switches to a reloaded configuration, reconnecting when the
// device address or timeout changed.
func (a *App) applyConfig(cfg *config.Config) {
	reconnect := cfg.Device.URL != a.cfg.Device.URL || cfg.Device.Timeout != a.cfg.Device.Timeout
	a.cfg = cfg
	if !reconnect {
		a.setMessage("Configuration reloaded")
		return
	}
	log.Infof("reconnecting to %s", cfg.Device.URL)
	a.stopDownload()
	a.connect()
	a.refreshStatus()
	a.navigate(browser.Root)
}

// Run shows the window, loads the device state and blocks until the window
// is closed.
func (a *App) Run() {
	a.mainWindow.Show()
	a.refreshStatus()
	a.navigate(browser.Root)
	a.fyneApp.Run()
}

func (a *App) setupMainWindow() {
	a.mainWindow.Resize(fyne.NewSize(900, 650))
	a.message = widget.NewLabel("Connected to " + a.client.BaseURL())

	tabs := container.NewAppTabs(
		container.NewTabItem("Device", a.createDeviceTab()),
		container.NewTabItem("Files", a.createFilesTab()),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	a.mainWindow.SetContent(container.NewBorder(nil, a.message, nil, nil, tabs))

	a.mainWindow.Canvas().SetOnTypedKey(func(ke *fyne.KeyEvent) {
		switch ke.Name {
		case fyne.KeyF5:
			a.refreshStatus()
			a.refreshFiles()
		case fyne.KeyBackspace:
			a.goUp()
		}
	})
}

// GetMainWindow returns the main window for testing purposes
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// confirmAction asks before an irreversible action unless the operator
// opted out of prompts.
func (a *App) confirmAction(title, prompt string, yes func()) {
	if a.cfg.Confirm.AssumeYes {
		yes()
		return
	}
	a.ask(title, prompt, yes)
}

func (a *App) showConfirm(title, prompt string, yes func()) {
	dialog.ShowConfirm(title, prompt, func(ok bool) {
		if ok {
			yes()
		}
	}, a.mainWindow)
}

// setMessage updates the line at the bottom of the window.
func (a *App) setMessage(format string, args ...interface{}) {
	a.message.SetText(fmt.Sprintf(format, args...))
}

// ShowError displays an error message
func (a *App) ShowError(message string, err error) {
	log.Errorf("%s: %v", message, err)
	a.setMessage("%s: %v", message, err)
	dialog.ShowError(fmt.Errorf("%s: %w", message, err), a.mainWindow)
}

// ShowInfo displays an information message
func (a *App) ShowInfo(message string) {
	log.Info(message)
	a.setMessage("%s", message)
	dialog.ShowInformation("KiloCam", message, a.mainWindow)
}

// StartGUI opens the control panel and blocks until it is closed. When
// configPath is set, edits to it are applied live.
func StartGUI(cfg *config.Config, configPath string) error {
	a := NewApp(cfg)
	if configPath != "" {
		w, err := config.NewWatcher(configPath)
		if err != nil {
			log.Warnf("config changes will not be picked up: %v", err)
		} else if err := w.Start(); err == nil {
			defer w.Stop()
			go a.watchConfig(w.Changes())
		}
	}
	a.Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}
