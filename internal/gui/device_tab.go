//go:build !nogui

package gui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"kilocam/internal/control"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/format"
	"kilocam/internal/preview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/validation"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// createDeviceTab creates the status, settings, actions and photo panel.
func (a *App) createDeviceTab() fyne.CanvasObject {
	a.statusLabel = widget.NewLabel("status not loaded")
	a.statusLabel.TextStyle.Monospace = true
	refresh := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), a.refreshStatus)
	statusCard := widget.NewCard("Status", a.client.BaseURL(), container.NewVBox(a.statusLabel, refresh))

	whole := validation.NewRegexp(`^\s*-?\d+\s*$`, "must be a whole number")
	a.nameEntry = widget.NewEntry()
	a.nameEntry.SetPlaceHolder("unchanged")
	a.intervalEntry = widget.NewEntry()
	a.intervalEntry.Validator = whole
	a.pwmEntry = widget.NewEntry()
	a.pwmEntry.Validator = whole
	a.durEntry = widget.NewEntry()
	a.durEntry.Validator = whole

	form := widget.NewForm(
		widget.NewFormItem("Name", a.nameEntry),
		widget.NewFormItem("Interval (s)", a.intervalEntry),
		widget.NewFormItem("Light PWM", a.pwmEntry),
		widget.NewFormItem("Light warmup (ms)", a.durEntry),
	)
	form.SubmitText = "Save"
	form.OnSubmit = a.saveSettings
	settingsCard := widget.NewCard("Settings", "", form)

	actions := container.NewGridWithColumns(3,
		widget.NewButtonWithIcon("Sync time", theme.HistoryIcon(), a.syncTime),
		widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), a.startCollection),
		widget.NewButtonWithIcon("Shutdown", theme.CancelIcon(), a.shutdown),
		widget.NewButtonWithIcon("Light", theme.VisibilityIcon(), a.toggleLight),
		widget.NewButtonWithIcon("Take photo", theme.MediaPhotoIcon(), a.takePhoto),
	)
	actionsCard := widget.NewCard("Actions", "", actions)

	a.photo = canvas.NewImageFromImage(nil)
	a.photo.FillMode = canvas.ImageFillContain
	a.photo.SetMinSize(fyne.NewSize(320, 240))
	a.photoInfo = widget.NewLabel("no photo yet")
	photoCard := widget.NewCard("Photo", "", container.NewBorder(nil, a.photoInfo, nil, nil, a.photo))

	left := container.NewVBox(statusCard, settingsCard, actionsCard)
	return container.NewHSplit(container.NewVScroll(left), photoCard)
}

func (a *App) refreshStatus() {
	a.async(func() {
		s, err := a.ctrl.Status(a.ctx)
		if err != nil {
			a.ShowError("Failed to load status", err)
			return
		}
		a.showStatus(s)
	})
}

// showStatus renders s and refills the settings form from it.
func (a *App) showStatus(s *device.Status) {
	a.statusLabel.SetText(format.StatusCard(s))
	a.nameEntry.SetText(s.Name)
	a.intervalEntry.SetText(strconv.Itoa(s.Interval))
	a.pwmEntry.SetText(strconv.Itoa(s.LightPWM))
	a.durEntry.SetText(strconv.Itoa(s.LightDur))
	a.setMessage("Status loaded from %s", a.client.BaseURL())
}

// formSettings parses and validates the settings form.
func (a *App) formSettings() (device.Settings, error) {
	var s device.Settings
	var err error
	s.Name = strings.TrimSpace(a.nameEntry.Text)
	if s.Interval, err = wholeNumber(a.intervalEntry, "interval"); err != nil {
		return s, err
	}
	if s.LightPWM, err = wholeNumber(a.pwmEntry, "lightPwm"); err != nil {
		return s, err
	}
	if s.LightDur, err = wholeNumber(a.durEntry, "lightDur"); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func wholeNumber(e *widget.Entry, field string) (int, error) {
	v := strings.TrimSpace(e.Text)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewSettingError(field, "%q is not a whole number", v)
	}
	return n, nil
}

func (a *App) saveSettings() {
	s, err := a.formSettings()
	if err != nil {
		a.ShowError("Settings not saved", err)
		return
	}
	a.async(func() {
		text, err := a.ctrl.SaveSettings(a.ctx, s)
		if err != nil {
			a.ShowError("Failed to save settings", err)
			return
		}
		a.setMessage("Settings saved: %s", text)
	})
}

func (a *App) syncTime() {
	a.async(func() {
		text, err := a.ctrl.SyncTime(a.ctx, time.Now())
		if err != nil {
			a.ShowError("Time sync failed", err)
			return
		}
		a.setMessage("Time sync: %s", text)
	})
}

func (a *App) startCollection() {
	a.confirmAction("Start", control.StartPrompt, func() {
		a.runAction("Start", a.ctrl.StartCollection)
	})
}

func (a *App) shutdown() {
	a.confirmAction("Shutdown", control.ShutdownPrompt, func() {
		a.runAction("Shutdown", a.ctrl.Shutdown)
	})
}

func (a *App) toggleLight() {
	a.runAction("Light", a.ctrl.ToggleLight)
}

func (a *App) runAction(name string, fn func(context.Context) (string, error)) {
	a.async(func() {
		text, err := fn(a.ctx)
		if err != nil {
			a.ShowError(name+" failed", err)
			return
		}
		a.ShowInfo(name + ": " + text)
	})
}

func (a *App) takePhoto() {
	a.async(func() {
		p, err := a.ctrl.TakePhoto(a.ctx)
		if err != nil {
			a.ShowError("Capture failed", err)
			return
		}
		saved, err := p.Save(a.cfg.Preview.Dir)
		if err != nil {
			a.ShowError("Failed to save photo", err)
			return
		}
		a.showPhoto(p, saved)
	})
}

func (a *App) showPhoto(p *preview.Preview, saved string) {
	info := p.Summary(format.Size) + ", saved to " + saved
	if img, err := p.Image(); err == nil {
		a.photo.Image = img
	} else {
		a.photo.Image = nil
		info = "cannot display: " + info
	}
	a.photo.Refresh()
	a.photoInfo.SetText(info)
	a.setMessage("Photo captured")
}
