// Package control drives the device's non-file operations: status, settings,
// clock sync and the power, light and capture actions. Start and shutdown put
// the camera out of reach until someone walks up to it, so both are gated
// behind the operator's confirmation.
package control

import (
	"context"
	"strings"
	"time"

	"kilocam/internal/confirm"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/log"
	"kilocam/internal/preview"
	"kilocam/internal/timesync"
)

// Confirmation prompts and the messages shown when the device answers an
// action with an empty body.
const (
	StartPrompt    = "Start New Collection Run? This will create a new directory and start the loop."
	ShutdownPrompt = "Shutdown (Deep Sleep)? You will need to use the magnet to wake it."

	StartFallback    = "Starting... Device will sleep shortly."
	ShutdownFallback = "Shutting down..."
)

// Device is the part of the device client the controller uses.
type Device interface {
	Status(ctx context.Context) (*device.Status, error)
	SaveSettings(ctx context.Context, s device.Settings) (string, error)
	SetTime(ctx context.Context, epoch int64, tzMinutes int) (string, error)
	Control(ctx context.Context, action device.Action) (string, error)
	Capture(ctx context.Context) (*device.Capture, error)
}

// Controller runs one operator action per call. It keeps no device state.
type Controller struct {
	dev     Device
	confirm confirm.Confirmer
}

// New returns a controller asking c before start and shutdown. A nil c
// declines everything.
func New(dev Device, c confirm.Confirmer) *Controller {
	if c == nil {
		c = confirm.No
	}
	return &Controller{dev: dev, confirm: c}
}

// Status fetches one snapshot of the device.
func (c *Controller) Status(ctx context.Context) (*device.Status, error) {
	status, err := c.dev.Status(ctx)
	if err != nil {
		log.Warnf("status refresh failed: %v", err)
		return nil, err
	}
	return status, nil
}

// SaveSettings validates s, sends it in one request and returns the device's
// acknowledgment verbatim.
func (c *Controller) SaveSettings(ctx context.Context, s device.Settings) (string, error) {
	msg, err := c.dev.SaveSettings(ctx, s)
	if err != nil {
		return "", err
	}
	log.LogWithFields(
		log.F("interval", s.Interval),
		log.F("lightPwm", s.LightPWM),
		log.F("lightDur", s.LightDur),
	).Info("settings saved")
	return msg, nil
}

// SyncTime sets the device clock to now, including its zone offset.
func (c *Controller) SyncTime(ctx context.Context, now time.Time) (string, error) {
	p := timesync.Compute(now)
	msg, err := c.dev.SetTime(ctx, p.Epoch, p.TZMinutes)
	if err != nil {
		return "", err
	}
	log.Infof("device clock set to %s", p)
	return msg, nil
}

// StartCollection starts a new collection run after confirmation. The device
// creates a run directory and goes to sleep between captures.
func (c *Controller) StartCollection(ctx context.Context) (string, error) {
	return c.confirmed(ctx, StartPrompt, device.ActionStart, StartFallback)
}

// Shutdown puts the device into deep sleep after confirmation.
func (c *Controller) Shutdown(ctx context.Context) (string, error) {
	return c.confirmed(ctx, ShutdownPrompt, device.ActionShutdown, ShutdownFallback)
}

// ToggleLight flips the light.
func (c *Controller) ToggleLight(ctx context.Context) (string, error) {
	return c.dev.Control(ctx, device.ActionLight)
}

// TakePhoto captures a test photo.
func (c *Controller) TakePhoto(ctx context.Context) (*preview.Preview, error) {
	capture, err := c.dev.Capture(ctx)
	if err != nil {
		return nil, err
	}
	p := preview.New(capture.Data, capture.ContentType)
	log.LogWithFields(log.F("bytes", len(capture.Data)), log.F("format", p.Format)).Debug("photo captured")
	return p, nil
}

func (c *Controller) confirmed(ctx context.Context, prompt string, action device.Action, fallback string) (string, error) {
	if !c.confirm.Confirm(prompt) {
		log.Debugf("%s declined", action)
		return "", errors.ErrDeclined
	}
	msg, err := c.dev.Control(ctx, action)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(msg) == "" {
		msg = fallback
	}
	log.Infof("%s: %s", action, msg)
	return msg, nil
}
