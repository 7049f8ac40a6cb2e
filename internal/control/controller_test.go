package control_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kilocam/internal/confirm"
	"kilocam/internal/control"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, c confirm.Confirmer) (*control.Controller, *testutils.FakeDevice) {
	t.Helper()
	fd := testutils.NewFakeDevice(t)
	return control.New(device.NewClient(fd.URL()), c), fd
}

func TestStatus(t *testing.T) {
	ctrl, _ := newController(t, nil)
	status, err := ctrl.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12.3 MB used / 3.7 GB", status.Storage)
}

func TestSaveSettingsDoesNotRefreshStatus(t *testing.T) {
	ctrl, fd := newController(t, nil)
	msg, err := ctrl.SaveSettings(context.Background(), device.Settings{Interval: 30, LightPWM: 1800, LightDur: 500})
	require.NoError(t, err)
	assert.Equal(t, "Settings Saved", msg)
	assert.Empty(t, fd.Requests("/status"))
}

func TestSyncTime(t *testing.T) {
	ctrl, fd := newController(t, nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*60*60))

	msg, err := ctrl.SyncTime(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "Time set to 1717261200 (tz -300)", msg)

	require.Len(t, fd.Requests("/set-time"), 1)
	q := fd.LastQuery("/set-time")
	assert.Equal(t, "1717261200", q.Get("time"))
	assert.Equal(t, "-300", q.Get("tz"))
	assert.Empty(t, fd.Requests("/status"))
}

func TestConfirmedActions(t *testing.T) {
	tests := []struct {
		name   string
		run    func(*control.Controller, context.Context) (string, error)
		prompt string
		action string
		reply  string
	}{
		{"start", (*control.Controller).StartCollection, control.StartPrompt, "start", "Collection started: /run_0003"},
		{"shutdown", (*control.Controller).Shutdown, control.ShutdownPrompt, "shutdown", "Shutting down"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" declined", func(t *testing.T) {
			rec := &confirm.Recorder{Answer: false}
			ctrl, fd := newController(t, rec)

			_, err := tt.run(ctrl, context.Background())
			assert.ErrorIs(t, err, errors.ErrDeclined)
			assert.Equal(t, []string{tt.prompt}, rec.Prompts)
			assert.Empty(t, fd.Requests("/control"))
		})

		t.Run(tt.name+" confirmed", func(t *testing.T) {
			rec := &confirm.Recorder{Answer: true}
			ctrl, fd := newController(t, rec)

			msg, err := tt.run(ctrl, context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.reply, msg)
			require.Len(t, fd.Requests("/control"), 1)
			assert.Equal(t, tt.action, fd.LastQuery("/control").Get("action"))
		})
	}
}

func TestEmptyReplyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	ctrl := control.New(device.NewClient(srv.URL), confirm.Yes)

	msg, err := ctrl.StartCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, control.StartFallback, msg)

	msg, err = ctrl.Shutdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, control.ShutdownFallback, msg)
}

func TestUnconfirmedActions(t *testing.T) {
	rec := &confirm.Recorder{Answer: false}
	ctrl, fd := newController(t, rec)

	msg, err := ctrl.ToggleLight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Light ON", msg)

	p, err := ctrl.TakePhoto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fd.Photo(), p.Data)
	assert.Equal(t, "jpeg", p.Format)
	assert.Equal(t, 8, p.Width)
	assert.Equal(t, 6, p.Height)

	assert.Empty(t, rec.Prompts, "light and capture never ask")
}

func TestDeviceErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Camera init failed", http.StatusInternalServerError)
	}))
	defer srv.Close()
	ctrl := control.New(device.NewClient(srv.URL), confirm.Yes)

	_, err := ctrl.TakePhoto(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDeviceReported(err))

	_, err = ctrl.Status(context.Background())
	assert.True(t, errors.IsDeviceReported(err))
}
