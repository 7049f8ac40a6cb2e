package device_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	c := device.NewClient(fd.URL())

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "camOne", status.Name)
	assert.Equal(t, 300, status.Interval)
	assert.Equal(t, 1500, status.LightPWM)
	assert.Equal(t, 1000, status.LightDur)

	settings := status.Settings()
	assert.Equal(t, device.Settings{Name: "camOne", Interval: 300, LightPWM: 1500, LightDur: 1000}, settings)
}

func TestSaveSettings(t *testing.T) {
	t.Run("sends one combined request", func(t *testing.T) {
		fd := testutils.NewFakeDevice(t)
		c := device.NewClient(fd.URL())

		msg, err := c.SaveSettings(context.Background(), device.Settings{Interval: 60, LightPWM: 1200, LightDur: 250})
		require.NoError(t, err)
		assert.Equal(t, "Settings Saved", msg)

		require.Len(t, fd.Requests("/save-config"), 1)
		q := fd.LastQuery("/save-config")
		assert.Equal(t, "60", q.Get("interval"))
		assert.Equal(t, "1200", q.Get("lightPwm"))
		assert.Equal(t, "250", q.Get("lightDur"))
		_, hasName := q["name"]
		assert.False(t, hasName, "empty name must not be sent")
	})

	t.Run("name is percent-encoded", func(t *testing.T) {
		fd := testutils.NewFakeDevice(t)
		c := device.NewClient(fd.URL())

		_, err := c.SaveSettings(context.Background(), device.Settings{Name: "cam & one", Interval: 60, LightPWM: 1200})
		require.NoError(t, err)
		assert.Equal(t, "cam & one", fd.LastQuery("/save-config").Get("name"))
	})

	t.Run("out of range values are never sent", func(t *testing.T) {
		fd := testutils.NewFakeDevice(t)
		c := device.NewClient(fd.URL())

		for _, s := range []device.Settings{
			{Interval: 60, LightPWM: 999},
			{Interval: 60, LightPWM: 2001},
			{Interval: 0, LightPWM: 1500},
			{Interval: 60, LightPWM: 1500, LightDur: -1},
			{Name: "a-name-that-is-longer-than-thirty-two-bytes", Interval: 60, LightPWM: 1500},
		} {
			_, err := c.SaveSettings(context.Background(), s)
			assert.True(t, errors.IsInvalidSetting(err), "%+v", s)
		}
		assert.Empty(t, fd.Requests("/save-config"))
	})
}

func TestSettingsValidateBounds(t *testing.T) {
	assert.NoError(t, device.Settings{Interval: 1, LightPWM: device.MinLightPWM}.Validate())
	assert.NoError(t, device.Settings{Interval: 1, LightPWM: device.MaxLightPWM}.Validate())
}

func TestSetTime(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	c := device.NewClient(fd.URL())

	msg, err := c.SetTime(context.Background(), 1717261200, -300)
	require.NoError(t, err)
	assert.Equal(t, "Time set to 1717261200 (tz -300)", msg)
	assert.Equal(t, "-300", fd.LastQuery("/set-time").Get("tz"))
}

func TestControl(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	c := device.NewClient(fd.URL())

	msg, err := c.Control(context.Background(), device.ActionLight)
	require.NoError(t, err)
	assert.Equal(t, "Light ON", msg)
	assert.Equal(t, "light", fd.LastQuery("/control").Get("action"))

	_, err = c.Control(context.Background(), device.Action("reboot"))
	assert.Error(t, err)
	assert.Len(t, fd.Requests("/control"), 1)
}

func TestCapture(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	c := device.NewClient(fd.URL())

	capture, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fd.Photo(), capture.Data)
	assert.Equal(t, "image/jpeg", capture.ContentType)
}

func TestListAndDelete(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	fd.AddFile("/2024-01-01/img 1.jpg", "abc")
	fd.AddDir("/2024-01-01/images")
	c := device.NewClient(fd.URL())

	entries, err := c.List(context.Background(), "/2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []device.Entry{
		{Name: "img 1.jpg", Size: 3},
		{Name: "images", IsDir: true},
	}, entries)

	require.NoError(t, c.Delete(context.Background(), "/2024-01-01/img 1.jpg"))
	assert.False(t, fd.Exists("/2024-01-01/img 1.jpg"))
	assert.Equal(t, "/2024-01-01/img 1.jpg", fd.LastQuery("/delete").Get("path"))

	err = c.Delete(context.Background(), "/missing")
	assert.True(t, errors.IsDeviceReported(err))
}

func TestFetch(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	fd.AddFile("/run 1/IMG_0001.jpg", "jpeg-bytes")
	c := device.NewClient(fd.URL())

	var buf bytes.Buffer
	n, err := c.Fetch(context.Background(), "/run 1/IMG_0001.jpg", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, len("jpeg-bytes"), n)
	assert.Equal(t, "jpeg-bytes", buf.String())
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("device reported keeps body verbatim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Invalid time", http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := device.NewClient(srv.URL).SetTime(context.Background(), 0, 0)
		require.Error(t, err)
		var devErr *errors.DeviceError
		require.True(t, errors.As(err, &devErr))
		assert.Equal(t, http.StatusBadRequest, devErr.StatusCode())
		assert.Equal(t, "Invalid time", devErr.Body())
	})

	t.Run("unreachable device is transient", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := device.NewClient(url).Status(context.Background())
		assert.True(t, errors.IsTransient(err))
	})
}

func TestBaseURLTrailingSlash(t *testing.T) {
	fd := testutils.NewFakeDevice(t)
	c := device.NewClient(fd.URL() + "/")
	_, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Len(t, fd.Requests("/status"), 1)
}
