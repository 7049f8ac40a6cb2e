package tui

import (
	"os"
	"path/filepath"
	"testing"

	"kilocam/internal/config"
	"kilocam/internal/device"
	"kilocam/internal/tui/common"
	"kilocam/internal/tui/messages"
	"kilocam/pkg/testutils"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *testutils.FakeDevice) {
	t.Helper()
	fd := testutils.NewFakeDevice(t)
	fd.AddFile("/config.txt", "cfg")
	fd.AddFile("/run_0001/IMG_0001.jpg", "one")
	fd.AddFile("/run_0001/IMG_0002.jpg", "two")
	fd.AddDir("/run_0002")

	cfg := config.New()
	cfg.Device.URL = fd.URL()
	cfg.Downloads.Dir = t.TempDir()
	cfg.Downloads.PacingMS = 1
	cfg.Preview.Dir = t.TempDir()

	m := New(cfg)
	run(t, m, m.Init())
	return m, fd
}

// run executes cmd and feeds every resulting message back into m until no
// commands remain. Spinner ticks are dropped.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+u":
			msg = tea.KeyMsg{Type: tea.KeyCtrlU}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		run(t, m, cmd)
	}
}

func names(entries []device.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestModelInitialization(t *testing.T) {
	m, fd := newTestModel(t)

	assert.Equal(t, common.Normal, m.Mode())
	require.NotNil(t, m.DeviceStatus())
	assert.Equal(t, "camOne", m.DeviceStatus().Name)
	assert.Equal(t, "/", m.Path())
	assert.Equal(t, []string{"run_0001", "run_0002", "config.txt"}, names(m.Entries()))
	assert.Len(t, fd.Requests("/status"), 1)

	view := testutils.StripANSI(m.View())
	assert.Contains(t, view, "camOne")
	assert.Contains(t, view, "Files: /")
	assert.NotContains(t, view, "../")
}

func TestNavigation(t *testing.T) {
	m, fd := newTestModel(t)

	press(t, m, "enter")
	assert.Equal(t, "/run_0001", m.Path())
	assert.Equal(t, []string{"IMG_0001.jpg", "IMG_0002.jpg"}, names(m.Entries()))
	assert.Contains(t, testutils.StripANSI(m.View()), "../")

	press(t, m, "backspace")
	assert.Equal(t, "/", m.Path())
	assert.Equal(t, 0, m.Cursor())

	lists := len(fd.Requests("/list"))
	press(t, m, "backspace")
	assert.Len(t, fd.Requests("/list"), lists, "no up at root")

	press(t, m, "G")
	assert.Equal(t, 2, m.Cursor())
	press(t, m, "enter")
	assert.Equal(t, "/", m.Path(), "opening a file does not navigate")
	assert.Contains(t, m.StatusText(), "/config.txt")
}

func TestStaleListingDoesNotOverwrite(t *testing.T) {
	m, _ := newTestModel(t)

	first := m.navigate("/run_0001")
	second := m.navigate("/run_0002")
	run(t, m, second)
	run(t, m, first)

	assert.Equal(t, "/run_0002", m.Path())
	assert.Empty(t, m.Entries())
}

func TestFailedListingKeepsRows(t *testing.T) {
	m, fd := newTestModel(t)
	fd.FailList("/run_0002")

	press(t, m, "j", "enter")
	assert.Equal(t, "/", m.Path())
	assert.Equal(t, []string{"run_0001", "run_0002", "config.txt"}, names(m.Entries()))
	assert.Contains(t, m.StatusText(), "Failed to open directory")
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, fd := newTestModel(t)
	press(t, m, "G", "d")

	assert.Equal(t, common.Confirm, m.Mode())
	assert.Equal(t, "Delete File: /config.txt?", m.Prompt())
	assert.Contains(t, testutils.StripANSI(m.View()), "Delete File: /config.txt?")

	press(t, m, "n")
	assert.Equal(t, common.Normal, m.Mode())
	assert.Empty(t, fd.Requests("/delete"))
	assert.True(t, fd.Exists("/config.txt"))

	press(t, m, "g", "d")
	assert.Equal(t, "Delete Directory (Recursive!): /run_0001?", m.Prompt())
	press(t, m, "y")
	assert.False(t, fd.Exists("/run_0001/IMG_0001.jpg"))
	assert.Equal(t, []string{"run_0002", "config.txt"}, names(m.Entries()))
	assert.Equal(t, "Deleted /run_0001", m.StatusText())
}

func TestPartialDeleteIsReported(t *testing.T) {
	m, fd := newTestModel(t)
	fd.PartialDelete("/run_0001")

	press(t, m, "d", "y")
	assert.Contains(t, m.StatusText(), "incomplete")
	assert.Equal(t, []string{"run_0001", "run_0002", "config.txt"}, names(m.Entries()), "no re-list on failure")
}

func TestConfirmedActions(t *testing.T) {
	m, fd := newTestModel(t)

	press(t, m, "S")
	assert.Equal(t, "Start New Collection Run? This will create a new directory and start the loop.", m.Prompt())
	press(t, m, "esc")
	assert.Empty(t, fd.Requests("/control"))

	press(t, m, "X", "y")
	assert.Equal(t, "shutdown", fd.LastQuery("/control").Get("action"))
	assert.Equal(t, "Shutting down", m.StatusText())

	press(t, m, "L")
	assert.Equal(t, "light", fd.LastQuery("/control").Get("action"))
	assert.Equal(t, "Light ON", m.StatusText())
}

func TestAssumeYesSkipsPrompt(t *testing.T) {
	m, fd := newTestModel(t)
	m.cfg.Confirm.AssumeYes = true

	press(t, m, "S")
	assert.Equal(t, common.Normal, m.Mode())
	assert.Equal(t, "start", fd.LastQuery("/control").Get("action"))
}

func TestSyncTime(t *testing.T) {
	m, fd := newTestModel(t)
	press(t, m, "t")
	require.Len(t, fd.Requests("/set-time"), 1)
	assert.Contains(t, m.StatusText(), "Time set to")
	assert.Len(t, fd.Requests("/status"), 1, "sync does not refresh status")
}

func TestSettingsForm(t *testing.T) {
	m, fd := newTestModel(t)

	press(t, m, "e")
	assert.Equal(t, common.Settings, m.Mode())
	s, err := m.Settings()
	require.NoError(t, err)
	assert.Equal(t, device.Settings{Name: "camOne", Interval: 300, LightPWM: 1500, LightDur: 1000}, s)

	// q types into the name field instead of quitting
	press(t, m, "q")
	assert.Equal(t, common.Settings, m.Mode())

	m.form.SetValue(0, "camTwo")
	m.form.SetValue(2, "2500")
	press(t, m, "enter")
	assert.Equal(t, common.Settings, m.Mode())
	assert.Contains(t, m.StatusText(), "lightPwm")
	assert.Empty(t, fd.Requests("/save-config"))

	m.form.SetValue(2, "1750")
	press(t, m, "enter")
	assert.Equal(t, common.Normal, m.Mode())
	assert.Equal(t, "Settings Saved", m.StatusText())
	q := fd.LastQuery("/save-config")
	assert.Equal(t, "camTwo", q.Get("name"))
	assert.Equal(t, "1750", q.Get("lightPwm"))
}

func TestCapturePreview(t *testing.T) {
	m, fd := newTestModel(t)

	press(t, m, "p")
	assert.Equal(t, common.Preview, m.Mode())
	assert.Contains(t, testutils.StripANSI(m.View()), "8x6 jpeg")

	data, err := os.ReadFile(filepath.Join(m.cfg.Preview.Dir, "capture.jpg"))
	require.NoError(t, err)
	assert.Equal(t, fd.Photo(), data)

	press(t, m, "esc")
	assert.Equal(t, common.Normal, m.Mode())
}

func TestDownloadAll(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, "enter", "D")
	assert.Equal(t, "Download all files in /run_0001? This will open multiple downloads.", m.Prompt())

	press(t, m, "y")
	assert.False(t, m.Downloading())
	assert.Equal(t, map[string]string{
		"IMG_0001.jpg": "one",
		"IMG_0002.jpg": "two",
	}, testutils.ReadDirFiles(t, m.cfg.Downloads.Dir))
	assert.Contains(t, m.StatusText(), "Downloaded 2 files")
}

func TestDownloadEmptyDirectory(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, "j", "enter", "D", "y")
	assert.Equal(t, "No files to download in /run_0002", m.StatusText())
}

func TestConfigReload(t *testing.T) {
	m, fd := newTestModel(t)

	same := *m.cfg
	same.ApplyTheme("dark")
	_, cmd := m.Update(messages.ConfigUpdateMsg{Config: &same})
	run(t, m, cmd)
	assert.Equal(t, "dark", m.cfg.Theme.Name)
	assert.Len(t, fd.Requests("/status"), 1, "same device is not reloaded")

	other := testutils.NewFakeDevice(t)
	moved := same
	moved.Device.URL = other.URL()
	_, cmd = m.Update(messages.ConfigUpdateMsg{Config: &moved})
	run(t, m, cmd)
	assert.Equal(t, other.URL(), m.DeviceURL())
	assert.Len(t, other.Requests("/status"), 1)
	assert.Empty(t, m.Entries())
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, "?")
	assert.True(t, m.ShowHelp())
	assert.Contains(t, testutils.StripANSI(m.View()), "shutdown")
}
