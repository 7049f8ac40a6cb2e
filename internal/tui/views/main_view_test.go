package views

import (
	"testing"

	"kilocam/internal/device"
	"kilocam/internal/tui/common"
	"kilocam/pkg/testutils"

	"github.com/stretchr/testify/assert"
)

// Mock model for testing
type mockModel struct {
	mode     common.Mode
	status   *device.Status
	prompt   string
	showHelp bool
}

func (m *mockModel) Mode() common.Mode            { return m.mode }
func (m *mockModel) DeviceStatus() *device.Status { return m.status }
func (m *mockModel) DeviceURL() string            { return "http://192.168.4.1" }
func (m *mockModel) Prompt() string               { return m.prompt }
func (m *mockModel) ShowHelp() bool               { return m.showHelp }
func (m *mockModel) FileListView() string         { return "FILES" }
func (m *mockModel) SettingsView() string         { return "SETTINGS" }
func (m *mockModel) PreviewView() string          { return "PHOTO" }
func (m *mockModel) StatusBarView() string        { return "Status updated" }
func (m *mockModel) HelpView() string             { return "? help" }

func TestRenderMainView(t *testing.T) {
	status := &device.Status{Name: "camOne", Storage: "1 MB / 4 GB", Time: "2024-06-01 12:00:00", Interval: 300, LightPWM: 1500, LightDur: 1000}

	tests := []struct {
		name     string
		model    *mockModel
		contains []string // Strings that should be present in the output
		excludes []string // Strings that should not be present in the output
	}{
		{
			name:     "no status yet",
			model:    &mockModel{mode: common.Normal},
			contains: []string{"KiloCam http://192.168.4.1", "status not loaded", "FILES", "Status updated", "? help"},
			excludes: []string{"SETTINGS", "PHOTO", "[y] yes"},
		},
		{
			name:     "browsing with status",
			model:    &mockModel{mode: common.Normal, status: status},
			contains: []string{"camOne", "1 MB / 4 GB", "300 s", "1500", "1000 ms", "FILES"},
		},
		{
			name:     "settings",
			model:    &mockModel{mode: common.Settings, status: status},
			contains: []string{"SETTINGS"},
			excludes: []string{"FILES"},
		},
		{
			name:     "preview",
			model:    &mockModel{mode: common.Preview, status: status},
			contains: []string{"Test photo", "PHOTO"},
			excludes: []string{"FILES"},
		},
		{
			name:     "confirm",
			model:    &mockModel{mode: common.Confirm, prompt: "Delete File: /a.jpg?"},
			contains: []string{"FILES", "Delete File: /a.jpg?", "[y] yes  [n] no"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := testutils.StripANSI(RenderMainView(tt.model))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "browse", common.Normal.String())
	assert.Equal(t, "settings", common.Settings.String())
	assert.Equal(t, "confirm", common.Confirm.String())
	assert.Equal(t, "preview", common.Preview.String())
}
