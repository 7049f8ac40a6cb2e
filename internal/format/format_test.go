package format

import (
	"strings"
	"testing"

	"kilocam/internal/device"

	alsrt "github.com/alecthomas/assert"
)

func TestSize(t *testing.T) {
	alsrt.Equal(t, "0 B", Size(0))
	alsrt.Equal(t, "0 B", Size(-5))
	alsrt.Equal(t, "999 B", Size(999))
	alsrt.Equal(t, "1.5 kB", Size(1500))
	alsrt.Equal(t, "3.7 GB", Size(3_700_000_000))
}

func TestEntryLabels(t *testing.T) {
	dir := device.Entry{Name: "2024-01-01", IsDir: true}
	file := device.Entry{Name: "IMG_0001.jpg", Size: 23000}

	alsrt.Equal(t, "2024-01-01/", EntryName(dir))
	alsrt.Equal(t, "", EntrySize(dir))
	alsrt.Equal(t, "2024-01-01/", EntryLabel(dir))

	alsrt.Equal(t, "IMG_0001.jpg", EntryName(file))
	alsrt.Equal(t, "23 kB", EntrySize(file))
	alsrt.Equal(t, "IMG_0001.jpg (23 kB)", EntryLabel(file))
}

func TestSummary(t *testing.T) {
	entries := []device.Entry{
		{Name: "run_0001", IsDir: true},
		{Name: "a.jpg", Size: 1000},
		{Name: "b.jpg", Size: 500},
	}
	dirs, files, bytes := Totals(entries)
	alsrt.Equal(t, 1, dirs)
	alsrt.Equal(t, 2, files)
	alsrt.Equal(t, int64(1500), bytes)
	alsrt.Equal(t, "1 folder, 2 files, 1.5 kB", Summary(entries))
	alsrt.Equal(t, "0 folders, 0 files, 0 B", Summary(nil))
}

func TestStatusCard(t *testing.T) {
	card := StatusCard(&device.Status{Name: "camOne", Storage: "1 MB / 4 GB", Interval: 300, LightPWM: 1500, LightDur: 1000})
	lines := strings.Split(strings.TrimSpace(card), "\n")
	alsrt.Equal(t, 6, len(lines))
	alsrt.Equal(t, "Name:         camOne", lines[0])
	alsrt.Equal(t, "Device time:  -", lines[2])
	alsrt.Equal(t, "Light warmup: 1000 ms", lines[5])
}
