package tui

import (
	"context"
	"time"

	"kilocam/internal/browser"
	"kilocam/internal/confirm"
	"kilocam/internal/device"
	"kilocam/internal/tui/messages"

	tea "github.com/charmbracelet/bubbletea"
)

// Every device call runs as a tea.Cmd; the spinner shows while any is in
// flight and each reply message calls bar.End.

func (m *Model) request(text string, fn func() tea.Msg) tea.Cmd {
	return tea.Batch(m.bar.Begin(text), fn)
}

func (m *Model) fetchStatus() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return m.request("Loading status...", func() tea.Msg {
		s, err := ctrl.Status(ctx)
		return messages.StatusMsg{Status: s, Err: err}
	})
}

// navigate lists path. A queued bulk download is abandoned first.
func (m *Model) navigate(path string) tea.Cmd {
	m.cancelDownload()
	br, ctx := m.br, m.ctx
	nav := br.Navigate(path)
	return m.request("Loading "+nav.Path+"...", func() tea.Msg {
		return messages.ListingMsg{Browser: br, Listing: br.Fetch(ctx, nav)}
	})
}

func (m *Model) saveSettings(s device.Settings) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return m.request("Saving settings...", func() tea.Msg {
		text, err := ctrl.SaveSettings(ctx, s)
		return messages.SettingsSavedMsg{Settings: s, Text: text, Err: err}
	})
}

func (m *Model) syncTime() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return m.request("Syncing time...", func() tea.Msg {
		text, err := ctrl.SyncTime(ctx, time.Now())
		return messages.ActionDoneMsg{Action: "Time sync", Text: text, Err: err}
	})
}

func (m *Model) startCollection() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return m.request("Starting collection...", func() tea.Msg {
		text, err := ctrl.StartCollection(ctx)
		return messages.ActionDoneMsg{Action: "Start", Text: text, Err: err}
	})
}

func (m *Model) shutdown() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return m.request("Shutting down...", func() tea.Msg {
		text, err := ctrl.Shutdown(ctx)
		return messages.ActionDoneMsg{Action: "Shutdown", Text: text, Err: err}
	})
}

func (m *Model) toggleLight() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return m.request("Toggling light...", func() tea.Msg {
		text, err := ctrl.ToggleLight(ctx)
		return messages.ActionDoneMsg{Action: "Light", Text: text, Err: err}
	})
}

func (m *Model) takePhoto() tea.Cmd {
	ctrl, ctx, dir := m.ctrl, m.ctx, m.cfg.Preview.Dir
	return m.request("Capturing...", func() tea.Msg {
		p, err := ctrl.TakePhoto(ctx)
		if err != nil {
			return messages.PreviewMsg{Err: err}
		}
		saved, err := p.Save(dir)
		if err != nil {
			return messages.PreviewMsg{Err: err}
		}
		return messages.PreviewMsg{Preview: p, Saved: saved}
	})
}

func (m *Model) delete(t browser.Target) tea.Cmd {
	br, ctx := m.br, m.ctx
	return m.request("Deleting "+t.Path+"...", func() tea.Msg {
		// the operator already answered the prompt in confirm mode
		err := br.Delete(ctx, t, confirm.Yes)
		return messages.DeleteDoneMsg{Target: t, Err: err}
	})
}

// startDownload plans and runs a paced bulk download of dir. Progress is
// reported through a channel read by listen.
func (m *Model) startDownload(dir string) tea.Cmd {
	d := browser.NewDownloader(m.client, m.cfg.Downloads.Dir, m.cfg.Pacing())
	if err := d.SetMatch(m.cfg.Downloads.Match); err != nil {
		return func() tea.Msg { return messages.ActionDoneMsg{Action: "Download", Err: err} }
	}

	ctx, cancel := context.WithCancel(m.ctx)
	progress := make(chan messages.DownloadProgressMsg, 64)
	m.download = &downloadState{dir: dir, cancel: cancel, progress: progress}

	run := func() tea.Msg {
		defer close(progress)
		defer cancel()
		q, err := d.Plan(ctx, dir)
		if err != nil {
			return messages.DownloadDoneMsg{Dir: dir, Err: err}
		}
		d.OnTrigger = func(i int, p string, _ time.Time) {
			select {
			case progress <- messages.DownloadProgressMsg{Index: i, Total: q.Len(), Path: p}:
			default:
			}
		}
		results, err := d.Run(ctx, q)
		return messages.DownloadDoneMsg{Dir: dir, Total: q.Len(), Results: results, Err: err}
	}
	return tea.Batch(m.bar.Begin("Preparing download of "+dir+"..."), run, listen(progress))
}

// progressMsg wraps a download progress report with the channel it came
// from so the listener can be re-armed.
type progressMsg struct {
	messages.DownloadProgressMsg
	ch <-chan messages.DownloadProgressMsg
}

func listen(ch <-chan messages.DownloadProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{DownloadProgressMsg: msg, ch: ch}
	}
}

func (m *Model) listenConfig() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return messages.ConfigUpdateMsg{Config: cfg}
	}
}
