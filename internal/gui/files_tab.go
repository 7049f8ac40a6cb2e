//go:build !nogui

package gui

import (
	"context"
	"fmt"
	"time"

	"kilocam/internal/browser"
	"kilocam/internal/confirm"
	"kilocam/internal/device"
	"kilocam/internal/errors"
	"kilocam/internal/format"
	"kilocam/internal/log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// createFilesTab creates the storage browser.
func (a *App) createFilesTab() fyne.CanvasObject {
	a.pathLabel = widget.NewLabel("Files: " + browser.Root)
	a.pathLabel.TextStyle.Bold = true
	a.summary = widget.NewLabel("")
	a.progress = widget.NewProgressBar()
	a.progress.Hide()

	a.upButton = widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), a.goUp)
	a.upButton.Hide()
	refresh := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), a.refreshFiles)
	del := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), a.deleteSelected)
	download := widget.NewButtonWithIcon("Download all", theme.DownloadIcon(), a.downloadAll)

	a.fileList = widget.NewList(
		func() int {
			a.mu.Lock()
			defer a.mu.Unlock()
			return len(a.entries)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FileIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			e, ok := a.entryAt(id)
			if !ok {
				return
			}
			row := obj.(*fyne.Container)
			icon := theme.FileIcon()
			if e.IsDir {
				icon = theme.FolderIcon()
			}
			row.Objects[0].(*widget.Icon).SetResource(icon)
			row.Objects[1].(*widget.Label).SetText(format.EntryLabel(e))
		},
	)
	a.fileList.OnSelected = a.selectEntry
	a.fileList.OnUnselected = func(widget.ListItemID) {
		a.mu.Lock()
		a.selected = -1
		a.mu.Unlock()
	}

	toolbar := container.NewHBox(a.upButton, refresh, del, download)
	top := container.NewVBox(a.pathLabel, toolbar)
	bottom := container.NewVBox(a.progress, a.summary)
	return container.NewBorder(top, bottom, nil, nil, a.fileList)
}

func (a *App) entryAt(id widget.ListItemID) (device.Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id < 0 || id >= len(a.entries) {
		return device.Entry{}, false
	}
	return a.entries[id], true
}

// selectEntry opens directories and marks files for delete.
func (a *App) selectEntry(id widget.ListItemID) {
	e, ok := a.entryAt(id)
	if !ok {
		return
	}
	if e.IsDir {
		a.fileList.UnselectAll()
		a.navigate(browser.Resolve(a.br.Path(), e.Name))
		return
	}
	a.mu.Lock()
	a.selected = id
	a.mu.Unlock()
}

// navigate lists path. Only the latest request of the current browser is
// shown; a queued bulk download is abandoned first.
func (a *App) navigate(path string) {
	a.stopDownload()
	br := a.br
	nav := br.Navigate(path)
	a.setMessage("Loading %s...", nav.Path)
	a.async(func() {
		err := br.Apply(br.Fetch(a.ctx, nav))
		if errors.IsStale(err) || br != a.br {
			return
		}
		if err != nil {
			a.ShowError("Failed to list "+nav.Path, err)
			return
		}
		a.showEntries()
	})
}

func (a *App) goUp() {
	if !browser.CanGoUp(a.br.Path()) {
		return
	}
	a.navigate(browser.Parent(a.br.Path()))
}

func (a *App) refreshFiles() {
	a.navigate(a.br.Path())
}

// showEntries copies the browser rows into the list.
func (a *App) showEntries() {
	entries := a.br.Entries()
	path := a.br.Path()

	a.mu.Lock()
	a.entries = entries
	a.selected = -1
	a.mu.Unlock()

	a.pathLabel.SetText("Files: " + path)
	if browser.CanGoUp(path) {
		a.upButton.Show()
	} else {
		a.upButton.Hide()
	}
	a.summary.SetText(format.Summary(entries))
	a.fileList.UnselectAll()
	a.fileList.Refresh()
	a.setMessage("Listed %s", path)
}

func (a *App) deleteSelected() {
	a.mu.Lock()
	id := a.selected
	a.mu.Unlock()
	e, ok := a.entryAt(id)
	if !ok {
		a.setMessage("Select a file to delete")
		return
	}
	t := a.br.TargetOf(e)
	a.confirmAction("Delete", t.Prompt(), func() {
		a.async(func() {
			// the dialog already asked
			err := a.br.Delete(a.ctx, t, confirm.Yes)
			switch {
			case errors.IsPartialDelete(err):
				a.ShowError("Some files could not be deleted, refresh to see what remains", err)
			case err != nil:
				a.ShowError("Delete failed", err)
			default:
				a.showEntries()
				a.setMessage("Deleted %s", t.Path)
			}
		})
	})
}

// downloadAll fetches every file of the displayed directory into the
// download folder, one trigger per pacing interval.
func (a *App) downloadAll() {
	dir := a.br.Path()
	a.confirmAction("Download all", browser.Prompt(dir), func() {
		d := browser.NewDownloader(a.client, a.cfg.Downloads.Dir, a.cfg.Pacing())
		if err := d.SetMatch(a.cfg.Downloads.Match); err != nil {
			a.ShowError("Download not started", err)
			return
		}

		ctx, cancel := context.WithCancel(a.ctx)
		a.stopDownload()
		a.mu.Lock()
		a.cancelDownload = cancel
		a.mu.Unlock()

		a.async(func() {
			defer cancel()
			q, err := d.Plan(ctx, dir)
			if err != nil {
				a.ShowError("Download of "+dir+" failed", err)
				return
			}
			a.progress.Max = float64(q.Len())
			a.progress.SetValue(0)
			a.progress.Show()
			d.OnTrigger = func(i int, p string, _ time.Time) {
				a.progress.SetValue(float64(i + 1))
				a.setMessage("Downloading %s (%d of %d)", p, i+1, q.Len())
			}

			results, err := d.Run(ctx, q)
			a.progress.Hide()
			if err != nil {
				a.ShowError("Download of "+dir+" failed", err)
				return
			}
			msg := fmt.Sprintf("Downloaded %d of %d files to %s", len(results), q.Len(), a.cfg.Downloads.Dir)
			log.Info(msg)
			a.setMessage("%s", msg)
		})
	})
}

// stopDownload discards the triggers of a running bulk download.
func (a *App) stopDownload() {
	a.mu.Lock()
	cancel := a.cancelDownload
	a.cancelDownload = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
