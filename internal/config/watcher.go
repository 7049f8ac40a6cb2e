package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"kilocam/internal/log"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk and delivers
// each successfully parsed configuration on Changes.
type Watcher struct {
	path string

	changes  chan *Config
	stopChan chan struct{}

	fsWatcher *fsnotify.Watcher

	mutex   sync.Mutex
	running bool
}

// NewWatcher watches path. The parent directory is watched rather than the
// file so that editors replacing the file by rename are still seen.
func NewWatcher(path string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		path:      filepath.Clean(path),
		changes:   make(chan *Config, 1),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// Changes delivers reloaded configurations. Only the newest pending one is
// kept when the reader is slow.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

// Start begins watching in a separate goroutine.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.stopChan == nil {
		return fmt.Errorf("watcher stopped")
	}
	w.running = true
	go w.loop(w.stopChan)
	log.LogWithFields(log.F("file", w.path)).Debug("Watching config file")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfigFile(w.path)
	if err != nil {
		log.LogWithFields(log.F("file", w.path)).Warnf("config reload rejected: %v", err)
		return
	}
	log.LogWithFields(log.F("file", w.path)).Info("Config reloaded")

	// drop a stale pending config in favour of this one
	select {
	case <-w.changes:
	default:
	}
	w.changes <- cfg
}

// Stop halts the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.stopChan == nil {
		return
	}
	close(w.stopChan)
	w.stopChan = nil
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	w.running = false
}
