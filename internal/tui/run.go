package tui

import (
	"fmt"
	"io"
	"os"

	"kilocam/internal/config"
	"kilocam/internal/log"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the console on the alternate screen and blocks until the
// operator quits. Logs go to cfg.LogFile (or are discarded) so they do not
// tear the screen. When configPath is set, edits to it are applied live.
func Run(cfg *config.Config, configPath string) error {
	restore, err := redirectLogs(cfg.LogFile)
	if err != nil {
		return err
	}
	defer restore()

	m := New(cfg)
	if configPath != "" {
		w, err := config.NewWatcher(configPath)
		if err != nil {
			log.Warnf("config changes will not be picked up: %v", err)
		} else if err := w.Start(); err == nil {
			defer w.Stop()
			m.WatchConfig(w.Changes())
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func redirectLogs(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
