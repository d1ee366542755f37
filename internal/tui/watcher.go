package tui

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// sourceChangedMsg is sent when the watched source file changes on
// disk.
type sourceChangedMsg struct {
	Path string
}

// SourceWatcher watches one source file for changes. The parent
// directory is watched rather than the file itself so editors that
// save via rename are still observed.
type SourceWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	debounceDur time.Duration
	log         zerolog.Logger
}

// NewSourceWatcher creates a watcher for path. Returns nil when the
// watch cannot be established; the TUI then simply runs without live
// reload.
func NewSourceWatcher(path string, log zerolog.Logger) *SourceWatcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("failed to create fsnotify watcher")
		return nil
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to watch source directory")
		_ = watcher.Close()
		return nil
	}

	return &SourceWatcher{
		watcher:     watcher,
		path:        path,
		debounceDur: 150 * time.Millisecond,
		log:         log.With().Str("component", "source-watcher").Logger(),
	}
}

// Start returns a tea.Cmd that blocks until the source file changes,
// then returns a sourceChangedMsg. The caller must re-invoke Start
// after processing the message to continue watching.
func (w *SourceWatcher) Start() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}

				w.log.Debug().Str("op", ev.Op.String()).Msg("source changed")

				// Debounce: let a burst of writes settle, draining
				// queued events until the timer fires.
				debounce := time.NewTimer(w.debounceDur)
			drain:
				for {
					select {
					case <-w.watcher.Events:
						if !debounce.Stop() {
							<-debounce.C
						}
						debounce.Reset(w.debounceDur)
					case <-debounce.C:
						break drain
					}
				}

				return sourceChangedMsg{Path: w.path}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				w.log.Error().Err(err).Msg("watcher error")
			}
		}
	}
}

// Close stops the watcher.
func (w *SourceWatcher) Close() error {
	return w.watcher.Close()
}
