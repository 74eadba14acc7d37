package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mcpgate/mcpgate/internal/core/logger"
)

// Watcher reloads the configuration file when it changes on disk and
// hands the new configuration to a callback. A rewrite that fails to
// parse or validate keeps the previous configuration in effect.
type Watcher struct {
	path     string
	onChange func(*Config)
	log      logger.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path.
// onChange is called from the watcher goroutine with each successfully
// loaded configuration.
func NewWatcher(path string, log logger.Logger, onChange func(*Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file: editors and config
	// management tools typically replace the file by rename, which
	// drops a watch on the file itself.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		log:      log,
		watcher:  fsWatcher,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isConfigEvent(event) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous config",
					"path", w.path,
					"error", err)
				continue
			}
			w.log.Info("config reloaded", "path", w.path)
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create)
}
