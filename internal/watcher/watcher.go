// Package watcher provides config-file watching with fsnotify and debouncing,
// driving live ANN reconfiguration without a server restart.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// ConfigWatcher watches a single config file and invokes a callback when it
// changes. Editors typically write via rename-and-replace, so the parent
// directory is watched and events are filtered to the target file.
type ConfigWatcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// Option configures a ConfigWatcher.
type Option func(*ConfigWatcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *ConfigWatcher) { w.logger = l }
}

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *ConfigWatcher) { w.debounce = d }
}

// NewConfigWatcher creates a watcher for path. onChange is called with the
// path after changes settle.
func NewConfigWatcher(path string, onChange func(path string), opts ...Option) *ConfigWatcher {
	w := &ConfigWatcher{
		path:     path,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	w.logger.Debug("watching config", zap.String("path", w.path))

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				w.scheduleReload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return nil
}

// scheduleReload (re)arms the debounce timer so a burst of writes yields one
// callback.
func (w *ConfigWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Debug("config changed", zap.String("path", w.path))
		w.onChange(w.path)
	})
}

// Stop stops the watcher. Safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}
