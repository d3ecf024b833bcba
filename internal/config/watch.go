package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 750 * time.Millisecond

// Watcher hot-reloads a Config from its source file on change, debounced so
// that editors writing via a temp-file-then-rename don't trigger a reload
// storm. Grounded on the rest-of-pack's fsnotify watcher idiom
// (cklxx-elephant.ai's RuntimeConfigWatcher: watch the containing
// directory rather than the file directly, since editors often replace
// rather than truncate-write), feeding Config.ReplaceFrom on each change.
type Watcher struct {
	path   string
	target *Config
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewWatcher constructs a Watcher that reloads path into target on change.
// target must already be populated (e.g. via Load) before Start is called.
func NewWatcher(path string, target *Config, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:   filepath.Clean(path),
		target: target,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins watching the config file's directory. Stop via ctx
// cancellation or an explicit call to Stop.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	go w.loop()
	if ctx != nil {
		go func() {
			<-ctx.Done()
			w.Stop()
		}()
	}
	return nil
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.stopCh:
		return
	default:
		close(w.stopCh)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, func() {
		fresh, err := Load(w.path)
		if err != nil {
			w.logger.Warn("config reload failed", "path", w.path, "error", err)
			return
		}
		w.target.ReplaceFrom(fresh)
		w.logger.Info("config reloaded", "path", w.path, "hash", w.target.Hash())
	})
}
