package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/logs"
)

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 300 * time.Millisecond

// ReloadFunc receives each successfully reloaded configuration.
type ReloadFunc func(*Config)

// Watcher reloads a config file when it changes.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
	watcher  *fsnotify.Watcher
	logger   *log.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path. The parent directory is watched so that editors
// which replace the file by rename are still seen.
func NewWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onReload: onReload,
		watcher:  fw,
		logger:   logs.NewLogger("config"),
	}, nil
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("watch %s: %v", w.path, err)
		}
	}
}

// Watch is Run for a fresh watcher. It returns when ctx is done.
func Watch(ctx context.Context, path string, onReload ReloadFunc) error {
	w, err := NewWatcher(path, DefaultDebounce, onReload)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warnf("reload failed, keeping current config: %v", err)
		return
	}
	w.logger.Infof("reloaded %s", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.watcher.Close()
}
