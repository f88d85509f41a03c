package config

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = time.Second

// Watcher reloads the configuration file when it changes and passes each
// successfully parsed version to the registered handlers.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	handlers []func(*Config)

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(path string, log *slog.Logger) *Watcher {
	return &Watcher{path: path, debounce: defaultReloadDebounce, log: log}
}

// SetDebounce changes the quiet period before a reload. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// OnReload registers a handler.
func (w *Watcher) OnReload(h func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins watching until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.path); err != nil {
		fsw.Close()
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop(ctx)
	w.log.Info("config: watching", "path", w.path)
	return nil
}

// Stop ends the watch and waits for the loop to exit.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	w.cancel()
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config: watch error", "err", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config: reload failed, keeping previous", "err", err)
		return
	}
	w.mu.Lock()
	hs := append([]func(*Config){}, w.handlers...)
	w.mu.Unlock()
	w.log.Info("config: reloaded", "path", w.path)
	for _, h := range hs {
		h(cfg)
	}
}
