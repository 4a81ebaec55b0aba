package prefs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads preferences when the file changes and re-registers the
// keymap. It watches the parent directory since editors often replace the
// file rather than write it in place.
type Watcher struct {
	loader   *Loader
	keymap   *Keymap
	onReload func(Preferences)

	targetPath string
	parentPath string
	watcher    *fsnotify.Watcher
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	running    bool
	debounce   time.Duration
	log        zerolog.Logger
}

// NewWatcher creates a watcher for the loader's file. keymap may be nil.
func NewWatcher(loader *Loader, keymap *Keymap, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	path := filepath.Clean(loader.Path())
	return &Watcher{
		loader:     loader,
		keymap:     keymap,
		targetPath: path,
		parentPath: filepath.Dir(path),
		watcher:    fsw,
		ctx:        ctx,
		cancel:     cancel,
		debounce:   100 * time.Millisecond,
		log:        log,
	}, nil
}

// OnReload sets a callback run after each successful reload. Set it before
// Start.
func (w *Watcher) OnReload(fn func(Preferences)) {
	w.onReload = fn
}

// Start begins watching. It may be retried after an error.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if _, err := os.Stat(w.parentPath); err != nil {
		return err
	}
	if err := w.watcher.Add(w.parentPath); err != nil {
		return err
	}
	w.running = true
	go w.watchLoop()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	var timer *time.Timer
	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.targetPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("prefs watcher error")
		}
	}
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}
	p, err := w.loader.Load()
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.targetPath).Msg("prefs reload failed")
		return
	}
	if w.keymap != nil {
		w.keymap.Reload(p)
	}
	w.log.Info().Str("path", w.targetPath).Str("chord", p.Chord().String()).Msg("prefs reloaded")
	if w.onReload != nil {
		w.onReload(p)
	}
}
