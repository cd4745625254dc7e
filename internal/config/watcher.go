package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/korigod/gitlens/internal/debounce"
)

// watchSettleDelay coalesces the burst of filesystem events editors emit
// when saving a file (truncate + write, or rename-over).
const watchSettleDelay = 100 * time.Millisecond

// Watcher reloads a configuration file into a Store when it changes on
// disk.
type Watcher struct {
	store *Store
	path  string

	fsw    *fsnotify.Watcher
	reload *debounce.Deferred[string]
	done   chan struct{}

	// OnError, if set, receives reload and watch failures.
	OnError func(error)
}

// NewWatcher creates a watcher for the configuration file at path.
// The initial load is the caller's responsibility (see LoadFile).
func NewWatcher(store *Store, path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, and a watch on
	// the old inode would go stale.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		store: store,
		path:  path,
		fsw:   fsw,
		done:  make(chan struct{}),
	}
	w.reload = debounce.NewDeferred(watchSettleDelay, w.doReload)

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.reload.Schedule(ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) doReload(string) {
	values, err := LoadFile(w.path)
	if err != nil {
		w.reportError(err)
		return
	}
	w.store.Load(values, false)
}

func (w *Watcher) reportError(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	w.reload.Cancel()
	return w.fsw.Close()
}
