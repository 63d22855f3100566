package poolconfig

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Defaults file on write and hands the new document to a
// callback, debounced so a burst of writes (as produced by most editors and
// config-management tools) triggers one reload instead of several.
type Watcher struct {
	path     string
	callback func(*Defaults)
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	stopCh chan struct{}
}

// Watch starts watching path for changes, invoking callback with the
// reparsed Defaults after each debounced write. Call Close to stop.
func Watch(path string, callback func(*Defaults), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		callback: callback,
		logger:   logger,
		watcher:  fw,
		stopCh:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	var debounce *time.Timer
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(300*time.Millisecond, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("poolconfig: watcher error", "err", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := Load(w.path)
	if err != nil {
		w.logger.Warn("poolconfig: reload failed, keeping previous config", "path", w.path, "err", err)
		return
	}
	w.callback(d)
}

// Close stops the watcher. Idempotent.
func (w *Watcher) Close() error {
	select {
	case <-w.stopCh:
		return nil
	default:
		close(w.stopCh)
	}
	return w.watcher.Close()
}
