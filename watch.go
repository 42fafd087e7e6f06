package inkpress

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 300 * time.Millisecond

// Watcher watches content and asset directories and invokes onChange after
// file events settle. Rapid saves from editors are debounced into a single
// rebuild.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func()
}

// NewWatcher creates a Watcher over paths. Directories are watched
// recursively, plain files (site.yaml) are watched directly. Paths that do
// not exist yet are skipped.
func NewWatcher(paths []string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, onChange: onChange}
	for _, p := range paths {
		if err := w.addRecursive(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(p string) error {
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.fsw.Add(p)
	}
	return filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Start begins dispatching events. It is non-blocking; cancel ctx to stop.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// New subdirectories need to be picked up to keep the watch
			// recursive.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				// Drain a tick that raced this event, or Reset would let
				// the stale tick fire immediately and the real one go
				// unread.
				if !timer.Stop() {
					select {
					case <-fire:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
