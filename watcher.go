package folio

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the bursts of events editors emit on save.
const reloadDebounce = 250 * time.Millisecond

// Watcher reloads the app's content when files under the content directory
// change.
type Watcher struct {
	app     *App
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	// reloaded is signalled after every reload attempt; tests wait on it.
	reloaded chan error
}

// Watch starts watching the content directory until ctx is done or Close is
// called.
func (a *App) Watch(ctx context.Context) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		app:      a,
		watcher:  fw,
		done:     make(chan struct{}),
		reloaded: make(chan error, 1),
	}
	if err := w.addTree(a.Config.ContentDir); err != nil {
		fw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.run(ctx)
	a.Logger.Infof("watching %s for changes", a.Config.ContentDir)
	return w, nil
}

// addTree watches dir and every directory below it; fsnotify is not
// recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// new subdirectories need their own watch
				if err := w.addTree(event.Name); err != nil {
					w.app.Logger.Debugf("watch %s: %v", event.Name, err)
				}
			}
			if !relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			err := w.app.Reload()
			if err != nil {
				w.app.Logger.Errorf("content reload failed, keeping previous catalog: %v", err)
			}
			select {
			case w.reloaded <- err:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.app.Logger.Warnf("file watcher error: %v", err)
		}
	}
}

// relevant filters out chmod-only events and editor swap files.
func relevant(e fsnotify.Event) bool {
	if e.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(e.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false
	}
	return true
}

// Close stops the watcher and waits for it to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
