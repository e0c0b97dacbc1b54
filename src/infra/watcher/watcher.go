// Package watcher triggers syncs on source-tree changes between
// scheduled runs.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent signals that the watched tree changed and settled.
type ChangeEvent struct {
	Root      string
	Timestamp time.Time
}

// Watcher monitors a directory tree and emits one debounced ChangeEvent
// per burst of filesystem activity. Subdirectories are added to the
// watch as they appear.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchRoot     string
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- ChangeEvent
}

// NewWatcher creates a new file system watcher.
func NewWatcher(eventChan chan<- ChangeEvent, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   fsWatcher,
		debounce:  debounce,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the tree rooted at watchRoot.
func (w *Watcher) Start(ctx context.Context, watchRoot string) error {
	w.watchRoot = watchRoot
	slog.Info("Starting source watcher", "path", watchRoot, "debounce", w.debounce.String())

	// Watch the root and every existing subdirectory; fsnotify watches
	// are not recursive.
	err := filepath.WalkDir(watchRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	slog.Info("Source watcher started")
	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping source watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	slog.Debug("Source change detected", "path", event.Name, "op", event.Op.String())

	// Start or reset the debounce timer so one burst of writes becomes
	// one sync.
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.emitDebouncedEvent)
}

// emitDebouncedEvent emits a change event after the debounce period
func (w *Watcher) emitDebouncedEvent() {
	event := ChangeEvent{
		Root:      w.watchRoot,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Info("Source changed, sync requested", "path", event.Root)
	default:
		slog.Warn("Event channel full, dropping change event", "path", event.Root)
	}
}
