package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nextadvisor/internal/logging"
)

// PublishFunc receives each successfully validated catalog revision.
type PublishFunc func(*Catalog)

// Watcher watches a catalog file or directory, reloads it after writes
// settle, and publishes valid revisions. An invalid revision is logged and
// counted; whatever was published before stays live.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	target      string // catalog file or directory
	watchDir    string // directory handed to fsnotify
	isDir       bool
	publish     PublishFunc
	pending     time.Time // zero when nothing is waiting
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks reload activity.
type WatcherStats struct {
	Events        int
	Reloads       int
	Rejected      int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastError     string
	LastDigest    string
}

// NewWatcher creates a watcher for target (a catalog file or a directory of
// catalog files). debounce <= 0 uses 250ms.
func NewWatcher(target string, debounce time.Duration, publish PublishFunc) (*Watcher, error) {
	if publish == nil {
		return nil, fmt.Errorf("catalog watcher: publish func is required")
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	w := &Watcher{
		watcher:     fw,
		target:      abs,
		isDir:       info.IsDir(),
		publish:     publish,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	// Editors often replace files by rename, which drops a watch on the file
	// itself, so a single file is watched through its directory.
	w.watchDir = abs
	if !w.isDir {
		w.watchDir = filepath.Dir(abs)
	}
	return w, nil
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.watcher.Add(w.watchDir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("catalog watcher: watch %s: %w", w.watchDir, err)
	}
	w.running = true
	w.mu.Unlock()

	logging.Watcher("watching catalog %s", w.target)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatcher).Error("error closing watcher: %v", err)
	}
	logging.Watcher("catalog watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatcher).Error("fsnotify error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.stats.LastError = err.Error()
			w.mu.Unlock()
		case <-debounceTicker.C:
			w.processDebounced()
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	if w.isDir {
		return filepath.Dir(name) == w.target && IsCatalogFile(name)
	}
	return filepath.Clean(name) == w.target
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.relevant(event.Name) {
		return
	}
	logging.Get(logging.CategoryWatcher).Debug("%s event for %s", event.Op, event.Name)

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.Reload()
}

// Reload loads the target now and publishes it if it is valid.
func (w *Watcher) Reload() (*Catalog, error) {
	c, err := LoadPath(w.target)
	if err != nil {
		logging.Get(logging.CategoryWatcher).Warn("rejected catalog revision, keeping previous snapshot: %v", err)
		w.mu.Lock()
		w.stats.Rejected++
		w.stats.LastError = err.Error()
		w.mu.Unlock()
		return nil, err
	}

	w.mu.Lock()
	w.stats.Reloads++
	w.stats.LastDigest = c.Digest()
	w.mu.Unlock()

	logging.Watcher("published catalog version=%q digest=%s", c.Version(), shortDigest(c.Digest()))
	w.publish(c)
	return c, nil
}

// Stats returns a copy of the current statistics.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
