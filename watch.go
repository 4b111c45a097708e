// FILE: bootstrap/watch.go
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounce coalesces rapid file changes into one reload.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultMaxWatchers limits subscriber channels to prevent resource
	// exhaustion.
	DefaultMaxWatchers = 100
)

// WatchOptions configures namespace cache watching behavior.
type WatchOptions struct {
	// Debounce duration to avoid rapid reloads
	Debounce time.Duration

	// MaxWatchers limits concurrent subscriber channels
	MaxWatchers int
}

// DefaultWatchOptions returns sensible defaults for cache watching.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:    DefaultDebounce,
		MaxWatchers: DefaultMaxWatchers,
	}
}

// Watcher reloads file-backed namespace providers when their cache files
// change, and notifies subscribers with the namespace that was reloaded.
// Installed composites see new values immediately since value lookups always
// delegate to the live provider.
type Watcher struct {
	opts WatchOptions
	fsw  *fsnotify.Watcher
	log  *slog.Logger

	mu        sync.Mutex
	providers map[string]*FileProvider // keyed by namespace
	subs      map[int64]chan string
	nextSubID int64
	debounce  map[string]*time.Timer
	started   bool
}

// NewWatcher creates a watcher over the namespace cache directory.
func NewWatcher(dir string, opts WatchOptions) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch cache directory '%s': %w", dir, err)
	}

	return &Watcher{
		opts:      opts,
		fsw:       fsw,
		log:       slog.Default(),
		providers: make(map[string]*FileProvider),
		subs:      make(map[int64]chan string),
		debounce:  make(map[string]*time.Timer),
	}, nil
}

// WithLogger sets the logger used for reload failures.
func (w *Watcher) WithLogger(log *slog.Logger) *Watcher {
	if log != nil {
		w.log = log
	}
	return w
}

// Track registers a provider for reload when its cache file changes.
func (w *Watcher) Track(p *FileProvider) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.providers[p.Namespace()] = p
}

// Subscribe returns a channel receiving the namespace of each completed
// reload. Slow subscribers miss notifications rather than blocking reloads.
func (w *Watcher) Subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.subs) >= w.opts.MaxWatchers {
		ch := make(chan string)
		close(ch)
		return ch
	}

	ch := make(chan string, 16)
	w.nextSubID++
	w.subs[w.nextSubID] = ch
	return ch
}

// Start runs the watch loop until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("filesystem watcher error", "error", err)
		}
	}
}

// scheduleReload debounces per-namespace and reloads when the timer fires.
func (w *Watcher) scheduleReload(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for namespace, provider := range w.providers {
		if !provider.matchesFile(path) {
			continue
		}
		namespace := namespace
		provider := provider
		if timer, ok := w.debounce[namespace]; ok {
			timer.Stop()
		}
		w.debounce[namespace] = time.AfterFunc(w.opts.Debounce, func() {
			w.reload(namespace, provider)
		})
	}
}

func (w *Watcher) reload(namespace string, provider *FileProvider) {
	if err := provider.Reload(); err != nil {
		w.log.Warn("failed to reload namespace",
			"namespace", namespace, "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- namespace:
		default:
		}
	}
}

// Close stops watching and closes all subscriber channels.
func (w *Watcher) Close() error {
	err := w.fsw.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
	for namespace, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, namespace)
	}
	return err
}
