package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher listens for snapshot writes by other processes sharing the same
// state directory and folds them into the in-memory collections. This is the
// cross-context "storage changed" signal: delivery is at-most-once per change
// (rapid rewrites of one file are debounced to the latest content) and events
// for a given collection are applied in order.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	store       *Store
	logger      *zap.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher over the store's state directory.
func NewWatcher(s *Store, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fsw,
		store:       s,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.store.Dir()); err != nil {
		return err
	}
	w.logger.Debug("watching state dir", zap.String("dir", w.store.Dir()))

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.debounceDur / 4)
	defer ticker.Stop()
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
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.note(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.processSettled()
		}
	}
}

// note records the event time for a snapshot file. Editors and our own
// temp-file renames fire several events per logical write; the file is only
// re-read once it has gone quiet for the debounce window, so a burst of
// rewrites settles to the latest content.
func (w *Watcher) note(path string) {
	if _, ok := collectionForFile(path); !ok {
		return
	}
	w.mu.Lock()
	w.debounceMap[path] = time.Now()
	w.mu.Unlock()
}

// processSettled applies every file whose last event is older than the
// debounce window.
func (w *Watcher) processSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.apply(path)
	}
}

func (w *Watcher) apply(path string) {
	c, ok := collectionForFile(path)
	if !ok {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("snapshot read failed", zap.String("collection", string(c)), zap.Error(err))
		return
	}
	if err := w.store.ApplyExternal(c, raw); err != nil {
		w.logger.Warn("external change rejected", zap.String("collection", string(c)), zap.Error(err))
		return
	}
	w.logger.Debug("external change applied", zap.String("collection", string(c)))
}

// collectionForFile maps a snapshot path to its collection key.
func collectionForFile(path string) (Collection, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	c := Collection(strings.TrimSuffix(name, ".json"))
	switch c {
	case CollectionPromoters, CollectionActivities, CollectionNotifications, CollectionSession:
		return c, true
	}
	return "", false
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	_ = w.watcher.Close()
	<-w.doneCh
}
