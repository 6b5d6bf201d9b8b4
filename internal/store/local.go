// Package store is the process-wide cache of promoters, activities,
// notifications, and session identity. Each collection is persisted as an
// independently keyed JSON snapshot in a state directory; every mutation is
// written through before the call returns, so a crash loses at most the
// in-flight change. External writers (another fieldops process, the Redis
// broadcaster) are absorbed by full-collection replacement, last writer wins.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"fieldops/internal/types"
)

// Collection names the four persisted entries.
type Collection string

const (
	CollectionPromoters     Collection = "promoters"
	CollectionActivities    Collection = "activities"
	CollectionNotifications Collection = "notifications"
	CollectionSession       Collection = "session"
)

// maxNotifications caps the notification collection at the most recent
// entries so the snapshot cannot grow without bound.
const maxNotifications = 500

// Defaults is the dataset used for any collection whose snapshot is absent or
// corrupt at startup.
type Defaults struct {
	Promoters     []types.Promoter
	Activities    []types.Activity
	Notifications []types.Notification
}

// Store owns the in-memory copies of all four collections. It is constructed
// once at startup and passed by reference to every consumer.
type Store struct {
	mu     sync.RWMutex
	dir    string
	logger *zap.Logger

	promoters     []types.Promoter
	activities    []types.Activity
	notifications []types.Notification
	session       types.Session

	subscribers []func(Collection)
	commitHooks []func(Collection, []byte)
}

// Open loads every collection from dir, falling back to defaults for any
// snapshot that is missing or fails to decode. Corruption never fails startup.
func Open(dir string, defaults Defaults, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create state dir: %w", err)
	}

	s := &Store{dir: dir, logger: logger}
	s.promoters = loadSnapshot(s, CollectionPromoters, defaults.Promoters)
	s.activities = loadSnapshot(s, CollectionActivities, defaults.Activities)
	s.notifications = loadSnapshot(s, CollectionNotifications, defaults.Notifications)
	s.session = loadSnapshot(s, CollectionSession, types.Session{})
	return s, nil
}

func loadSnapshot[T any](s *Store, c Collection, fallback T) T {
	data, err := os.ReadFile(s.path(c))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("snapshot unreadable, using defaults",
				zap.String("collection", string(c)), zap.Error(err))
		}
		return fallback
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("snapshot corrupt, using defaults",
			zap.String("collection", string(c)), zap.Error(err))
		return fallback
	}
	return v
}

func (s *Store) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

// Dir returns the state directory the snapshots live in.
func (s *Store) Dir() string { return s.dir }

// =============================================================================
// READS
// =============================================================================

// Promoters returns a copy of the promoter collection.
func (s *Store) Promoters() []types.Promoter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Promoter(nil), s.promoters...)
}

// Activities returns a copy of the activity collection.
func (s *Store) Activities() []types.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Activity(nil), s.activities...)
}

// Notifications returns a copy of the notification collection.
func (s *Store) Notifications() []types.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Notification(nil), s.notifications...)
}

// Session returns the persisted session identity.
func (s *Store) Session() types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// =============================================================================
// WRITES (write-through)
// =============================================================================

// UpdatePromoters applies fn to the promoter collection and persists the
// result before returning.
func (s *Store) UpdatePromoters(fn func([]types.Promoter) []types.Promoter) error {
	s.mu.Lock()
	s.promoters = fn(append([]types.Promoter(nil), s.promoters...))
	raw, err := s.persistLocked(CollectionPromoters, s.promoters)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	subs := s.commitLocked(CollectionPromoters, raw)
	s.mu.Unlock()
	for _, notify := range subs {
		notify(CollectionPromoters)
	}
	return nil
}

// UpdateActivities applies fn to the activity collection and persists the
// result before returning.
func (s *Store) UpdateActivities(fn func([]types.Activity) []types.Activity) error {
	s.mu.Lock()
	s.activities = fn(append([]types.Activity(nil), s.activities...))
	raw, err := s.persistLocked(CollectionActivities, s.activities)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	subs := s.commitLocked(CollectionActivities, raw)
	s.mu.Unlock()
	for _, notify := range subs {
		notify(CollectionActivities)
	}
	return nil
}

// ReplaceActivities swaps in a full activity collection, the refresh path's
// ground-truth replacement.
func (s *Store) ReplaceActivities(activities []types.Activity) error {
	return s.UpdateActivities(func([]types.Activity) []types.Activity {
		return append([]types.Activity(nil), activities...)
	})
}

// AppendNotification adds one notification, evicting the oldest entries past
// the cap. Notifications are never mutated after this.
func (s *Store) AppendNotification(n types.Notification) error {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	raw, err := s.persistLocked(CollectionNotifications, s.notifications)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	subs := s.commitLocked(CollectionNotifications, raw)
	s.mu.Unlock()
	for _, notify := range subs {
		notify(CollectionNotifications)
	}
	return nil
}

// SetSession persists a login.
func (s *Store) SetSession(session types.Session) error {
	s.mu.Lock()
	s.session = session
	raw, err := s.persistLocked(CollectionSession, s.session)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	subs := s.commitLocked(CollectionSession, raw)
	s.mu.Unlock()
	for _, notify := range subs {
		notify(CollectionSession)
	}
	return nil
}

// ClearSession persists a logout.
func (s *Store) ClearSession() error {
	return s.SetSession(types.Session{})
}

// persistLocked serializes v and writes the collection snapshot via a temp
// file rename. Callers hold s.mu.
func (s *Store) persistLocked(c Collection, v any) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", c, err)
	}
	tmp := s.path(c) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return nil, fmt.Errorf("store: write %s: %w", c, err)
	}
	if err := os.Rename(tmp, s.path(c)); err != nil {
		return nil, fmt.Errorf("store: commit %s: %w", c, err)
	}
	return raw, nil
}

// =============================================================================
// CHANGE PROPAGATION
// =============================================================================

// Subscribe registers fn to run after any collection changes, whether from a
// local mutation or an external replacement.
func (s *Store) Subscribe(fn func(Collection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SubscribeCommits registers fn to run after local mutations only, with the
// serialized snapshot. The Redis broadcaster uses this to relay changes
// without echoing external ones back out. Hooks run while the store lock is
// held, so they see snapshots in persistence order; they must not call back
// into the store.
func (s *Store) SubscribeCommits(fn func(Collection, []byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitHooks = append(s.commitHooks, fn)
}

// commitLocked runs the commit hooks for one persisted snapshot and returns a
// copy of the change subscribers to notify after unlock. Callers hold s.mu.
func (s *Store) commitLocked(c Collection, raw []byte) []func(Collection) {
	for _, fn := range s.commitHooks {
		fn(c, raw)
	}
	subs := make([]func(Collection), len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

// ApplyExternal replaces one in-memory collection with a snapshot produced by
// another writer. The raw bytes are decoded and swapped in wholesale; there is
// no field-level merge. Replaying the store's own snapshot is a no-op, which
// keeps watcher echoes of our own writes from re-firing subscribers.
func (s *Store) ApplyExternal(c Collection, raw []byte) error {
	s.mu.Lock()
	var changed bool
	var err error
	switch c {
	case CollectionPromoters:
		changed, err = replaceDecoded(raw, &s.promoters)
	case CollectionActivities:
		changed, err = replaceDecoded(raw, &s.activities)
	case CollectionNotifications:
		changed, err = replaceDecoded(raw, &s.notifications)
	case CollectionSession:
		changed, err = replaceDecoded(raw, &s.session)
	default:
		err = fmt.Errorf("unknown collection")
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("store: apply external %s: %w", c, err)
	}
	if changed {
		s.mu.RLock()
		subs := make([]func(Collection), len(s.subscribers))
		copy(subs, s.subscribers)
		s.mu.RUnlock()
		for _, fn := range subs {
			fn(c)
		}
	}
	return nil
}

func replaceDecoded[T any](raw []byte, dst *T) (bool, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	current, err := json.Marshal(*dst)
	if err != nil {
		return false, err
	}
	incoming, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	if bytes.Equal(current, incoming) {
		return false, nil
	}
	*dst = v
	return true, nil
}

// Close flushes every snapshot. The store must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, flush := range []func() ([]byte, error){
		func() ([]byte, error) { return s.persistLocked(CollectionPromoters, s.promoters) },
		func() ([]byte, error) { return s.persistLocked(CollectionActivities, s.activities) },
		func() ([]byte, error) { return s.persistLocked(CollectionNotifications, s.notifications) },
		func() ([]byte, error) { return s.persistLocked(CollectionSession, s.session) },
	} {
		if _, err := flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
