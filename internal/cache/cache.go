// internal/cache/cache.go

// Package cache holds recently assembled profile records so repeated
// requests for the same profile do not cost a full browser round trip.
package cache

import (
	"container/list"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/config"
)

type entry struct {
	key       string
	record    *schemas.ProfileRecord
	expiresAt time.Time
	elem      *list.Element
}

// Store is a bounded TTL cache keyed by profile id. When full, the least
// recently used entry is evicted. Expired entries are dropped lazily on
// read.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // front = most recently used

	ttl        time.Duration
	maxEntries int
	log        *zap.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

// New builds a store from the cache configuration.
func New(cfg config.CacheConfig, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		entries:    make(map[string]*entry),
		order:      list.New(),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		log:        log.Named("cache"),
		now:        time.Now,
	}
}

// Get returns the cached record for key, or false when absent or expired.
func (s *Store) Get(key string) (*schemas.ProfileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.removeLocked(e)
		s.log.Debug("entry expired", zap.String("profile_id", key))
		return nil, false
	}
	s.order.MoveToFront(e.elem)
	return e.record, true
}

// Set stores a record under key, evicting the least recently used entry if
// the store is at capacity.
func (s *Store) Set(key string, record *schemas.ProfileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.record = record
		e.expiresAt = s.now().Add(s.ttl)
		s.order.MoveToFront(e.elem)
		return
	}

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		if back := s.order.Back(); back != nil {
			evicted := back.Value.(*entry)
			s.removeLocked(evicted)
			s.log.Debug("entry evicted", zap.String("profile_id", evicted.key))
		}
	}

	e := &entry{key: key, record: record, expiresAt: s.now().Add(s.ttl)}
	e.elem = s.order.PushFront(e)
	s.entries[key] = e
}

// Delete removes key if present and reports whether an entry was dropped.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if ok {
		s.removeLocked(e)
	}
	return ok
}

// Clear drops every entry and reports how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string]*entry)
	s.order.Init()
	s.log.Info("cache cleared", zap.Int("dropped", n))
	return n
}

// Len reports the number of live entries, expired ones included until their
// next read.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) removeLocked(e *entry) {
	s.order.Remove(e.elem)
	delete(s.entries, e.key)
}
