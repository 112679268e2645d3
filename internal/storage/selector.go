package storage

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"logvault/internal/constants"
	"logvault/internal/logger"
	"logvault/pkg/errors"
)

// Factory constructs a backend for a validated backend name.
type Factory func(ctx context.Context, name string) (Backend, error)

// DefaultCacheCapacity bounds the selector's instance cache. The set of
// distinct backend names in practice is tiny, so two slots suffice.
const DefaultCacheCapacity = 2

type cacheEntry struct {
	backend Backend
	lastUse int64
}

// Selector maps a requested backend name (or the configured default when the
// request is empty) to a live instance. At most one instance per name exists
// at a time: first-time construction is single-flighted, and the cache is a
// bounded LRU whose evicted instances are closed.
//
// A returned Backend is borrowed for the current operation only. Holding a
// handle across operations races with eviction once more names than the
// cache capacity are in use; resolve again per call instead.
type Selector struct {
	defaultName string
	factory     Factory
	capacity    int
	logger      logger.Logger

	mu    sync.Mutex
	clock int64
	cache map[string]*cacheEntry
	group singleflight.Group
}

func NewSelector(defaultName string, capacity int, factory Factory, log logger.Logger) *Selector {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &Selector{
		defaultName: strings.ToLower(defaultName),
		factory:     factory,
		capacity:    capacity,
		logger:      log,
		cache:       make(map[string]*cacheEntry),
	}
}

func validName(name string) bool {
	switch name {
	case constants.BackendPostgres, constants.BackendElasticsearch, constants.BackendS3:
		return true
	}
	return false
}

// Get resolves name to a backend instance, constructing and caching it on
// first use. An empty name means the configured default. The instance is
// valid for the current operation; see the type comment for lifetime.
func (s *Selector) Get(ctx context.Context, name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = s.defaultName
	}
	if !validName(name) {
		return nil, errors.ErrConfiguration.WithMessage(
			"invalid storage backend %q, valid options: %s, %s, %s",
			name, constants.BackendPostgres, constants.BackendElasticsearch, constants.BackendS3)
	}

	if b, ok := s.lookup(name); ok {
		return b, nil
	}

	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		// A concurrent call may have populated the cache before this
		// flight started.
		if b, ok := s.lookup(name); ok {
			return b, nil
		}

		backend, err := s.factory(ctx, name)
		if err != nil {
			return nil, err
		}
		s.insert(name, backend)
		s.logger.Infow("Storage backend initialized", "backend", name)
		return backend, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Backend), nil
}

func (s *Selector) lookup(name string) (Backend, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[name]
	if !ok {
		return nil, false
	}
	s.clock++
	entry.lastUse = s.clock
	return entry.backend, true
}

func (s *Selector) insert(name string, backend Backend) {
	s.mu.Lock()
	var evicted Backend
	var evictedName string
	if len(s.cache) >= s.capacity {
		oldest := int64(-1)
		for n, e := range s.cache {
			if oldest == -1 || e.lastUse < oldest {
				oldest = e.lastUse
				evictedName = n
			}
		}
		evicted = s.cache[evictedName].backend
		delete(s.cache, evictedName)
	}
	s.clock++
	s.cache[name] = &cacheEntry{backend: backend, lastUse: s.clock}
	s.mu.Unlock()

	if evicted != nil {
		if err := evicted.Close(); err != nil {
			s.logger.Warnw("Failed to close evicted backend", "backend", evictedName, "error", err)
		}
	}
}

// Close shuts down every cached backend. The selector must not be used
// afterwards.
func (s *Selector) Close() error {
	s.mu.Lock()
	backends := make(map[string]Backend, len(s.cache))
	for name, entry := range s.cache {
		backends[name] = entry.backend
	}
	s.cache = make(map[string]*cacheEntry)
	s.mu.Unlock()

	var firstErr error
	for name, b := range backends {
		if err := b.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warnw("Failed to close backend", "backend", name, "error", err)
		}
	}
	return firstErr
}
