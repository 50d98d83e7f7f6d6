package registry

import (
	"context"
	"sync"
	"time"

	"github.com/pfrederiksen/odpc-checker/internal/logger"
)

// DefaultCacheTTL is how long a fetched dataset is reused
const DefaultCacheTTL = time.Hour

// Cache holds at most one dataset for a bounded time
type Cache struct {
	mu       sync.Mutex
	entry    *Dataset
	cachedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates an empty cache; a non-positive ttl uses DefaultCacheTTL
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// TTL returns the cache window
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached dataset, or nil if empty or expired.
// An expired entry is dropped.
func (c *Cache) Get() *Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return nil
	}
	if c.now().Sub(c.cachedAt) > c.ttl {
		c.entry = nil
		c.cachedAt = time.Time{}
		return nil
	}
	return c.entry
}

// Set stores d as fetched now
func (c *Cache) Set(d *Dataset) {
	c.SetAt(d, c.now())
}

// SetAt stores d with an explicit cache time, so a dataset restored from disk
// expires relative to when it was originally fetched.
func (c *Cache) SetAt(d *Dataset, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = d
	c.cachedAt = at
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	c.cachedAt = time.Time{}
}

// Age reports how old the cached entry is; ok is false when the cache is empty
func (c *Cache) Age() (age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return 0, false
	}
	return c.now().Sub(c.cachedAt), true
}

// Fresh reports whether a dataset fetched at t is still within the window
func (c *Cache) Fresh(t time.Time) bool {
	return !t.IsZero() && c.now().Sub(t) <= c.ttl
}

// SnapshotStore persists the last fetched dataset between runs
type SnapshotStore interface {
	LoadDataset() (*Dataset, error)
	SaveDataset(d *Dataset) error
}

// CachedSource serves a Source through a Cache and an optional SnapshotStore.
// Failed fetches are never cached.
type CachedSource struct {
	source Source
	cache  *Cache
	store  SnapshotStore
	log    *logger.Logger
}

// NewCachedSource wraps source with cache. store may be nil.
func NewCachedSource(source Source, cache *Cache, store SnapshotStore) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		store:  store,
		log:    logger.Default(),
	}
}

// Fetch returns the cached dataset when fresh, otherwise fetches and caches a new one
func (s *CachedSource) Fetch(ctx context.Context) (*Dataset, error) {
	if d := s.cache.Get(); d != nil {
		logger.IncrCounter("cache.hit")
		s.log.Debug("Using cached register", logger.Fields{"rows": d.Table.Len()})
		return d, nil
	}

	if d := s.loadSnapshot(); d != nil {
		logger.IncrCounter("cache.snapshot_hit")
		s.cache.SetAt(d, d.FetchedAt)
		return d, nil
	}

	logger.IncrCounter("cache.miss")
	d, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(d)
	if s.store != nil {
		if err := s.store.SaveDataset(d); err != nil {
			s.log.Warn("Could not save register snapshot", logger.Fields{"error": err.Error()})
		}
	}

	return d, nil
}

func (s *CachedSource) loadSnapshot() *Dataset {
	if s.store == nil {
		return nil
	}

	d, err := s.store.LoadDataset()
	if err != nil {
		s.log.Warn("Could not load register snapshot", logger.Fields{"error": err.Error()})
		return nil
	}
	if d == nil || d.Table == nil || d.Table.Len() == 0 || !s.cache.Fresh(d.FetchedAt) {
		return nil
	}

	s.log.Debug("Using register snapshot", logger.Fields{
		"rows":       d.Table.Len(),
		"fetched_at": d.FetchedAt.Format(time.RFC3339),
	})
	return d
}
