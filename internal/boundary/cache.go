package boundary

import (
	"context"
	"sync"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
)

// CachedSource wraps a BoundarySource with an in-memory LRU cache. A build
// renders several slides against the same boundary set; the cache keeps the
// provider traffic at one fetch per kind.
type CachedSource struct {
	inner   domain.BoundarySource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a boundary source.
func NewCachedSource(inner domain.BoundarySource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Boundaries returns the cached boundary set for kind, fetching on miss.
func (c *CachedSource) Boundaries(ctx context.Context, kind domain.BoundaryKind) ([]domain.BoundaryPolygon, error) {
	key := string(kind)
	if boundaries, ok := c.cache.get(key); ok {
		c.metrics.BoundaryCache.WithLabelValues("hit").Inc()
		return boundaries, nil
	}
	c.metrics.BoundaryCache.WithLabelValues("miss").Inc()

	boundaries, err := c.inner.Boundaries(ctx, kind)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so transient provider hiccups can be retried.
	if len(boundaries) > 0 {
		c.cache.put(key, boundaries)
	}
	return boundaries, nil
}

// lruCache is a simple thread-safe LRU cache for boundary sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.BoundaryPolygon
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.BoundaryPolygon, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.BoundaryPolygon) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
