package layout

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/javiermolinar/calgrid/internal/item"
)

const defaultCacheSize = 16

type cacheKey struct {
	view        View
	fields      item.FieldPair
	weekStart   int
	location    string
	minDuration int
	idField     string
	fingerprint uint64
}

// Cache memoizes Prepare on its inputs so that re-preparing an unchanged
// collection returns the same Layout, maps included. Callers must treat
// returned layouts as read-only. A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	limit   int
	entries map[cacheKey]Layout
	order   []cacheKey // oldest first

	hits   int
	misses int
}

// NewCache creates a cache holding at most limit layouts.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = defaultCacheSize
	}
	return &Cache{
		limit:   limit,
		entries: make(map[cacheKey]Layout),
	}
}

// Prepare returns the cached layout for these inputs, preparing it on a
// miss. hit reports whether the layout came from the cache. Items that
// cannot be fingerprinted bypass the cache.
func (c *Cache) Prepare(view View, items []item.Item, opts Options) (l Layout, hit bool, err error) {
	if err := opts.Validate(); err != nil {
		return Layout{}, false, err
	}

	key, ok := makeCacheKey(view, items, opts.withDefaults())
	if !ok {
		l, err = Prepare(view, items, opts)
		return l, false, err
	}

	c.mu.Lock()
	if cached, found := c.entries[key]; found {
		c.hits++
		c.mu.Unlock()
		return cached, true, nil
	}
	c.mu.Unlock()

	l, err = Prepare(view, items, opts)
	if err != nil {
		return Layout{}, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	if cached, found := c.entries[key]; found {
		// Another caller prepared the same inputs first.
		return cached, true, nil
	}
	c.entries[key] = l
	c.order = append(c.order, key)
	if len(c.order) > c.limit {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return l, false, nil
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func makeCacheKey(view View, items []item.Item, opts Options) (cacheKey, bool) {
	fp, err := Fingerprint(items)
	if err != nil {
		return cacheKey{}, false
	}
	return cacheKey{
		view:        view,
		fields:      opts.Fields,
		weekStart:   int(opts.WeekStartsOn),
		location:    opts.Location.String(),
		minDuration: opts.MinDuration,
		idField:     opts.IDField,
		fingerprint: fp,
	}, true
}

// Fingerprint hashes the JSON encoding of items. Map keys are encoded in
// sorted order, so equal collections hash equally.
func Fingerprint(items []item.Item) (uint64, error) {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	for i, it := range items {
		if err := enc.Encode(it); err != nil {
			return 0, fmt.Errorf("fingerprinting item %d: %w", i, err)
		}
	}
	return h.Sum64(), nil
}
