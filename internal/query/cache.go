package query

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/nlstn/go-filters/internal/ast"
)

// filterCache is a bounded cache of parsed filters keyed by the xxhash of
// the query text. Filters are immutable, so a cached *ast.Filter is shared
// between callers.
//
// Eviction strategy: when the cache reaches its capacity the entire map is
// replaced. This is simpler than a true LRU and suits the expected traffic:
// a small number of distinct queries repeated many times.
//
// All methods are safe for concurrent use.
type filterCache struct {
	mu    sync.RWMutex
	items map[uint64]*ast.Filter
	max   int
}

func newFilterCache(size int) *filterCache {
	return &filterCache{
		items: make(map[uint64]*ast.Filter, size),
		max:   size,
	}
}

func (c *filterCache) get(source string) (*ast.Filter, bool) {
	c.mu.RLock()
	f, ok := c.items[xxhash.Sum64String(source)]
	c.mu.RUnlock()
	// a hash collision must not return another query's filter
	if !ok || f.Source != source {
		return nil, false
	}
	return f, true
}

func (c *filterCache) put(f *ast.Filter) {
	key := xxhash.Sum64String(f.Source)
	c.mu.Lock()
	if len(c.items) >= c.max {
		c.items = make(map[uint64]*ast.Filter, c.max)
	}
	c.items[key] = f
	c.mu.Unlock()
}

func (c *filterCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
