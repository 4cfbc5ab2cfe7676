// Package cache holds the short-lived search result cache. Entries expire by
// TTL and are invalidated eagerly whenever a property appearing in a cached
// page is reindexed or deleted.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

type entry struct {
	page    result.Page
	propIDs []string
}

// ResultCache is a TTL-bounded LRU of search result pages keyed by request
// fingerprint.
type ResultCache struct {
	mu   sync.Mutex
	lru  *expirable.LRU[string, entry]
	size int

	// byProp maps property ID to the fingerprints of cached pages that
	// contain it. Entries evicted by the LRU leave stale fingerprints here;
	// those are dropped lazily and by periodic compaction in Put.
	byProp map[string]map[string]struct{}
}

// NewResultCache creates a result cache with the given capacity and TTL.
func NewResultCache(size int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		lru:    expirable.NewLRU[string, entry](size, nil, ttl),
		size:   size,
		byProp: make(map[string]map[string]struct{}),
	}
}

// Get returns the cached page for the fingerprint, if still live.
func (c *ResultCache) Get(fingerprint string) (result.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(fingerprint)
	if !ok {
		return result.Page{}, false
	}
	return e.page, true
}

// Put stores a page under the fingerprint and records which properties it
// contains so they can invalidate it later.
func (c *ResultCache) Put(fingerprint string, page result.Page) {
	ids := make([]string, 0, len(page.Properties))
	for _, hit := range page.Properties {
		ids = append(ids, hit.PropertyID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(fingerprint, entry{page: page, propIDs: ids})
	for _, id := range ids {
		keys, ok := c.byProp[id]
		if !ok {
			keys = make(map[string]struct{})
			c.byProp[id] = keys
		}
		keys[fingerprint] = struct{}{}
	}

	if len(c.byProp) > 8*c.size {
		c.compactLocked()
	}
}

// InvalidateProperty drops every cached page containing the property.
func (c *ResultCache) InvalidateProperty(propertyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for fp := range c.byProp[propertyID] {
		c.lru.Remove(fp)
	}
	delete(c.byProp, propertyID)
}

// Purge empties the cache. Used after a full reindex.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.byProp = make(map[string]map[string]struct{})
}

// Len returns the number of live entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// compactLocked rebuilds the reverse index from live entries, dropping
// fingerprints that the LRU already evicted or expired.
func (c *ResultCache) compactLocked() {
	fresh := make(map[string]map[string]struct{})
	for _, fp := range c.lru.Keys() {
		e, ok := c.lru.Peek(fp)
		if !ok {
			continue
		}
		for _, id := range e.propIDs {
			keys, ok := fresh[id]
			if !ok {
				keys = make(map[string]struct{})
				fresh[id] = keys
			}
			keys[fp] = struct{}{}
		}
	}
	c.byProp = fresh
}
