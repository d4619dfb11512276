package engine

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/clarify/internal/model"
)

// CacheConfig configures the result cache.
type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

// DefaultCacheConfig returns the default configuration: 100 entries
// with a 5-minute TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 100,
	}
}

// cacheEntry is one cached rewrite with its insertion timestamp.
type cacheEntry struct {
	timestamp time.Time
	key       string
	result    model.RewriteResult
}

// ResultCache is a TTL + LRU cache keyed by normalized
// (prompt, context) pairs, avoiding repeat provider calls. Expiry is
// lazy: expired entries are deleted when read, or in bulk via Prune.
type ResultCache struct {
	now     func() time.Time
	entries map[string]*list.Element
	order   *list.List
	config  CacheConfig
	mu      sync.Mutex
}

// NewResultCache creates a result cache, applying defaults for any
// zero-valued configuration field.
func NewResultCache(cfg CacheConfig) *ResultCache {
	defaults := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaults.MaxEntries
	}
	return &ResultCache{
		config:  cfg,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// cacheKey normalizes a (prompt, context) pair.
func cacheKey(prompt, contextBlock string) string {
	return strings.ToLower(strings.TrimSpace(prompt)) + "|" + strings.ToLower(strings.TrimSpace(contextBlock))
}

// Get returns the cached rewrite for a pair, if present and fresh. A
// hit becomes the most-recently-used entry; an expired entry is
// deleted on read.
func (c *ResultCache) Get(prompt, contextBlock string) (model.RewriteResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[cacheKey(prompt, contextBlock)]
	if !ok {
		return model.RewriteResult{}, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.now().Sub(entry.timestamp) > c.config.TTL {
		c.remove(elem)
		return model.RewriteResult{}, false
	}

	c.order.MoveToFront(elem)
	return entry.result, true
}

// Set stores a rewrite for a pair. When full and the key is new, the
// single least-recently-used entry is evicted first.
func (c *ResultCache) Set(prompt, contextBlock string, result model.RewriteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(prompt, contextBlock)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.result = result
		entry.timestamp = c.now()
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.config.MaxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	elem := c.order.PushFront(&cacheEntry{
		key:       key,
		result:    result,
		timestamp: c.now(),
	})
	c.entries[key] = elem
}

// Prune evicts all expired entries in one pass. Housekeeping only;
// correctness never depends on it.
func (c *ResultCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	now := c.now()
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.Sub(elem.Value.(*cacheEntry).timestamp) > c.config.TTL {
			c.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// Len returns the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset clears the cache.
func (c *ResultCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// remove deletes an element. Callers must hold mu.
func (c *ResultCache) remove(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
