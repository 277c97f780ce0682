package interaction

import (
	"encoding/json"
	"sync"
	"time"
)

// cacheEntry pairs a stored result with its expiry deadline.
type cacheEntry struct {
	tool      string
	result    *ToolResult
	expiresAt time.Time
}

// Cache is a TTL result cache keyed on a deterministic serialization of
// (tool name, parameters). Entries expire lazily on access; there is no
// background sweeper and no size bound.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewCache creates a cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// CacheKey builds the deterministic key for a (name, params) pair.
// encoding/json sorts map keys, so equal parameter maps always serialize
// identically.
func CacheKey(name string, params map[string]any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte("{}")
	}
	return name + "\n" + string(raw)
}

// Get returns the live entry for key, or nil.
func (c *Cache) Get(key string) *ToolResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return e.result
}

// Put stores a result under key. A zero ttl uses the cache default.
func (c *Cache) Put(key, tool string, result *ToolResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		tool:      tool,
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
}

// ResultsFor returns every live cached result produced by a tool, across
// all parameter variants.
func (c *Cache) ResultsFor(tool string) []*ToolResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var out []*ToolResult
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			continue
		}
		if e.tool == tool {
			out = append(out, e.result)
		}
	}
	return out
}

// ClearAll drops every entry.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// ClearTool drops every entry produced by one tool.
func (c *Cache) ClearTool(tool string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.tool == tool {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
