// Package cache provides a small in-memory TTL cache for provider metadata.
//
// Player and league payloads are never cached; every stats request re-fetches
// from the provider. The cache only holds slow-moving lookups such as the
// current game key, which changes once per season.
package cache

import (
	"sync"
	"time"
)

const (
	// TTLGameKey bounds how long a resolved provider game key is reused.
	TTLGameKey = 24 * time.Hour
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache. Pass enabled=false for a
// no-op cache, useful in tests and single-shot CLI runs.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
}

// New creates a cache. An enabled cache runs a background eviction loop.
func New(enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
	}
	if enabled {
		go c.evictLoop()
	}
	return c
}

// Get retrieves a cached value if present and not expired.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Set stores a value with a TTL.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Stats returns cache statistics for the health endpoint.
func (c *Cache) Stats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]any{
		"enabled":      c.enabled,
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

// evictLoop periodically removes expired entries.
func (c *Cache) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.evict()
	}
}

func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
