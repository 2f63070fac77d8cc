package cache

import (
	"context"
	"sync"
	"time"

	"github.com/homematch/assistant-api/internal/domain/generation"
)

type memoryEntry struct {
	reply     generation.Reply
	expiresAt time.Time
}

// MemoryCache is the in-process reply cache used when Redis is not
// configured. Entries expire by TTL only; expired entries are dropped
// lazily on read and write.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ generation.Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached reply, or (nil, nil) when absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*generation.Reply, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.evictIfExpired(key)
		return nil, nil
	}
	reply := entry.reply
	return &reply, nil
}

// evictIfExpired rechecks expiry under the write lock. A Set may have
// refreshed the key between the read and this eviction; a fresh entry
// must survive.
func (c *MemoryCache) evictIfExpired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
	}
}

// Set stores the reply and sweeps any expired entries.
func (c *MemoryCache) Set(_ context.Context, key string, reply generation.Reply) error {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoryEntry{reply: reply, expiresAt: now.Add(c.ttl)}
	return nil
}
