package server

import (
	"sync"
	"time"

	"github.com/mj1618/uisync/internal/model"
)

// cacheEntry holds a cached snapshot with the time it was read.
type cacheEntry struct {
	snapshot  model.Snapshot
	timestamp time.Time
}

// SnapshotCache provides a TTL-based cache for extracted trees, keyed by
// whether the extraction was restricted to shown nodes.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[bool]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache creates a new cache reading time from now. A ttl of 0
// disables caching.
func NewSnapshotCache(ttl time.Duration, now func() time.Time) *SnapshotCache {
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{
		entries: make(map[bool]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// AllNodes returns the cached snapshot if within TTL, otherwise extracts a
// fresh one with read. The caller must hold the driver mutex.
func (c *SnapshotCache) AllNodes(read func(onlyVisible bool) model.Snapshot, onlyVisible bool) model.Snapshot {
	if c.ttl == 0 {
		return read(onlyVisible)
	}

	c.mu.Lock()
	if entry, ok := c.entries[onlyVisible]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		c.mu.Unlock()
		return entry.snapshot
	}
	c.mu.Unlock()

	snap := read(onlyVisible)

	c.mu.Lock()
	c.entries[onlyVisible] = cacheEntry{snapshot: snap, timestamp: c.now()}
	c.mu.Unlock()

	return snap
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// InvalidateAll clears the entire cache.
func (c *SnapshotCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[bool]cacheEntry)
}
