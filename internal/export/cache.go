package export

import (
	"sync"
	"time"
)

// Key identifies one cached export: a conversation at a particular update
// time, rendered in one format.
type Key struct {
	ID          string
	UpdateMilli int64
	Format      Format
}

// Stats is a point-in-time snapshot of cache behavior.
type Stats struct {
	Size      int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}

type cacheEntry struct {
	content  string
	cachedAt time.Time
	seq      uint64
}

// Cache is a bounded export cache with oldest-by-insertion eviction. It is
// owned by an Exporter rather than shared module state, and is safe for
// concurrent use. The staleness rule is part of the contract, not an
// optimization: a cached rendering is only served while the conversation's
// update time has not advanced past the time it was cached, so edited and
// reloaded conversations always re-render.
type Cache struct {
	mu        sync.Mutex
	capacity  int
	entries   map[Key]cacheEntry
	seq       uint64
	hits      int64
	misses    int64
	evictions int64
}

const defaultCacheSize = 50

// NewCache returns a cache holding at most capacity entries;
// non-positive capacities fall back to the default.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[Key]cacheEntry, capacity),
	}
}

// Get returns the cached rendering for key if present and not stale
// relative to updateTime.
func (c *Cache) Get(key Key, updateTime time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || updateTime.After(entry.cachedAt) {
		c.misses++
		return "", false
	}
	c.hits++
	return entry.content, true
}

// Put stores a rendering, evicting the oldest insertion when full.
func (c *Cache) Put(key Key, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		var oldestKey Key
		var oldestSeq uint64
		first := true
		for k, e := range c.entries {
			if first || e.seq < oldestSeq {
				oldestKey, oldestSeq = k, e.seq
				first = false
			}
		}
		delete(c.entries, oldestKey)
		c.evictions++
	}

	c.seq++
	c.entries[key] = cacheEntry{
		content:  content,
		cachedAt: time.Now(),
		seq:      c.seq,
	}
}

// Stats reports cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
