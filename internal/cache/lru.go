// Package cache provides the bounded LRU embedding cache.
//
// Keys are fingerprints of normalized text (trimmed, lowercased, hashed), so
// texts differing only in case or surrounding whitespace share one entry.
// The cache is advisory: a miss is never an error, only extra work for the
// embedding provider.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the default number of embeddings to cache.
// At 768 dimensions * 4 bytes * 1000 entries this is roughly 3MB.
const DefaultCapacity = 1000

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

// entryMeta tracks access bookkeeping per entry, kept outside the vector so
// cached vectors themselves are never mutated.
type entryMeta struct {
	LastAccess  time.Time
	AccessCount int
}

// Cache is a strict LRU cache from text fingerprints to embedding vectors.
// All methods are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, []float32]
	meta     map[string]*entryMeta
	capacity int
	hits     uint64
	misses   uint64
	now      func() time.Time // injectable for tests
}

// New creates a cache with the given capacity. Non-positive capacities fall
// back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &Cache{
		meta:     make(map[string]*entryMeta),
		capacity: capacity,
		now:      time.Now,
	}
	// The eviction callback runs under c.mu for every mutation path,
	// so meta access here is serialized.
	c.lru, _ = lru.NewWithEvict(capacity, func(key string, _ []float32) {
		delete(c.meta, key)
	})
	return c
}

// Fingerprint derives the cache key for a text: SHA-256 of the trimmed,
// case-folded content. The normalization is an intentional approximation so
// trivially different texts share an entry.
func Fingerprint(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for the text, marking the entry
// most-recently-used on a hit.
func (c *Cache) Get(text string) ([]float32, bool) {
	key := Fingerprint(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}

	c.hits++
	if m := c.meta[key]; m != nil {
		m.LastAccess = c.now()
		m.AccessCount++
	}
	return vec, true
}

// Put stores a vector for the text, evicting the least-recently-used entry
// if the cache is full. Re-putting an existing key refreshes its recency.
func (c *Cache) Put(text string, vector []float32) {
	key := Fingerprint(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, vector, c.now(), 0)
}

// putLocked inserts an entry under the held lock, preserving the supplied
// bookkeeping. Used by Put and by cache import.
func (c *Cache) putLocked(key string, vector []float32, lastAccess time.Time, accessCount int) {
	c.lru.Add(key, vector)
	c.meta[key] = &entryMeta{
		LastAccess:  lastAccess,
		AccessCount: accessCount,
	}
}

// Stats returns a snapshot of cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:     c.lru.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// Resize changes the capacity. Shrinking evicts least-recently-used entries
// until within the new bound.
func (c *Cache) Resize(capacity int) {
	if capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Resize(capacity)
	c.capacity = capacity
}

// Clear removes all entries and resets hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.meta = make(map[string]*entryMeta)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
