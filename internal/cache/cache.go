// Package cache memoizes composed field values across requests with TTL
// expiry and a hard entry bound.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long an entry stays valid.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxEntries bounds the cache size; the entry with the oldest
	// CreatedAt is evicted on overflow.
	DefaultMaxEntries = 1000
)

// Entry is one cached value. Owned exclusively by the cache.
type Entry struct {
	Key       string
	Value     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Cache is a mutex-serialized in-memory store. Safe for concurrent use from
// multiple in-flight requests; all mutations run under a single lock so
// there are no lost updates or torn reads.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]Entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time // test hook
}

// New returns a cache with the given TTL and entry bound; non-positive
// values fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]Entry, maxEntries),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value for key. An expired-but-present entry reads
// as a miss and is removed opportunistically.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.Value, true
}

// Set stores value under key. When the cache is at capacity and key is new,
// the entry with the oldest CreatedAt is evicted first (age-based, not
// LRU-on-read).
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// InvalidatePattern removes every entry whose key contains pattern as a
// substring and returns how many were dropped.
func (c *Cache) InvalidatePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry, c.maxEntries)
}

// Len returns the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked drops the entry with the oldest CreatedAt. Caller holds
// the lock. Linear scan; at the default bound of 1000 entries this is
// cheaper than maintaining an index.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.CreatedAt.Before(oldest) {
			oldestKey = key
			oldest = entry.CreatedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Key derives a deterministic cache key from the ordered semantic inputs of
// a cached step: the parts are joined with an unprintable separator (so no
// input collision can forge another key) and hashed. The field name goes in
// plain, behind a leading delimiter, so InvalidatePattern can target one
// field kind via FieldPattern.
func Key(field string, parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return FieldPattern(field) + hex.EncodeToString(h.Sum(nil))
}

// FieldPattern returns the invalidation pattern matching every key of one
// field kind and no other. The leading delimiter keeps field names from
// aliasing each other as substrings ("subtitle:" contains "title:", but not
// "/title:").
func FieldPattern(field string) string {
	return "/" + field + ":"
}
