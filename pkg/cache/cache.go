/*
 * iptv2m3u turns an IPTV reseller-panel account into portable M3U playlists.
 * Copyright (C) 2025  Ziad Boughdir
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package cache provides an in-memory expiring store with LRU eviction used
// to front expensive panel account-info calls. All cleanup is lazy: Get
// evicts the single key it finds expired, Set sweeps the whole table. There
// is no background expiry goroutine.
package cache

import (
	"sync"
	"time"

	"github.com/ziadboughdir/iptv2m3u/pkg/utils"
)

const (
	// DefaultMaxAge is the default entry TTL.
	DefaultMaxAge = 300 * time.Second
	// DefaultMaxItems is the default table capacity.
	DefaultMaxItems = 100
)

// Entry represents one cached value with its expiry metadata.
type Entry struct {
	Value     interface{}
	CreatedAt time.Time
	TTL       time.Duration
}

// expired reports whether the entry's TTL has elapsed.
func (e *Entry) expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.TTL))
}

// Cache is a size-bounded expiring key/value store, safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	maxAge      time.Duration
	maxItems    int
	entries     map[string]*Entry
	accessTimes map[string]time.Time

	// monotonic clock source, swappable in tests
	now func() time.Time
}

// New creates a cache with the given TTL and item cap. Non-positive values
// fall back to the defaults (300s, 100 items).
func New(maxAge time.Duration, maxItems int) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Cache{
		maxAge:      maxAge,
		maxItems:    maxItems,
		entries:     make(map[string]*Entry),
		accessTimes: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Get returns the value for key, or nil and false when the key is absent or
// expired. An expired entry is evicted on the spot. A hit refreshes the
// key's last-access time, which feeds later LRU eviction decisions.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := c.now()
	if entry.expired(now) {
		c.remove(key)
		utils.DebugLog("Cache entry expired: %s", utils.MaskQueryCredentials(key))
		return nil, false
	}

	c.accessTimes[key] = now
	return entry.Value, true
}

// Set inserts or overwrites the entry for key with a fresh timestamp and the
// configured TTL. Expired entries are swept first; if the table is still at
// or over capacity, the least recently used entry is evicted.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepExpired(now)

	// Eviction is unconditional at capacity, overwrites included.
	if len(c.entries) >= c.maxItems {
		c.evictLRU()
	}

	c.entries[key] = &Entry{
		Value:     value,
		CreatedAt: now,
		TTL:       c.maxAge,
	}
	c.accessTimes[key] = now
}

// Delete removes the entry for key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(key)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.accessTimes = make(map[string]time.Time)
}

// Size returns the number of entries currently stored, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes key from both tables. Caller holds the lock.
func (c *Cache) remove(key string) bool {
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	delete(c.accessTimes, key)
	return true
}

// sweepExpired drops every expired entry. Caller holds the lock.
func (c *Cache) sweepExpired(now time.Time) {
	for key, entry := range c.entries {
		if entry.expired(now) {
			c.remove(key)
		}
	}
}

// evictLRU removes the entry with the oldest last-access time. Ties go to
// the first key encountered during the scan. Caller holds the lock.
func (c *Cache) evictLRU() {
	if len(c.accessTimes) == 0 {
		return
	}

	var lruKey string
	var lruTime time.Time
	first := true
	for key, at := range c.accessTimes {
		if first || at.Before(lruTime) {
			lruKey = key
			lruTime = at
			first = false
		}
	}

	utils.DebugLog("Cache evicting LRU entry: %s", utils.MaskQueryCredentials(lruKey))
	c.remove(lruKey)
}
