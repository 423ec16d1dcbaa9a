package cache

import (
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"coursereport/internal/dataprocessing"
)

// Key returns the content address of an uploaded file
func Key(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LoadFunc parses a dataset on a cache miss
type LoadFunc func() (*dataprocessing.Dataset, error)

// Entry is a cached dataset together with its bookkeeping
type Entry struct {
	Dataset    *dataprocessing.Dataset
	CachedAt   time.Time
	LastAccess time.Time
	HitCount   int
	// Refs counts the sessions currently attached to the dataset
	Refs int
}

// DatasetCache is a content-addressed cache of parsed datasets. Datasets are
// immutable, so one entry can be shared by every session that uploaded the
// same file. Entries without references expire ttl after their last access.
type DatasetCache struct {
	entries   map[string]*Entry
	mutex     sync.RWMutex
	group     singleflight.Group
	ttl       time.Duration
	maxSize   int
	hitCount  int64
	missCount int64
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewDatasetCache creates a cache and starts its cleanup goroutine
func NewDatasetCache(ttl time.Duration, maxSize int) *DatasetCache {
	c := &DatasetCache{
		entries:  make(map[string]*Entry),
		ttl:      ttl,
		maxSize:  maxSize,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	go c.cleanup(cleanupInterval(ttl))

	return c
}

// Acquire returns the dataset stored under key, loading it with load on a
// miss, and takes a reference on it. Concurrent misses for the same key share
// a single load. cached reports whether the dataset was already present.
// Every successful Acquire must be paired with a Release.
func (c *DatasetCache) Acquire(key string, load LoadFunc) (ds *dataprocessing.Dataset, cached bool, err error) {
	if ds, ok := c.acquireExisting(key); ok {
		return ds, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if ds, ok := c.peek(key); ok {
			return ds, nil
		}
		ds, err := load()
		if err != nil {
			return nil, err
		}
		c.store(key, ds)
		return ds, nil
	})
	if err != nil {
		return nil, false, err
	}

	// re-insert if evicted since the load stored it
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.missCount++
	entry, ok := c.entries[key]
	if !ok {
		entry = c.insertLocked(key, v.(*dataprocessing.Dataset))
	}
	entry.Refs++
	entry.LastAccess = c.now()
	return entry.Dataset, false, nil
}

// Get returns the dataset stored under key without taking a reference
func (c *DatasetCache) Get(key string) (*dataprocessing.Dataset, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.missCount++
		return nil, false
	}

	entry.HitCount++
	entry.LastAccess = c.now()
	c.hitCount++

	return entry.Dataset, true
}

// Release drops one reference taken by Acquire. The entry stays cached until
// its ttl runs out so a re-upload of the same file is still a hit.
func (c *DatasetCache) Release(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[key]; ok && entry.Refs > 0 {
		entry.Refs--
		entry.LastAccess = c.now()
	}
}

// Invalidate removes an entry regardless of its references
func (c *DatasetCache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
}

// Len returns the number of cached datasets
func (c *DatasetCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// GetStats returns cache statistics
func (c *DatasetCache) GetStats() map[string]interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	refs := 0
	for _, entry := range c.entries {
		refs += entry.Refs
	}

	return map[string]interface{}{
		"entries":     len(c.entries),
		"references":  refs,
		"max_size":    c.maxSize,
		"hit_count":   c.hitCount,
		"miss_count":  c.missCount,
		"hit_ratio":   hitRatio,
		"ttl_seconds": c.ttl.Seconds(),
	}
}

// Stop gracefully stops the cache cleanup goroutine
func (c *DatasetCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *DatasetCache) acquireExisting(key string) (*dataprocessing.Dataset, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	entry.HitCount++
	entry.Refs++
	entry.LastAccess = c.now()
	c.hitCount++
	return entry.Dataset, true
}

func (c *DatasetCache) peek(key string) (*dataprocessing.Dataset, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if entry, ok := c.entries[key]; ok {
		return entry.Dataset, true
	}
	return nil, false
}

func (c *DatasetCache) store(key string, ds *dataprocessing.Dataset) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.insertLocked(key, ds)
	}
}

func (c *DatasetCache) insertLocked(key string, ds *dataprocessing.Dataset) *Entry {
	for c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	now := c.now()
	entry := &Entry{Dataset: ds, CachedAt: now, LastAccess: now}
	c.entries[key] = entry
	return entry
}

// evictOldest removes the least recently used entry, preferring entries no
// session refers to.
func (c *DatasetCache) evictOldest() {
	var oldestKey string
	var oldest *Entry

	for key, entry := range c.entries {
		if oldest == nil ||
			(entry.Refs == 0 && oldest.Refs > 0) ||
			((entry.Refs == 0) == (oldest.Refs == 0) && entry.LastAccess.Before(oldest.LastAccess)) {
			oldestKey = key
			oldest = entry
		}
	}

	if oldest != nil {
		delete(c.entries, oldestKey)
	}
}

func (c *DatasetCache) purgeExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if entry.Refs == 0 && now.Sub(entry.LastAccess) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *DatasetCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purgeExpired()
		case <-c.stopChan:
			return
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < time.Second {
		return time.Second
	}
	if interval > 5*time.Minute {
		return 5 * time.Minute
	}
	return interval
}
