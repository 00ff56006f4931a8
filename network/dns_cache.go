package network

import (
	"container/list"
	"sync"
	"time"
)

// DNSCacheEntry is a cached set of IP addresses.
type DNSCacheEntry struct {
	IPs       []string
	ExpiresAt time.Time
}

// Expired checks if the cache entry has expired.
func (e *DNSCacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// DNSCacheMetrics is a snapshot of cache counters.
type DNSCacheMetrics struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// LRUDNSCache is a thread-safe LRU cache of resolved names. Every entry
// has its own TTL.
type LRUDNSCache struct {
	mutex   sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List

	hits      uint64
	misses    uint64
	evictions uint64
}

type lruCacheItem struct {
	key   string
	value *DNSCacheEntry
}

// Get returns an entry or nil if it is absent or expired.
func (c *LRUDNSCache) Get(key string) *DNSCacheEntry {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++

		return nil
	}

	item := elem.Value.(*lruCacheItem) //nolint: forcetypeassert

	if item.value.Expired(time.Now()) {
		c.order.Remove(elem)
		delete(c.items, key)
		c.misses++

		return nil
	}

	c.order.MoveToFront(elem)
	c.hits++

	return item.value
}

// Set stores IPs for ttl seconds.
func (c *LRUDNSCache) Set(key string, ips []string, ttl uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry := &DNSCacheEntry{
		IPs:       ips,
		ExpiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruCacheItem).value = entry //nolint: forcetypeassert

		return
	}

	c.items[key] = c.order.PushFront(&lruCacheItem{
		key:   key,
		value: entry,
	})

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruCacheItem).key) //nolint: forcetypeassert
		c.evictions++
	}
}

// Size returns a number of stored entries.
func (c *LRUDNSCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.order.Len()
}

// GetMetrics returns current cache counters.
func (c *LRUDNSCache) GetMetrics() DNSCacheMetrics {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return DNSCacheMetrics{
		Size:      c.order.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// CleanupExpired removes all expired entries and returns their number.
func (c *LRUDNSCache) CleanupExpired(now time.Time) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0

	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		item := elem.Value.(*lruCacheItem) //nolint: forcetypeassert

		if item.value.Expired(now) {
			c.order.Remove(elem)
			delete(c.items, item.key)
			removed++
		}

		elem = next
	}

	return removed
}

// StartCleanupLoop removes expired entries periodically until returned
// channel is closed.
func (c *LRUDNSCache) StartCleanupLoop(interval time.Duration) chan struct{} {
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				c.CleanupExpired(now)
			case <-stop:
				return
			}
		}
	}()

	return stop
}

// NewLRUDNSCache creates a new cache which keeps at most maxSize entries.
func NewLRUDNSCache(maxSize int) *LRUDNSCache {
	if maxSize <= 0 {
		maxSize = defaultDNSCacheSize
	}

	return &LRUDNSCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element, maxSize),
		order:   list.New(),
	}
}
