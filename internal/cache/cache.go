package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

// Cache is a size-capped TTL cache of V values
type Cache[V any] struct {
	cache   *cache.Cache
	mu      sync.RWMutex
	stats   CacheStats
	maxSize int

	// generation advances on every invalidation so loads that started
	// before it are not stored
	generation uint64
}

func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache[V]{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if v, ok := data.(V); ok {
			c.stats.Hits++
			return v, true
		}
	}

	c.stats.Misses++
	var zero V
	return zero, false
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set(key, value)
}

func (c *Cache[V]) set(key string, value V) {
	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, cache.DefaultExpiration)
}

// GetOrLoad returns the cached value for key or stores the result of load.
// A result is returned but not stored when the cache was invalidated while
// load ran.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	v, err := load()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen {
		c.set(key, v)
	}
	return v, nil
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.cache.Delete(key)
}

// DeletePrefix drops every key starting with prefix
func (c *Cache[V]) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.cache.Flush()
	c.stats = CacheStats{}
}

func (c *Cache[V]) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = c.cache.ItemCount()
	return stats
}

// removeOldest evicts the entry closest to expiry, which is the one set first
func (c *Cache[V]) removeOldest() {
	items := c.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldest int64

	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey = key
			oldest = item.Expiration
		}
	}

	c.cache.Delete(oldestKey)
}

// AdminDashboardKey and OfficerDashboardKey name the cached dashboards
func AdminDashboardKey() string {
	return "dashboard:admin"
}

func OfficerDashboardKey(userID uint) string {
	return fmt.Sprintf("dashboard:officer:%d", userID)
}

// DashboardPrefix matches every dashboard key
const DashboardPrefix = "dashboard:"
