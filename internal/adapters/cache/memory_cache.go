package cache

import (
	"context"
	"time"

	"github.com/mikey/email-triage/internal/core"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CacheRepository interface
type MemoryCache struct {
	store  *gocache.Cache
	logger *zap.Logger
}

// NewMemoryCache creates a new in-memory cache. Expired entries are evicted
// every cleanupFreq.
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	if cleanupFreq <= 0 {
		cleanupFreq = 10 * time.Minute
	}
	return &MemoryCache{
		store:  gocache.New(gocache.NoExpiration, cleanupFreq),
		logger: logger,
	}
}

// Get retrieves a cached entry by key
func (c *MemoryCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, ErrNotFound
	}

	entry, ok := value.(core.CacheEntry)
	if !ok || entry.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &entry, nil
}

// Set stores a cache entry until its ExpiresAt
func (c *MemoryCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	ttl := gocache.NoExpiration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			c.store.Delete(entry.Key)
			return nil
		}
	}

	c.store.Set(entry.Key, *entry, ttl)
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	before := c.store.ItemCount()
	c.store.DeleteExpired()
	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", before-c.store.ItemCount()))
	return nil
}

// Stop drops all entries
func (c *MemoryCache) Stop() {
	c.store.Flush()
}
