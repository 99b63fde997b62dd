package stache

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CacheConfig configures the caching behavior of a CachedLoader.
type CacheConfig struct {
	// TTL is how long cached sources remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached names.
	// When exceeded, the least recently used entry is evicted.
	// Default: 1000.
	MaxEntries int

	// NegativeCacheTTL is how long to cache "not found" results.
	// Set to a negative value to disable negative caching.
	// Default: 30 seconds.
	NegativeCacheTTL time.Duration

	// Logger receives debug logs and loader failure warnings.
	Logger *zap.Logger
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              CachedLoaderDefaultTTL,
		MaxEntries:       CachedLoaderDefaultMaxEntries,
		NegativeCacheTTL: CachedLoaderDefaultNegativeTTL,
	}
}

// cacheEntry is a cached lookup result.
type cacheEntry struct {
	source     string
	notFound   bool
	cachedAt   time.Time
	accessedAt time.Time
}

// CachedLoader wraps any TemplateLoader with an in-memory cache of lookups.
// Loader errors are never cached.
type CachedLoader struct {
	loader TemplateLoader
	config CacheConfig
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]*cacheEntry
	stats CacheStats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries         int
	NegativeEntries int
	Hits            int64
	Misses          int64
	Evictions       int64
}

// NewCachedLoader wraps loader with caching.
func NewCachedLoader(loader TemplateLoader, config CacheConfig) *CachedLoader {
	if config.TTL == 0 {
		config.TTL = CachedLoaderDefaultTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = CachedLoaderDefaultMaxEntries
	}
	if config.NegativeCacheTTL == 0 {
		config.NegativeCacheTTL = CachedLoaderDefaultNegativeTTL
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &CachedLoader{
		loader: loader,
		config: config,
		logger: config.Logger,
		now:    time.Now,
		cache:  make(map[string]*cacheEntry),
	}
}

// Load returns the cached result for name, consulting the wrapped loader on
// a miss or after expiry.
func (c *CachedLoader) Load(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	c.mu.Lock()
	if entry, ok := c.cache[name]; ok && c.isValid(entry) {
		entry.accessedAt = c.now()
		c.stats.Hits++
		c.mu.Unlock()
		c.logger.Debug(LogMsgCacheHit, zap.String(LogFieldTemplate, name))
		return entry.source, !entry.notFound, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	c.logger.Debug(LogMsgCacheMiss, zap.String(LogFieldTemplate, name))
	source, found, err := c.loader.Load(ctx, name)
	if err != nil {
		c.logger.Warn(LogMsgLoaderFallback,
			zap.String(LogFieldLoader, LoaderNameCached),
			zap.String(LogFieldTemplate, name),
			zap.Error(err))
		return "", false, err
	}

	if found || c.config.NegativeCacheTTL > 0 {
		c.mu.Lock()
		c.addEntry(name, source, !found)
		c.mu.Unlock()
	}
	return source, found, nil
}

// Invalidate removes name from the cache.
func (c *CachedLoader) Invalidate(name string) {
	c.mu.Lock()
	delete(c.cache, name)
	c.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (c *CachedLoader) InvalidateAll() {
	c.mu.Lock()
	c.cache = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Stats returns cache statistics.
func (c *CachedLoader) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = len(c.cache)
	for _, entry := range c.cache {
		if entry.notFound {
			stats.NegativeEntries++
		}
	}
	return stats
}

// Close clears the cache and closes the wrapped loader when it is an io.Closer.
func (c *CachedLoader) Close() error {
	c.InvalidateAll()
	if closer, ok := c.loader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// isValid checks if a cache entry is still valid.
// Caller must hold the lock.
func (c *CachedLoader) isValid(entry *cacheEntry) bool {
	ttl := c.config.TTL
	if entry.notFound {
		ttl = c.config.NegativeCacheTTL
	}
	return c.now().Sub(entry.cachedAt) < ttl
}

// addEntry adds an entry to the cache, evicting if necessary.
// Caller must hold the lock.
func (c *CachedLoader) addEntry(name, source string, notFound bool) {
	if _, exists := c.cache[name]; !exists && len(c.cache) >= c.config.MaxEntries {
		c.evictOldest()
	}

	now := c.now()
	c.cache[name] = &cacheEntry{
		source:     source,
		notFound:   notFound,
		cachedAt:   now,
		accessedAt: now,
	}
}

// evictOldest removes the least recently accessed entry.
// Caller must hold the lock.
func (c *CachedLoader) evictOldest() {
	var oldestKey string
	var oldest *cacheEntry
	for key, entry := range c.cache {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest != nil {
		delete(c.cache, oldestKey)
		c.stats.Evictions++
		c.logger.Debug(LogMsgCacheEvicted, zap.String(LogFieldTemplate, oldestKey))
	}
}
