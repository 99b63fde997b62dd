package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"go.uber.org/zap"
)

// TreeCacheStats tracks cache performance
type TreeCacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// TreeCache memoizes parsed trees keyed by delimiters and source text.
// When two goroutines parse the same text at once, the first stored tree
// wins and both callers receive it.
type TreeCache struct {
	tokenizer  *Tokenizer
	maxEntries int
	logger     *zap.Logger

	mu        sync.RWMutex
	trees     map[string]*Tree
	evictList []string
	stats     TreeCacheStats
}

// NewTreeCache creates a cache in front of tokenizer. maxEntries <= 0 means
// unbounded.
func NewTreeCache(tokenizer *Tokenizer, maxEntries int, logger *zap.Logger) *TreeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeCache{
		tokenizer:  tokenizer,
		maxEntries: maxEntries,
		logger:     logger,
		trees:      make(map[string]*Tree),
	}
}

func treeKey(source string, delims DelimiterSet) string {
	h := sha256.New()
	h.Write([]byte(delims.String()))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Parse returns the cached tree for source, parsing it on a miss.
// Parse errors are not cached.
func (c *TreeCache) Parse(source string, delims DelimiterSet) (*Tree, error) {
	key := treeKey(source, delims)

	c.mu.RLock()
	tree, ok := c.trees[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		c.logger.Debug(LogMsgTreeCacheHit, zap.Int(LogFieldSource, len(source)))
		return tree, nil
	}

	parsed, err := c.tokenizer.Parse(source, delims)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Misses++
	if existing, ok := c.trees[key]; ok {
		return existing, nil
	}
	c.store(key, parsed)
	return parsed, nil
}

// Contains reports whether source is cached for delims
func (c *TreeCache) Contains(source string, delims DelimiterSet) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.trees[treeKey(source, delims)]
	return ok
}

// store inserts a tree, evicting the oldest entry when full. Callers hold c.mu.
func (c *TreeCache) store(key string, tree *Tree) {
	if c.maxEntries > 0 {
		for len(c.trees) >= c.maxEntries && len(c.evictList) > 0 {
			oldest := c.evictList[0]
			c.evictList = c.evictList[1:]
			delete(c.trees, oldest)
			c.stats.Evictions++
		}
	}
	c.trees[key] = tree
	if c.maxEntries > 0 {
		c.evictList = append(c.evictList, key)
	}
	c.logger.Debug(LogMsgTreeCacheStored, zap.Int(LogFieldSource, len(tree.Source)))
}

// Len returns the number of cached trees
func (c *TreeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trees)
}

// Clear drops every cached tree
func (c *TreeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees = make(map[string]*Tree)
	c.evictList = nil
}

// Stats returns a snapshot of the cache counters
func (c *TreeCache) Stats() TreeCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.trees)
	return s
}
