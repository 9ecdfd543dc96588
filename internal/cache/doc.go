// Package cache provides a generic, thread-safe LRU cache with a soft
// eviction limit. It backs the block cache's per-shard storage
// (see github.com/bdvrender/renderer/blockcache).
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// When the cache exceeds softLimit, the least recently used quarter of
// entries is evicted.
//
// Cache is safe for concurrent use but must not be copied after creation
// (it contains a mutex).
package cache
