// Package blockcache provides the block-level cache control collaborator:
// a sharded, capacity-bounded store of decoded mipmap blocks, plus the
// per-frame IO budget a projector is expected to honor while fetching
// them.
//
// The cache is split into 16 shards keyed by an FNV-1a hash of the block
// address, each an independent github.com/bdvrender/renderer/internal/cache.Cache,
// to keep lock contention low when many source projectors fetch
// concurrently.
package blockcache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/bdvrender/renderer"
	"github.com/bdvrender/renderer/internal/cache"
)

const shardCount = 16

// BlockKey addresses a single mipmap block: a source, a resolution level,
// and a grid coordinate within that level.
type BlockKey struct {
	Source int
	Level  int
	X, Y, Z int
}

func (k BlockKey) hash() uint64 {
	h := fnv.New64a()
	var buf [40]byte
	putInt(buf[0:8], k.Source)
	putInt(buf[8:16], k.Level)
	putInt(buf[16:24], k.X)
	putInt(buf[24:32], k.Y)
	putInt(buf[32:40], k.Z)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

func putInt(b []byte, v int) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

// Block is one decoded, immutable mipmap block plus whether it is the
// authoritative sample at its level (false for a lower-resolution
// placeholder substituted while the real block is still loading).
type Block struct {
	Data      []byte
	Authoritative bool
}

// Cache is a sharded block store implementing renderer.CacheControl.
// Per-frame IO budgets are advisory: they are surfaced via Budget() for a
// SourceProjectorFactory to consult, not enforced by Cache itself.
type Cache struct {
	shards [shardCount]*cache.Cache[BlockKey, Block]

	budgetMu sync.RWMutex
	budget   renderer.IOBudget

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a block cache with the given soft limit applied per shard
// (total capacity is approximately perShardLimit * 16).
func New(perShardLimit int) *Cache {
	c := &Cache{budget: renderer.DefaultIOBudget}
	for i := range c.shards {
		c.shards[i] = cache.New[BlockKey, Block](perShardLimit)
	}
	return c
}

func (c *Cache) shardFor(key BlockKey) *cache.Cache[BlockKey, Block] {
	return c.shards[key.hash()%shardCount]
}

// Get retrieves a decoded block, if present.
func (c *Cache) Get(key BlockKey) (Block, bool) {
	v, ok := c.shardFor(key).Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores a decoded block.
func (c *Cache) Put(key BlockKey, b Block) {
	c.shardFor(key).Set(key, b)
}

// PrepareNextFrame implements renderer.CacheControl. Block loading here is
// synchronous-on-demand (fetched by the source projector directly into the
// cache), so there is no background prefetch queue to reprioritize; this
// is a hook point for a future asynchronous fetcher.
func (c *Cache) PrepareNextFrame() {}

// SetIOBudget implements renderer.CacheControl.
func (c *Cache) SetIOBudget(budget renderer.IOBudget) {
	c.budgetMu.Lock()
	defer c.budgetMu.Unlock()
	c.budget = budget
}

// Budget returns the currently installed IO budget.
func (c *Cache) Budget() renderer.IOBudget {
	c.budgetMu.RLock()
	defer c.budgetMu.RUnlock()
	return c.budget
}

// Stats aggregates hit/miss counters across all shards.
type Stats struct {
	Hits, Misses uint64
	Len          int
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	for _, shard := range c.shards {
		s.Len += shard.Len()
	}
	return s
}

var _ renderer.CacheControl = (*Cache)(nil)
