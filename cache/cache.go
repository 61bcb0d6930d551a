package cache

import (
	"fmt"
	"io"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/llcsim/replacement"
)

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Bypassed is true if the missing line was not inserted.
	Bypassed bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
	// Writeback is true if the evicted block was dirty.
	Writeback bool
	// Way is the way that was hit or filled.
	Way int
}

const numAccessTypes = int(replacement.Writeback) + 1

// TypeStatistics counts accesses of one access type.
type TypeStatistics struct {
	Hits   uint64
	Misses uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Accesses   uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
	Bypasses   uint64
	Cycles     uint64
	ByType     [numAccessTypes]TypeStatistics
}

// HitRate returns hits over accesses, or 0 before the first access.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses)
}

// MissRate returns misses over accesses, or 0 before the first access.
func (s Statistics) MissRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Misses) / float64(s.Accesses)
}

// AverageLatency returns the mean access latency in cycles.
func (s Statistics) AverageLatency() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Accesses)
}

// Cache is a tag-only cache using Akita cache components. Tags and
// valid/dirty state live in the Akita directory; replacement decisions come
// from the engine.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl
	finder    *engineVictimFinder
	engine    *replacement.Engine

	// Statistics
	stats Statistics
}

// New creates a new cache with the given configuration. The options are
// passed to the replacement engine.
func New(config Config, opts ...replacement.Option) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numSets := config.NumSets()
	engine, err := replacement.New(numSets, config.Associativity, config.Policy, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating replacement engine: %w", err)
	}

	finder := &engineVictimFinder{engine: engine}
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			finder,
		),
		finder: finder,
		engine: engine,
	}, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Engine returns the replacement engine driving the cache.
func (c *Cache) Engine() *replacement.Engine {
	return c.engine
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// SetPolicy switches the replacement policy between accesses.
func (c *Cache) SetPolicy(kind replacement.Kind) error {
	if err := c.engine.SetPolicy(kind); err != nil {
		return err
	}
	c.config.Policy = kind
	return nil
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
}

func dirties(t replacement.AccessType) bool {
	return t == replacement.Store || t == replacement.Writeback
}

// Access looks up acc and, on a miss, asks the engine for a victim and fills
// it. The engine sees block-aligned addresses.
func (c *Cache) Access(acc replacement.Access) AccessResult {
	acc.Address = c.blockAddr(acc.Address)
	c.stats.Accesses++

	block := c.directory.Lookup(0, acc.Address) // PID=0 for now
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.countType(acc.Type, true)
		c.stats.Cycles += c.config.HitLatency

		c.engine.Update(block.SetID, block.WayID, acc, true)
		if dirties(acc.Type) {
			block.IsDirty = true
		}
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Way:     block.WayID,
		}
	}

	c.stats.Misses++
	c.countType(acc.Type, false)
	c.stats.Cycles += c.config.MissLatency
	return c.handleMiss(acc)
}

// handleMiss fills the victim chosen by the engine.
func (c *Cache) handleMiss(acc replacement.Access) AccessResult {
	result := AccessResult{
		Latency: c.config.MissLatency,
	}

	c.finder.pending = acc
	victim := c.directory.FindVictim(acc.Address)
	if victim == nil {
		c.stats.Bypasses++
		result.Bypassed = true
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag stores block-aligned address
		if victim.IsDirty {
			c.stats.Writebacks++
			result.Writeback = true
		}
	}

	victim.Tag = acc.Address
	victim.IsValid = true
	victim.IsDirty = dirties(acc.Type)
	result.Way = victim.WayID

	c.engine.Update(victim.SetID, victim.WayID, acc, false)
	return result
}

func (c *Cache) countType(t replacement.AccessType, hit bool) {
	if int(t) >= numAccessTypes {
		return
	}
	if hit {
		c.stats.ByType[t].Hits++
	} else {
		c.stats.ByType[t].Misses++
	}
}

// Contains reports whether the block holding addr is resident. It does not
// touch replacement state.
func (c *Cache) Contains(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// Invalidate marks a cache line as invalid. The way keeps its replacement
// metadata and is refilled only when the engine selects it.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush counts a writeback for every dirty block and invalidates all blocks.
func (c *Cache) Flush() {
	sets := c.directory.GetSets()
	for _, set := range sets {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// PrintStats writes the cache totals followed by the engine banner.
func (c *Cache) PrintStats(w io.Writer) error {
	s := c.stats
	_, err := fmt.Fprintf(w,
		"Cache: %dKB %d-way %dB lines, %d sets\n"+
			"Accesses:   %d\nHits:       %d (%.2f%%)\nMisses:     %d (%.2f%%)\n"+
			"Evictions:  %d\nWritebacks: %d\nBypasses:   %d\nAvg latency: %.2f cycles\n",
		c.config.Size/1024, c.config.Associativity, c.config.BlockSize, c.config.NumSets(),
		s.Accesses, s.Hits, 100*s.HitRate(), s.Misses, 100*s.MissRate(),
		s.Evictions, s.Writebacks, s.Bypasses, s.AverageLatency())
	if err != nil {
		return err
	}
	for t := 0; t < numAccessTypes; t++ {
		ts := s.ByType[t]
		if ts.Hits+ts.Misses == 0 {
			continue
		}
		_, err = fmt.Fprintf(w, "  %-9s hits %d misses %d\n",
			replacement.AccessType(t), ts.Hits, ts.Misses)
		if err != nil {
			return err
		}
	}
	return c.engine.PrintStats(w)
}
