package cache

import (
	"fmt"

	"github.com/hashicorp/golang-lru/arc/v2"
)

// Baseline is a fully-associative ARC cache holding as many lines as a
// Cache. Running both over one trace separates conflict misses from
// replacement quality.
type Baseline struct {
	arc       *arc.ARCCache[uint64, struct{}]
	blockSize uint64
	accesses  uint64
	hits      uint64
}

// NewBaseline sizes an ARC cache to the line count of config.
func NewBaseline(config Config) (*Baseline, error) {
	if config.BlockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidConfig, config.BlockSize)
	}
	lines := config.Size / config.BlockSize
	c, err := arc.NewARC[uint64, struct{}](lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Baseline{arc: c, blockSize: uint64(config.BlockSize)}, nil
}

// Access reports whether the line holding addr was resident and inserts it.
func (b *Baseline) Access(addr uint64) bool {
	key := addr / b.blockSize
	b.accesses++
	if _, ok := b.arc.Get(key); ok {
		b.hits++
		return true
	}
	b.arc.Add(key, struct{}{})
	return false
}

// Len returns the number of resident lines.
func (b *Baseline) Len() int { return b.arc.Len() }

// Accesses returns the number of accesses so far.
func (b *Baseline) Accesses() uint64 { return b.accesses }

// Hits returns the number of hits so far.
func (b *Baseline) Hits() uint64 { return b.hits }

// HitRate returns hits over accesses, or 0 before the first access.
func (b *Baseline) HitRate() float64 {
	if b.accesses == 0 {
		return 0
	}
	return float64(b.hits) / float64(b.accesses)
}
