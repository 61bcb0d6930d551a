// Package cache models a tag-only set-associative last-level cache using
// Akita cache components, with victim selection delegated to a
// replacement engine.
package cache

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/llcsim/replacement"
)

// ErrInvalidConfig is returned by [Config.Validate] and [New].
const ErrInvalidConfig = constError("invalid cache configuration")

type constError string

func (errStr constError) Error() string { return string(errStr) }

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `mapstructure:"size" yaml:"size"`
	// Associativity (number of ways)
	Associativity int `mapstructure:"associativity" yaml:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `mapstructure:"block_size" yaml:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `mapstructure:"hit_latency" yaml:"hit_latency"`
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64 `mapstructure:"miss_latency" yaml:"miss_latency"`
	// Policy is the initial replacement policy.
	Policy replacement.Kind `mapstructure:"-" yaml:"-"`
}

// DefaultLLCConfig returns the shared last-level cache used by the
// replacement championship harnesses: 1MB, 16-way, 64B lines.
func DefaultLLCConfig() Config {
	return Config{
		Size:          1024 * 1024, // 1MB
		Associativity: 16,          // 16-way
		BlockSize:     64,          // 64B cache line
		HitLatency:    30,          // ~30 cycles
		MissLatency:   200,         // ~200 cycles to DRAM
		Policy:        replacement.LIRSPlus,
	}
}

// DefaultL2Config returns a private mid-level cache configuration.
// Useful for checking policies against a smaller, lower-associativity set.
func DefaultL2Config() Config {
	return Config{
		Size:          256 * 1024, // 256KB
		Associativity: 8,          // 8-way
		BlockSize:     64,         // 64B cache line
		HitLatency:    12,         // ~12 cycles
		MissLatency:   30,         // ~30 cycles to the LLC
		Policy:        replacement.LRU,
	}
}

// NumSets returns the number of sets implied by the geometry.
func (c Config) NumSets() int {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return 0
	}
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks that the geometry describes a whole number of sets with
// power-of-two lines.
func (c Config) Validate() error {
	switch {
	case c.BlockSize <= 0 || bits.OnesCount(uint(c.BlockSize)) != 1:
		return fmt.Errorf("%w: block size %d is not a positive power of two",
			ErrInvalidConfig, c.BlockSize)
	case c.Associativity < replacement.MinimumAssociativity:
		return fmt.Errorf("%w: associativity %d is below %d",
			ErrInvalidConfig, c.Associativity, replacement.MinimumAssociativity)
	case c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0:
		return fmt.Errorf("%w: size %d is not a multiple of %d ways of %dB",
			ErrInvalidConfig, c.Size, c.Associativity, c.BlockSize)
	case !c.Policy.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidConfig, replacement.ErrUnknownPolicy)
	}
	return nil
}
