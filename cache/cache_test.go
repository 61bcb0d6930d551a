package cache_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/llcsim/cache"
	"github.com/sarchlab/llcsim/replacement"
)

func read(addr uint64) replacement.Access {
	return replacement.Access{PC: 0x400000, Address: addr, Type: replacement.Load}
}

func write(addr uint64) replacement.Access {
	return replacement.Access{PC: 0x400000, Address: addr, Type: replacement.Store}
}

// smallConfig is a 4KB, 4-way cache with 64B lines: 16 sets.
func smallConfig(policy replacement.Kind) cache.Config {
	return cache.Config{
		Size:          4 * 1024,
		Associativity: 4,
		BlockSize:     64,
		HitLatency:    1,
		MissLatency:   10,
		Policy:        policy,
	}
}

// sameSet returns the i-th block address mapping to set 0 of smallConfig.
func sameSet(i int) uint64 {
	return uint64(i) * 16 * 64
}

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		var err error
		c, err = cache.New(smallConfig(replacement.LRU))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			result := c.Access(read(0x1000))
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(result.Evicted).To(BeFalse())

			stats := c.Stats()
			Expect(stats.Accesses).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			c.Access(read(0x1000))

			result := c.Access(read(0x1000))
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))

			stats := c.Stats()
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.ByType[replacement.Load].Hits).To(Equal(uint64(1)))
			Expect(stats.ByType[replacement.Load].Misses).To(Equal(uint64(1)))
			Expect(stats.HitRate()).To(BeNumerically("~", 0.5))
		})

		It("should hit on different addresses in same cache line", func() {
			c.Access(read(0x1000))
			result := c.Access(read(0x1004))
			Expect(result.Hit).To(BeTrue())
			Expect(c.Contains(0x103f)).To(BeTrue())
			Expect(c.Contains(0x1040)).To(BeFalse())
		})
	})

	Describe("Eviction", func() {
		It("should evict the least recent line when the set is full", func() {
			for i := 0; i < 4; i++ {
				c.Access(read(sameSet(i)))
			}
			c.Access(read(sameSet(0)))

			result := c.Access(read(sameSet(4)))
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(sameSet(1)))
			Expect(c.Contains(sameSet(0))).To(BeTrue())
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should count writebacks of dirty evicted blocks", func() {
			c.Access(write(sameSet(0)))
			for i := 1; i <= 4; i++ {
				c.Access(read(sameSet(i)))
			}

			stats := c.Stats()
			Expect(stats.Evictions).To(Equal(uint64(1)))
			Expect(stats.Writebacks).To(Equal(uint64(1)))
		})

		It("should thrash on a loop one line larger than the set", func() {
			for rep := 0; rep < 8; rep++ {
				for i := 0; i < 5; i++ {
					c.Access(read(sameSet(i)))
				}
			}
			Expect(c.Stats().Hits).To(BeZero())
		})
	})

	Describe("Flush and invalidate", func() {
		It("should count writebacks for dirty blocks on flush", func() {
			c.Access(write(0x0))
			c.Access(write(0x40))
			c.Access(read(0x80))
			c.Flush()

			Expect(c.Stats().Writebacks).To(Equal(uint64(2)))
			Expect(c.Contains(0x0)).To(BeFalse())
			Expect(c.Contains(0x80)).To(BeFalse())
		})

		It("should miss after invalidation", func() {
			c.Access(read(0x1000))
			c.Invalidate(0x1000)
			Expect(c.Access(read(0x1000)).Hit).To(BeFalse())
		})
	})

	Describe("Policies", func() {
		DescribeTable("should keep hits for a working set that fits",
			func(kind replacement.Kind) {
				c, err := cache.New(smallConfig(kind))
				Expect(err).NotTo(HaveOccurred())
				for rep := 0; rep < 20; rep++ {
					for i := 0; i < 2; i++ {
						c.Access(read(sameSet(i)))
					}
				}
				Expect(c.Stats().Accesses).To(Equal(uint64(40)))
				Expect(c.Stats().Hits).To(BeNumerically(">=", 30))
			},
			Entry("LRU", replacement.LRU),
			Entry("LIRSPlus", replacement.LIRSPlus),
			Entry("AdaptiveMLRU", replacement.AdaptiveMLRU),
		)

		It("should protect a LIR line from a streaming scan", func() {
			c, err := cache.New(smallConfig(replacement.LIRSPlus))
			Expect(err).NotTo(HaveOccurred())
			hot := sameSet(0)
			c.Access(read(hot))
			c.Access(read(hot))
			for i := 1; i < 200; i++ {
				c.Access(read(sameSet(i)))
				Expect(c.Contains(hot)).To(BeTrue())
			}
		})

		It("should switch policies between accesses", func() {
			for i := 0; i < 10; i++ {
				c.Access(read(sameSet(i % 6)))
			}
			Expect(c.SetPolicy(replacement.AdaptiveMLRU)).To(Succeed())
			Expect(c.Config().Policy).To(Equal(replacement.AdaptiveMLRU))
			for i := 0; i < 10; i++ {
				c.Access(read(sameSet(i % 6)))
			}
			Expect(c.Stats().Accesses).To(Equal(uint64(20)))
			Expect(c.Engine().Stats().Switches).To(Equal(uint64(1)))
		})
	})

	It("should print cache and engine statistics", func() {
		c.Access(read(0x0))
		c.Access(read(0x0))
		var buf bytes.Buffer
		Expect(c.PrintStats(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("4KB 4-way 64B lines, 16 sets"))
		Expect(buf.String()).To(ContainSubstring("Hits:       1 (50.00%)"))
		Expect(buf.String()).To(ContainSubstring("Replacement Policy Statistics"))
	})
})

var _ = Describe("Config", func() {
	It("should describe the default LLC", func() {
		config := cache.DefaultLLCConfig()
		Expect(config.NumSets()).To(Equal(1024))
		Expect(config.Policy).To(Equal(replacement.LIRSPlus))
		Expect(config.Validate()).To(Succeed())
		Expect(cache.DefaultL2Config().Validate()).To(Succeed())
	})

	DescribeTable("should reject bad geometry",
		func(mutate func(*cache.Config)) {
			config := smallConfig(replacement.LRU)
			mutate(&config)
			Expect(config.Validate()).To(MatchError(cache.ErrInvalidConfig))
			_, err := cache.New(config)
			Expect(err).To(MatchError(cache.ErrInvalidConfig))
		},
		Entry("odd block size", func(c *cache.Config) { c.BlockSize = 48 }),
		Entry("direct mapped", func(c *cache.Config) { c.Associativity = 1 }),
		Entry("partial set", func(c *cache.Config) { c.Size = 4*1024 + 64 }),
		Entry("unknown policy", func(c *cache.Config) { c.Policy = replacement.Kind(5) }),
	)

	It("should wrap the policy error", func() {
		config := smallConfig(replacement.Kind(5))
		Expect(config.Validate()).To(MatchError(replacement.ErrUnknownPolicy))
	})
})

var _ = Describe("Baseline", func() {
	It("should hit once a line is resident", func() {
		b, err := cache.NewBaseline(smallConfig(replacement.LRU))
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Access(0x1000)).To(BeFalse())
		Expect(b.Access(0x1010)).To(BeTrue())
		Expect(b.HitRate()).To(BeNumerically("~", 0.5))
	})

	It("should hold as many lines as the cache", func() {
		b, err := cache.NewBaseline(smallConfig(replacement.LRU))
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 200; i++ {
			b.Access(uint64(i) * 64)
		}
		Expect(b.Len()).To(Equal(64))
		Expect(b.Accesses()).To(Equal(uint64(200)))
	})

	It("should not suffer conflict misses", func() {
		b, err := cache.NewBaseline(smallConfig(replacement.LRU))
		Expect(err).NotTo(HaveOccurred())
		for rep := 0; rep < 8; rep++ {
			for i := 0; i < 5; i++ {
				b.Access(sameSet(i))
			}
		}
		Expect(b.Hits()).To(Equal(uint64(35)))
	})
})
