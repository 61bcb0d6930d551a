package replacement_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/llcsim/replacement"
)

var _ = Describe("Engine", func() {
	Context("construction", func() {
		It("should reject empty caches", func() {
			_, err := replacement.New(0, 16, replacement.LRU)
			Expect(err).To(MatchError(replacement.ErrInvalidGeometry))
		})

		It("should reject direct-mapped sets", func() {
			_, err := replacement.New(64, 1, replacement.LIRSPlus)
			Expect(err).To(MatchError(replacement.ErrInvalidGeometry))
			Expect(err.Error()).To(ContainSubstring("64 sets of 1 ways"))
		})

		It("should reject unknown policies", func() {
			_, err := replacement.New(4, 4, replacement.Kind(9))
			Expect(err).To(MatchError(replacement.ErrUnknownPolicy))
		})

		It("should give every line a record", func() {
			e, err := replacement.New(3, 4, replacement.LRU)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Store().NumSets()).To(Equal(3))
			Expect(e.Store().Associativity()).To(Equal(4))
			for set := 0; set < 3; set++ {
				Expect(e.Store().Set(set)).To(HaveLen(4))
				Expect(e.Line(set, 0).Class.Has(replacement.ClassLIR)).To(BeTrue())
				Expect(e.Line(set, 3).StackPosition).To(Equal(3))
			}
		})
	})

	Context("dispatch", func() {
		var e *replacement.Engine

		BeforeEach(func() {
			var err error
			e, err = replacement.New(1, 4, replacement.LRU)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should stamp the access type on update", func() {
			e.Update(0, 2, replacement.Access{Address: 0x80, Type: replacement.Store}, true)
			Expect(e.Line(0, 2).AccessType).To(Equal(replacement.Store))
		})

		It("should count misses, hits and updates", func() {
			way, _ := e.SelectVictim(0, load(0x40)).Way()
			e.Update(0, way, load(0x40), false)
			e.Update(0, way, load(0x40), true)

			stats := e.Stats()
			Expect(stats.Policy).To(Equal(replacement.LRU))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.Updates).To(Equal(uint64(2)))
			Expect(stats.Bypasses).To(BeZero())
		})

		It("should switch policies without touching metadata", func() {
			e.Update(0, 3, load(0xc0), true)
			before := e.Line(0, 3)

			Expect(e.SetPolicy(replacement.Random)).To(Succeed())
			Expect(e.Policy()).To(Equal(replacement.Random))
			Expect(e.Line(0, 3)).To(Equal(before))
			Expect(e.Stats().Switches).To(Equal(uint64(1)))

			Expect(e.SetPolicy(replacement.Random)).To(Succeed())
			Expect(e.Stats().Switches).To(Equal(uint64(1)))
		})

		It("should keep the active policy when the switch is rejected", func() {
			err := e.SetPolicy(replacement.Kind(-1))
			Expect(err).To(MatchError(replacement.ErrUnknownPolicy))
			Expect(e.Policy()).To(Equal(replacement.LRU))
		})

		It("should survive switching between every policy mid-run", func() {
			m := newSetModel(e, 0)
			for i, kind := range []replacement.Kind{
				replacement.LIRSPlus, replacement.AdaptiveMLRU, replacement.Random,
				replacement.LRU, replacement.LIRSPlus,
			} {
				Expect(e.SetPolicy(kind)).To(Succeed())
				for a := 0; a < 200; a++ {
					m.access(uint64((a*7+i)%11+1) << 6)
				}
			}
			Expect(m.hits + m.misses).To(Equal(1000))
		})

		It("should print the statistics banner", func() {
			way, _ := e.SelectVictim(0, load(0x40)).Way()
			e.Update(0, way, load(0x40), false)

			var buf bytes.Buffer
			Expect(e.PrintStats(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("Replacement Policy Statistics"))
			Expect(buf.String()).To(ContainSubstring("Policy:   lru"))
			Expect(buf.String()).To(ContainSubstring("Misses:   1"))
		})
	})
})

var _ = Describe("Kind", func() {
	DescribeTable("ParseKind",
		func(input string, want replacement.Kind) {
			kind, err := replacement.ParseKind(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(want))
		},
		Entry("lru", "lru", replacement.LRU),
		Entry("number", "1", replacement.Random),
		Entry("upper case", "LIRSPlus", replacement.LIRSPlus),
		Entry("alias", "lirs", replacement.LIRSPlus),
		Entry("mlru", " mlru ", replacement.AdaptiveMLRU),
		Entry("mlru number", "3", replacement.AdaptiveMLRU),
	)

	It("should reject unknown names", func() {
		_, err := replacement.ParseKind("plru")
		Expect(err).To(MatchError(replacement.ErrUnknownPolicy))
	})

	It("should round-trip every name", func() {
		for _, kind := range replacement.Kinds() {
			parsed, err := replacement.ParseKind(kind.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(kind))
		}
		Expect(replacement.Kind(7).String()).To(Equal("Kind(7)"))
	})

	It("should parse access types", func() {
		t, ok := replacement.ParseAccessType("rfo")
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(replacement.Store))
		_, ok = replacement.ParseAccessType("bogus")
		Expect(ok).To(BeFalse())
		Expect(replacement.Writeback.String()).To(Equal("writeback"))
	})

	It("should describe victims", func() {
		Expect(replacement.Evict(3).String()).To(Equal("way 3"))
		Expect(replacement.Bypass().IsBypass()).To(BeTrue())
		_, ok := replacement.Bypass().Way()
		Expect(ok).To(BeFalse())
	})
})
