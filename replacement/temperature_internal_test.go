package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("temperature", func() {
	It("should take the smallest highest differing bit", func() {
		entries := []StackEntry{{Address: 0x1000}, {Address: 0x1010}}
		Expect(temperature(0x1018, entries)).To(Equal(3))
		Expect(temperature(0x9000, entries)).To(Equal(15))
	})

	It("should be -1 on an exact match and 63 with no entries", func() {
		Expect(temperature(0x40, []StackEntry{{Address: 0x40}})).To(Equal(-1))
		Expect(temperature(0x40, nil)).To(Equal(63))
	})
})

var _ = Describe("temperatureModel", func() {
	var m temperatureModel

	BeforeEach(func() {
		m = newTemperatureModel()
	})

	It("should keep the initial threshold until the first recompute", func() {
		for i := 0; i < 15; i++ {
			Expect(m.observe(5)).To(BeFalse())
		}
		Expect(m.threshold).To(Equal(38))
		Expect(m.observe(5)).To(BeTrue())
		Expect(m.threshold).To(Equal(6))
		Expect(m.recomputes).To(Equal(uint64(1)))
	})

	It("should cap the threshold", func() {
		for i := 0; i < 16; i++ {
			m.observe(40)
		}
		Expect(m.threshold).To(Equal(30))
	})

	It("should ignore negative samples", func() {
		Expect(m.observe(-1)).To(BeFalse())
		Expect(m.samples).To(BeZero())
	})

	It("should call strictly larger temperatures hot", func() {
		for i := 0; i < 16; i++ {
			m.observe(5)
		}
		Expect(m.hot(6)).To(BeFalse())
		Expect(m.hot(7)).To(BeTrue())
	})
})
