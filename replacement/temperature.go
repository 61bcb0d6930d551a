package replacement

import "math/bits"

const (
	// temperatureClasses is the number of bit-distance classes (0..63).
	temperatureClasses = 64
	// initialThreshold is used until the first recompute.
	initialThreshold = 38
	// maxThreshold caps every recomputed threshold.
	maxThreshold = 30
	// recomputeEvery is the number of samples between recomputes.
	recomputeEvery = 16
)

// temperature returns the smallest, over stack entries, of the highest bit
// position at which addr differs from the entry's address. It is -1 when
// some entry holds addr exactly and 63 for an empty stack.
func temperature(addr uint64, entries []StackEntry) int {
	t := temperatureClasses - 1
	for _, e := range entries {
		d := addr ^ e.Address
		if d == 0 {
			return -1
		}
		t = min(t, bits.Len64(d)-1)
	}
	return t
}

// temperatureModel is a histogram of temperature samples and the adaptive
// threshold derived from it.
type temperatureModel struct {
	histogram  [temperatureClasses]uint64
	samples    uint64
	threshold  int
	recomputes uint64
}

func newTemperatureModel() temperatureModel {
	return temperatureModel{threshold: initialThreshold}
}

// observe folds t into the histogram and reports whether the threshold was
// recomputed. Negative samples are ignored.
func (m *temperatureModel) observe(t int) bool {
	if t < 0 {
		return false
	}
	m.histogram[t]++
	m.samples++
	if m.samples%recomputeEvery != 0 {
		return false
	}
	m.recompute()
	return true
}

// recompute sets the threshold to the number of leading classes whose
// cumulative count reaches half of all samples, capped at maxThreshold.
func (m *temperatureModel) recompute() {
	half := m.samples / 2
	var cumulative uint64
	threshold := 0
	for cumulative < half && threshold < maxThreshold {
		cumulative += m.histogram[threshold]
		threshold++
	}
	m.threshold = threshold
	m.recomputes++
}

// hot reports whether t lies above the threshold.
func (m *temperatureModel) hot(t int) bool {
	return t > m.threshold
}
