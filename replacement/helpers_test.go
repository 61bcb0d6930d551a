package replacement_test

import (
	"sort"

	. "github.com/onsi/gomega"

	"github.com/sarchlab/llcsim/replacement"
)

const testPC = 0x400000

func load(addr uint64) replacement.Access {
	return replacement.Access{PC: testPC, Address: addr, Type: replacement.Load}
}

// setModel is a minimal tag array driving an engine the way a simulator
// would: hits call Update, misses call SelectVictim, fill, then Update.
type setModel struct {
	engine   *replacement.Engine
	set      int
	resident map[uint64]int
	tags     []uint64
	valid    []bool
	hits     int
	misses   int
}

func newSetModel(engine *replacement.Engine, set int) *setModel {
	assoc := engine.Store().Associativity()
	return &setModel{
		engine:   engine,
		set:      set,
		resident: make(map[uint64]int),
		tags:     make([]uint64, assoc),
		valid:    make([]bool, assoc),
	}
}

func (m *setModel) access(addr uint64) (hit bool) {
	acc := load(addr)
	if way, ok := m.resident[addr]; ok {
		m.hits++
		m.engine.Update(m.set, way, acc, true)
		return true
	}
	m.misses++
	v := m.engine.SelectVictim(m.set, acc)
	way, ok := v.Way()
	if !ok {
		return false
	}
	if m.valid[way] {
		delete(m.resident, m.tags[way])
	}
	m.tags[way] = addr
	m.valid[way] = true
	m.resident[addr] = way
	m.engine.Update(m.set, way, acc, false)
	return false
}

func stackPositions(e *replacement.Engine, set int, include func(replacement.LineRecord) bool) []int {
	var positions []int
	e.Store().ForEachWay(set, func(_ int, line *replacement.LineRecord) {
		if include(*line) {
			positions = append(positions, line.StackPosition)
		}
	})
	sort.Ints(positions)
	return positions
}

func expectPermutation(positions []int) {
	for i, p := range positions {
		ExpectWithOffset(1, p).To(Equal(i), "positions %v are not a permutation", positions)
	}
}

func all(replacement.LineRecord) bool { return true }
