package replacement

import "math/rand/v2"

type randomPolicy struct {
	assoc int
	rng   *rand.Rand
}

func newRandom(assoc int, seed uint64) *randomPolicy {
	return &randomPolicy{
		assoc: assoc,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (p *randomPolicy) Kind() Kind { return Random }

func (p *randomPolicy) SelectVictim(int, Access) Victim {
	return Evict(p.rng.IntN(p.assoc))
}

// Update is a no-op: random replacement keeps no state.
func (p *randomPolicy) Update(int, int, Access, bool) {}
