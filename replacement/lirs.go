package replacement

import "github.com/go-logr/logr"

// lirsSet is the private reuse-distance state of one cache set.
type lirsSet struct {
	stack recencyStack
	queue evictionQueue
	temp  temperatureModel
}

// LIRSPlusPolicy keeps, per set, a recency stack pruned below its oldest LIR line
// and a FIFO queue of resident cold lines. A cold line referenced again while
// it is still in the stack is promoted to LIR and the oldest LIR line is
// demoted. Demoted lines whose address is far, in bit distance, from every
// address in the stack are queued for early eviction.
type LIRSPlusPolicy struct {
	store *StateStore
	sets  []lirsSet
	log   logr.Logger
}

// LIRSSnapshot is a copy of the state of one set.
type LIRSSnapshot struct {
	// Stack lists entries from bottom (oldest) to top.
	Stack []StackEntry
	// Queue lists ways from head (next victim) to tail.
	Queue []int
	// Threshold is the current temperature threshold.
	Threshold int
	// Samples is the number of temperature samples observed.
	Samples uint64
	// Recomputes is the number of threshold recomputes so far.
	Recomputes uint64
}

func newLIRSPlus(store *StateStore, log logr.Logger) *LIRSPlusPolicy {
	assoc := store.Associativity()
	p := &LIRSPlusPolicy{
		store: store,
		sets:  make([]lirsSet, store.NumSets()),
		log:   log,
	}
	for set := range p.sets {
		s := &p.sets[set]
		s.stack = newRecencyStack(2 * assoc)
		s.queue = newEvictionQueue(2 * assoc)
		s.temp = newTemperatureModel()

		// Every way starts in the stack at its own index; way 0 is the
		// pre-hot LIR line and the rest queue up in way order.
		lines := store.Set(set)
		for way := range lines {
			s.stack.entries = append(s.stack.entries, StackEntry{Owner: Some(way)})
			lines[way].Class |= ClassStacked
			if !lines[way].Class.Has(ClassLIR) {
				s.queue.pushBack(lines, way)
			}
		}
	}
	return p
}

func (p *LIRSPlusPolicy) Kind() Kind { return LIRSPlus }

// SelectVictim evicts the queue head. If the incoming address still has a
// tombstone in the stack, the victim way is reused as a LIR line at that
// entry; otherwise it becomes a cold line at the top of the stack and the
// tail of the queue. An empty queue yields a bypass.
func (p *LIRSPlusPolicy) SelectVictim(set int, acc Access) Victim {
	s := &p.sets[set]
	lines := p.store.Set(set)

	way, ok := s.queue.pop(lines)
	if !ok {
		return Bypass()
	}
	line := &lines[way]
	if line.Class.Has(ClassStacked) {
		s.stack.tombstone(lines, way)
	}
	line.Class &^= ClassLIR
	line.LastAddress = acc.Address
	line.LastPC = acc.PC
	line.AccessType = acc.Type
	line.HitCount = 0

	if i, found := s.stack.findTombstone(acc.Address); found {
		s.stack.claim(lines, i, way)
		line.Class |= ClassLIR
		s.stack.moveToTop(lines, way)
		s.stack.prune(lines)
		p.demote(set)
	} else {
		s.stack.push(lines, acc.Address, way)
		s.queue.pushBack(lines, way)
	}
	p.check(set)
	return Evict(way)
}

// Update applies a hit. The settle call that follows a fill is ignored.
func (p *LIRSPlusPolicy) Update(set, way int, _ Access, afterMiss bool) {
	if afterMiss {
		return
	}
	s := &p.sets[set]
	lines := p.store.Set(set)
	line := &lines[way]
	line.HitCount++

	switch {
	case line.Class.Has(ClassLIR):
		s.stack.moveToTop(lines, way)
		s.stack.prune(lines)
	case line.Class.Has(ClassStacked):
		s.queue.remove(lines, way)
		line.Class |= ClassLIR
		s.stack.moveToTop(lines, way)
		s.stack.prune(lines)
		p.demote(set)
	default:
		s.stack.push(lines, line.LastAddress, way)
	}
	p.check(set)
}

// demote removes the bottom stack entry. A live owner becomes cold and is
// queued at the head when its temperature is above the threshold, at the
// tail otherwise.
func (p *LIRSPlusPolicy) demote(set int) {
	s := &p.sets[set]
	lines := p.store.Set(set)

	e, ok := s.stack.popBottom(lines)
	if !ok {
		return
	}
	if way, live := e.Owner.Get(); live {
		line := &lines[way]
		line.Class &^= ClassLIR | ClassStacked
		line.HitCount = 0

		t := temperature(line.LastAddress, s.stack.entries)
		if s.temp.observe(t) {
			p.log.V(1).Info("temperature threshold recomputed",
				"set", set, "threshold", s.temp.threshold, "samples", s.temp.samples)
		}
		if t >= 0 && s.temp.hot(t) {
			s.queue.pushFront(lines, way)
		} else {
			s.queue.pushBack(lines, way)
		}
	}
	s.stack.prune(lines)
}

func (p *LIRSPlusPolicy) check(set int) {
	if !debugging {
		return
	}
	s := &p.sets[set]
	assoc := p.store.Associativity()
	assert(s.stack.len() <= 2*assoc, "lirs: stack exceeds 2*assoc")
	assert(s.queue.len() <= 2*assoc, "lirs: queue exceeds 2*assoc")
}

// Snapshot returns a copy of the stack, queue and threshold state of set.
func (p *LIRSPlusPolicy) Snapshot(set int) LIRSSnapshot {
	s := &p.sets[set]
	return LIRSSnapshot{
		Stack:      s.stack.snapshot(),
		Queue:      s.queue.snapshot(),
		Threshold:  s.temp.threshold,
		Samples:    s.temp.samples,
		Recomputes: s.temp.recomputes,
	}
}
