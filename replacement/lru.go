package replacement

// lruPolicy is exact move-to-front recency over StackPosition, where 0 is
// the most recent way and assoc-1 the least.
type lruPolicy struct {
	store *StateStore
}

func newLRU(store *StateStore) *lruPolicy {
	return &lruPolicy{store: store}
}

func (p *lruPolicy) Kind() Kind { return LRU }

// SelectVictim returns the way at the bottom of the stack. Way 0 is
// returned when no way holds the bottom position, which only happens when
// another policy left its own layout behind.
func (p *lruPolicy) SelectVictim(set int, _ Access) Victim {
	lines := p.store.Set(set)
	bottom := len(lines) - 1
	for way := range lines {
		if lines[way].StackPosition == bottom {
			return Evict(way)
		}
	}
	return Evict(0)
}

func (p *lruPolicy) Update(set, way int, _ Access, _ bool) {
	lines := p.store.Set(set)
	current := lines[way].StackPosition
	for i := range lines {
		if lines[i].StackPosition < current {
			lines[i].StackPosition++
		}
	}
	lines[way].StackPosition = 0
}
