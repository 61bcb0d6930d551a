package replacement

import "math"

const (
	// locationDecay is applied to every line of a set on each update.
	locationDecay = 0.9
	// localityBonus is divided by the PC-to-address distance.
	localityBonus = 10.0
	// pageMask selects the bits a PC must share with the stored address to
	// earn the inverse-distance bonus.
	pageMask = ^uint64(0xff)
	// hotShareDivisor bounds admission: the hot partition grows only while
	// hotCount*hotShareDivisor < assoc.
	hotShareDivisor = 4
)

// AdaptiveMLRUPolicy splits each set into a protected hot partition and a cold
// partition. Both partitions are LRU ordered, ranked from 0 (least recent)
// upward. Cold lines are evicted from rank 0; hits on cold lines admit them
// into the hot partition, which grows while it is under a quarter of the set
// and otherwise swaps with its least recent member.
type AdaptiveMLRUPolicy struct {
	store      *StateStore
	hotCount   []int
	scoreGated bool
}

func newAdaptiveMLRU(store *StateStore, scoreGated bool) *AdaptiveMLRUPolicy {
	p := &AdaptiveMLRUPolicy{
		store:      store,
		hotCount:   make([]int, store.NumSets()),
		scoreGated: scoreGated,
	}
	for set := range p.hotCount {
		p.hotCount[set] = 1
	}
	return p
}

// seed lays out ranks for the initial partition: way 0 is the only hot line
// at hot rank 0 and every other way takes cold rank way-1.
func (p *AdaptiveMLRUPolicy) seed() {
	for set := range p.hotCount {
		p.store.ForEachWay(set, func(way int, line *LineRecord) {
			if line.Class.Has(ClassProtected) {
				line.StackPosition = 0
				return
			}
			line.StackPosition = way - 1
		})
	}
}

func (p *AdaptiveMLRUPolicy) Kind() Kind { return AdaptiveMLRU }

// HotCount returns the size of the hot partition of set.
func (p *AdaptiveMLRUPolicy) HotCount(set int) int { return p.hotCount[set] }

func (p *AdaptiveMLRUPolicy) coldTop(set int) int {
	return p.store.Associativity() - p.hotCount[set] - 1
}

// SelectVictim evicts the least recent cold line and moves it to the most
// recent cold rank, shifting the remaining cold lines down.
//
// The cold partition always holds assoc-hotCount >= 1 lines because
// admission stops below a quarter of the set, so a victim always exists.
func (p *AdaptiveMLRUPolicy) SelectVictim(set int, acc Access) Victim {
	lines := p.store.Set(set)
	victim := -1
	for way := range lines {
		if lines[way].Class.Has(ClassProtected) {
			continue
		}
		if victim < 0 || lines[way].StackPosition < lines[victim].StackPosition {
			victim = way
		}
	}
	if debugging {
		assert(victim >= 0, "mlru: no cold line in set")
	}
	if victim < 0 {
		return Bypass()
	}
	rank := lines[victim].StackPosition
	for way := range lines {
		if !lines[way].Class.Has(ClassProtected) && lines[way].StackPosition > rank {
			lines[way].StackPosition--
		}
	}

	line := &lines[victim]
	line.StackPosition = p.coldTop(set)
	line.HitCount = 0
	line.LocationScore = 0
	line.LastAddress = acc.Address
	line.LastPC = acc.PC
	return Evict(victim)
}

// Update ignores the settle call after a fill and otherwise decays scores,
// credits the touched line and reclassifies it.
func (p *AdaptiveMLRUPolicy) Update(set, way int, acc Access, afterMiss bool) {
	if afterMiss {
		return
	}
	lines := p.store.Set(set)
	for i := range lines {
		lines[i].LocationScore *= locationDecay
	}

	line := &lines[way]
	if (line.LastAddress^acc.PC)&pageMask != 0 {
		line.LastPC = 0
	}
	if line.LastPC != 0 {
		distance := math.Abs(float64(line.LastAddress) - float64(acc.PC))
		line.LocationScore += localityBonus / math.Max(distance, 1)
	} else {
		line.LocationScore++
	}
	line.HitCount++

	switch {
	case line.Class.Has(ClassProtected):
		p.touchHot(set, way)
	case p.hotCount[set]*hotShareDivisor < len(lines):
		p.admit(set, way)
	case p.scoreGated && !p.outscoresWeakestHot(set, way):
		p.touchCold(set, way)
	default:
		p.replaceLeastRecentHot(set, way)
	}
}

// touchHot moves a hot line to the most recent hot rank.
func (p *AdaptiveMLRUPolicy) touchHot(set, way int) {
	lines := p.store.Set(set)
	rank := lines[way].StackPosition
	for i := range lines {
		if lines[i].Class.Has(ClassProtected) && lines[i].StackPosition > rank {
			lines[i].StackPosition--
		}
	}
	lines[way].StackPosition = p.hotCount[set] - 1
}

// admit grows the hot partition by moving a cold line into it.
func (p *AdaptiveMLRUPolicy) admit(set, way int) {
	lines := p.store.Set(set)
	p.closeColdGap(lines, lines[way].StackPosition)
	lines[way].Class |= ClassProtected
	lines[way].StackPosition = p.hotCount[set]
	p.hotCount[set]++
}

// touchCold moves a cold line to the most recent cold rank.
func (p *AdaptiveMLRUPolicy) touchCold(set, way int) {
	lines := p.store.Set(set)
	p.closeColdGap(lines, lines[way].StackPosition)
	lines[way].StackPosition = p.coldTop(set)
}

// replaceLeastRecentHot swaps a cold line with the hot line at rank 0,
// which becomes the most recent cold line.
func (p *AdaptiveMLRUPolicy) replaceLeastRecentHot(set, way int) {
	lines := p.store.Set(set)
	rank := lines[way].StackPosition
	demoted := -1
	for i := range lines {
		switch {
		case lines[i].Class.Has(ClassProtected) && lines[i].StackPosition == 0:
			demoted = i
		case lines[i].Class.Has(ClassProtected):
			lines[i].StackPosition--
		case lines[i].StackPosition > rank:
			lines[i].StackPosition--
		}
	}
	if debugging {
		assert(demoted >= 0, "mlru: no hot line at rank 0")
	}
	if demoted >= 0 {
		lines[demoted].Class &^= ClassProtected
		lines[demoted].StackPosition = p.coldTop(set)
		lines[demoted].HitCount = 0
	}
	lines[way].Class |= ClassProtected
	lines[way].StackPosition = p.hotCount[set] - 1
}

func (p *AdaptiveMLRUPolicy) closeColdGap(lines []LineRecord, rank int) {
	for i := range lines {
		if !lines[i].Class.Has(ClassProtected) && lines[i].StackPosition > rank {
			lines[i].StackPosition--
		}
	}
}

// outscoresWeakestHot reports whether the cold line at way has a higher
// location score than the lowest-scored hot line.
func (p *AdaptiveMLRUPolicy) outscoresWeakestHot(set, way int) bool {
	lines := p.store.Set(set)
	weakest := math.Inf(1)
	for i := range lines {
		if lines[i].Class.Has(ClassProtected) && lines[i].LocationScore < weakest {
			weakest = lines[i].LocationScore
		}
	}
	return weakest < lines[way].LocationScore
}
