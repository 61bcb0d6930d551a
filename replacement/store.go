package replacement

import "fmt"

// ClassBits holds membership flags of a line.
type ClassBits uint8

const (
	// ClassLIR marks a LIRSPlus hot (low inter-reference recency) line.
	ClassLIR ClassBits = 1 << iota
	// ClassStacked marks a line that owns an entry in the LIRSPlus recency stack.
	ClassStacked
	// ClassProtected marks a line inside the AdaptiveMLRU hot partition.
	ClassProtected
)

// Has reports whether all bits of flags are set.
func (c ClassBits) Has(flags ClassBits) bool { return c&flags == flags }

func (c ClassBits) String() string {
	s := ""
	for _, f := range []struct {
		bit  ClassBits
		name string
	}{{ClassLIR, "L"}, {ClassStacked, "S"}, {ClassProtected, "P"}} {
		if c&f.bit != 0 {
			s += f.name
		} else {
			s += "-"
		}
	}
	return s
}

// OptIndex is an index that may be absent.
type OptIndex struct {
	index int
	valid bool
}

// Some returns a present index.
func Some(i int) OptIndex { return OptIndex{index: i, valid: true} }

// None returns an absent index.
func None() OptIndex { return OptIndex{} }

// Get returns the index and whether it is present.
func (o OptIndex) Get() (int, bool) { return o.index, o.valid }

// IsNone reports whether the index is absent.
func (o OptIndex) IsNone() bool { return !o.valid }

func (o OptIndex) String() string {
	if !o.valid {
		return "none"
	}
	return fmt.Sprint(o.index)
}

// LineRecord is the decision metadata attached to one way of one set.
type LineRecord struct {
	// StackPosition is the recency rank. LRU uses 0 as most recent;
	// AdaptiveMLRU ranks inside each partition with higher as more recent;
	// LIRSPlus stores the index of the line's recency stack entry.
	StackPosition int
	// LocationScore is the decayed locality score used by AdaptiveMLRU.
	LocationScore float64
	// Class holds membership flags.
	Class ClassBits
	// QueuePosition is the slot in the LIRSPlus eviction queue.
	QueuePosition OptIndex
	// HitCount counts accesses since the line was last filled or demoted.
	HitCount uint32
	// LastAddress and LastPC are the most recent address and PC stamped on
	// the line.
	LastAddress uint64
	LastPC      uint64
	// AccessType is the last access type seen, for diagnostics.
	AccessType AccessType
}

// StateStore owns the LineRecords of every set, laid out as one arena indexed by
// set*assoc+way.
type StateStore struct {
	numSets int
	assoc   int
	lines   []LineRecord
}

// NewStore creates a store with identity stack positions and way 0 of every
// set marked pre-hot.
func NewStore(numSets, assoc int) *StateStore {
	s := &StateStore{
		numSets: numSets,
		assoc:   assoc,
		lines:   make([]LineRecord, numSets*assoc),
	}
	for set := 0; set < numSets; set++ {
		lines := s.Set(set)
		for way := range lines {
			lines[way] = LineRecord{
				StackPosition: way,
				QueuePosition: None(),
			}
		}
		lines[0].Class = ClassLIR | ClassProtected
	}
	return s
}

// NumSets returns the number of sets.
func (s *StateStore) NumSets() int { return s.numSets }

// Associativity returns the number of ways per set.
func (s *StateStore) Associativity() int { return s.assoc }

// Get returns the record at (set, way).
func (s *StateStore) Get(set, way int) *LineRecord {
	return &s.lines[set*s.assoc+way]
}

// Set returns the records of one set, indexed by way.
func (s *StateStore) Set(set int) []LineRecord {
	base := set * s.assoc
	return s.lines[base : base+s.assoc : base+s.assoc]
}

// ForEachWay calls fn for every way of set in way order.
func (s *StateStore) ForEachWay(set int, fn func(way int, line *LineRecord)) {
	lines := s.Set(set)
	for way := range lines {
		fn(way, &lines[way])
	}
}
