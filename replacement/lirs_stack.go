package replacement

// StackEntry is one recency stack entry. A tombstone keeps the address of a
// line that has left the cache but has no owning way.
type StackEntry struct {
	Address uint64
	Owner   OptIndex
}

// recencyStack is ordered from the oldest entry (index 0, the bottom) to the
// most recent (the top). Every live entry's owner has StackPosition equal to
// the entry index and ClassStacked set; the methods below keep that true
// whenever they shift entries.
type recencyStack struct {
	entries []StackEntry
}

func newRecencyStack(capacity int) recencyStack {
	return recencyStack{entries: make([]StackEntry, 0, capacity)}
}

func (s *recencyStack) len() int { return len(s.entries) }

func (s *recencyStack) full() bool { return len(s.entries) == cap(s.entries) }

// indexOf finds the entry owned by way, trusting its StackPosition first.
func (s *recencyStack) indexOf(lines []LineRecord, way int) (int, bool) {
	if pos := lines[way].StackPosition; pos >= 0 && pos < len(s.entries) {
		if owner, ok := s.entries[pos].Owner.Get(); ok && owner == way {
			return pos, true
		}
	}
	for i, e := range s.entries {
		if owner, ok := e.Owner.Get(); ok && owner == way {
			return i, true
		}
	}
	return 0, false
}

// findTombstone returns the newest tombstone carrying addr.
func (s *recencyStack) findTombstone(addr uint64) (int, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Owner.IsNone() && s.entries[i].Address == addr {
			return i, true
		}
	}
	return 0, false
}

// tombstone vacates the entry owned by way without compacting.
func (s *recencyStack) tombstone(lines []LineRecord, way int) {
	if i, ok := s.indexOf(lines, way); ok {
		s.entries[i].Owner = None()
	}
	lines[way].Class &^= ClassStacked
}

// claim hands the tombstone at i to way.
func (s *recencyStack) claim(lines []LineRecord, i, way int) {
	s.entries[i].Owner = Some(way)
	lines[way].StackPosition = i
	lines[way].Class |= ClassStacked
}

// push appends an entry for way at the top. A full stack first drops its
// oldest non-LIR entry.
func (s *recencyStack) push(lines []LineRecord, addr uint64, way int) {
	if s.full() {
		s.dropOldestCold(lines)
	}
	s.entries = append(s.entries, StackEntry{Address: addr, Owner: Some(way)})
	lines[way].StackPosition = len(s.entries) - 1
	lines[way].Class |= ClassStacked
}

func (s *recencyStack) dropOldestCold(lines []LineRecord) {
	for i, e := range s.entries {
		owner, live := e.Owner.Get()
		if live && lines[owner].Class.Has(ClassLIR) {
			continue
		}
		if live {
			lines[owner].Class &^= ClassStacked
		}
		s.removeAt(lines, i)
		return
	}
}

// moveToTop moves the entry owned by way to the top, appending a fresh one
// when way has none.
func (s *recencyStack) moveToTop(lines []LineRecord, way int) {
	i, ok := s.indexOf(lines, way)
	if !ok {
		s.push(lines, lines[way].LastAddress, way)
		return
	}
	s.removeAt(lines, i)
	s.entries = append(s.entries, StackEntry{Address: lines[way].LastAddress, Owner: Some(way)})
	lines[way].StackPosition = len(s.entries) - 1
}

// popBottom removes and returns the bottom entry. The owner, if any, keeps
// its flags; the caller decides what it becomes.
func (s *recencyStack) popBottom(lines []LineRecord) (StackEntry, bool) {
	if len(s.entries) == 0 {
		return StackEntry{}, false
	}
	e := s.entries[0]
	s.removeAt(lines, 0)
	return e, true
}

// prune strips tombstones and cold entries from the bottom until a LIR entry
// is the bottom or the stack is empty.
func (s *recencyStack) prune(lines []LineRecord) {
	for len(s.entries) > 0 {
		owner, live := s.entries[0].Owner.Get()
		if live {
			if lines[owner].Class.Has(ClassLIR) {
				return
			}
			lines[owner].Class &^= ClassStacked
		}
		s.removeAt(lines, 0)
	}
}

// removeAt deletes entry i and re-stamps the owners of the entries above it.
func (s *recencyStack) removeAt(lines []LineRecord, i int) {
	copy(s.entries[i:], s.entries[i+1:])
	s.entries = s.entries[:len(s.entries)-1]
	for j := i; j < len(s.entries); j++ {
		if owner, ok := s.entries[j].Owner.Get(); ok {
			lines[owner].StackPosition = j
		}
	}
}

func (s *recencyStack) snapshot() []StackEntry {
	return append([]StackEntry(nil), s.entries...)
}
