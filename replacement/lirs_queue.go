package replacement

// evictionQueue is a fixed-capacity ring of ways in FIFO order. The head is
// the next eviction candidate. Every queued way's QueuePosition holds its
// ring slot; the methods keep that true whenever they move entries.
type evictionQueue struct {
	slots      []int
	head, size int
}

func newEvictionQueue(capacity int) evictionQueue {
	return evictionQueue{slots: make([]int, capacity)}
}

func (q *evictionQueue) len() int { return q.size }

func (q *evictionQueue) next(p int) int {
	if p == len(q.slots)-1 {
		return 0
	}
	return p + 1
}

func (q *evictionQueue) prev(p int) int {
	if p == 0 {
		return len(q.slots) - 1
	}
	return p - 1
}

func (q *evictionQueue) tail() int {
	return (q.head + q.size) % len(q.slots)
}

// pop removes the head way.
func (q *evictionQueue) pop(lines []LineRecord) (int, bool) {
	if q.size == 0 {
		return 0, false
	}
	way := q.slots[q.head]
	lines[way].QueuePosition = None()
	q.head = q.next(q.head)
	q.size--
	return way, true
}

// pushBack appends way at the tail.
func (q *evictionQueue) pushBack(lines []LineRecord, way int) {
	if debugging {
		assert(q.size < len(q.slots), "lirs: eviction queue overflow")
	}
	if q.size == len(q.slots) {
		return
	}
	slot := q.tail()
	q.slots[slot] = way
	lines[way].QueuePosition = Some(slot)
	q.size++
}

// pushFront inserts way before the head so that it is evicted next.
func (q *evictionQueue) pushFront(lines []LineRecord, way int) {
	if debugging {
		assert(q.size < len(q.slots), "lirs: eviction queue overflow")
	}
	if q.size == len(q.slots) {
		return
	}
	q.head = q.prev(q.head)
	q.slots[q.head] = way
	lines[way].QueuePosition = Some(q.head)
	q.size++
}

// remove takes way out of the queue, shifting later entries one slot toward
// the head.
func (q *evictionQueue) remove(lines []LineRecord, way int) bool {
	slot, ok := q.slotOf(lines, way)
	if !ok {
		return false
	}
	end := q.prev(q.tail())
	for p := slot; p != end; p = q.next(p) {
		q.slots[p] = q.slots[q.next(p)]
		lines[q.slots[p]].QueuePosition = Some(p)
	}
	q.size--
	lines[way].QueuePosition = None()
	return true
}

// slotOf finds the slot holding way, trusting its QueuePosition first.
func (q *evictionQueue) slotOf(lines []LineRecord, way int) (int, bool) {
	if slot, ok := lines[way].QueuePosition.Get(); ok && q.holds(slot) && q.slots[slot] == way {
		return slot, true
	}
	for i, p := 0, q.head; i < q.size; i, p = i+1, q.next(p) {
		if q.slots[p] == way {
			return p, true
		}
	}
	return 0, false
}

// holds reports whether slot is inside the occupied span.
func (q *evictionQueue) holds(slot int) bool {
	if slot < 0 || slot >= len(q.slots) {
		return false
	}
	offset := (slot - q.head + len(q.slots)) % len(q.slots)
	return offset < q.size
}

// snapshot returns the queued ways from head to tail.
func (q *evictionQueue) snapshot() []int {
	ways := make([]int, 0, q.size)
	for i, p := 0, q.head; i < q.size; i, p = i+1, q.next(p) {
		ways = append(ways, q.slots[p])
	}
	return ways
}
