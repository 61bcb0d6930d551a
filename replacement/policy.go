package replacement

// Policy is one replacement algorithm operating on a shared [StateStore].
// The set of implementations is closed: [LRU], [Random], [AdaptiveMLRU] and
// [LIRSPlus].
type Policy interface {
	// Kind identifies the policy.
	Kind() Kind
	// SelectVictim chooses the way of set to evict for acc.
	SelectVictim(set int, acc Access) Victim
	// Update records an access to way. afterMiss is true when the call
	// settles the line just filled after SelectVictim rather than a hit.
	Update(set, way int, acc Access, afterMiss bool)
}

var (
	_ Policy = (*lruPolicy)(nil)
	_ Policy = (*randomPolicy)(nil)
	_ Policy = (*AdaptiveMLRUPolicy)(nil)
	_ Policy = (*LIRSPlusPolicy)(nil)
)
