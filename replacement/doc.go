// Package replacement decides which way of a set-associative cache set is
// evicted on a miss and keeps the per-line bookkeeping every policy needs.
//
// The engine owns decision metadata only. A simulator that owns the data
// array calls [Engine.SelectVictim] on a miss, performs the fill, and then
// calls [Engine.Update] for the filled way; on a hit it calls only
// [Engine.Update]. Sets are independent: no policy reads or writes another
// set's state.
//
// Four policies are available: [LRU], [Random], [AdaptiveMLRU] (a hot/cold
// partition keyed by a decayed locality score) and [LIRSPlus] (a pruned
// recency stack paired with a circular eviction queue and an adaptive
// temperature threshold).
//
// An Engine is not safe for concurrent use.
package replacement
