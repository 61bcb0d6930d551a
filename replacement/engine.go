package replacement

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
)

// Stats holds engine-level counters.
type Stats struct {
	// Policy is the active policy.
	Policy Kind
	// Misses counts victim selections.
	Misses uint64
	// Bypasses counts victim selections that returned a bypass.
	Bypasses uint64
	// Hits counts update calls reported as hits.
	Hits uint64
	// Updates counts update calls, including the settle call after a fill.
	Updates uint64
	// Switches counts policy changes after construction.
	Switches uint64
}

// Option configures an [Engine].
type Option func(*options)

type options struct {
	log        logr.Logger
	seed       uint64
	scoreGated bool
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSeed seeds the Random policy.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithScoreGatedDemotion makes AdaptiveMLRU keep a full hot partition
// unchanged when the touched cold line does not outscore the weakest hot
// line. By default the least recent hot line is always replaced.
func WithScoreGatedDemotion(enabled bool) Option {
	return func(o *options) { o.scoreGated = enabled }
}

// Engine routes victim selection and updates to the active policy and keeps
// the bookkeeping shared by all policies.
type Engine struct {
	store    *StateStore
	policies [4]Policy
	active   Policy
	log      logr.Logger

	// inFlight is set by SelectVictim and consumed by the next Update.
	inFlight bool
	stats    Stats

	lirs *LIRSPlusPolicy
	mlru *AdaptiveMLRUPolicy
}

// New allocates replacement state for numSets sets of assoc ways and
// activates kind. All four policies are built so that [Engine.SetPolicy] can
// switch between them; only kind's initial layout is seeded into the store.
func New(numSets, assoc int, kind Kind, opts ...Option) (*Engine, error) {
	if numSets < 1 || assoc < MinimumAssociativity {
		return nil, geometryError(numSets, assoc)
	}
	if !kind.Valid() {
		return nil, unknownPolicyError(kind)
	}
	o := options{log: logr.Discard(), seed: 1}
	for _, opt := range opts {
		opt(&o)
	}

	store := NewStore(numSets, assoc)
	e := &Engine{
		store: store,
		log:   o.log,
		lirs:  newLIRSPlus(store, o.log.WithName("lirsplus")),
		mlru:  newAdaptiveMLRU(store, o.scoreGated),
	}
	e.policies[LRU] = newLRU(store)
	e.policies[Random] = newRandom(assoc, o.seed)
	e.policies[LIRSPlus] = e.lirs
	e.policies[AdaptiveMLRU] = e.mlru
	if kind == AdaptiveMLRU {
		e.mlru.seed()
	}
	e.active = e.policies[kind]
	e.stats.Policy = kind

	e.log.V(1).Info("replacement state initialized",
		"sets", numSets, "ways", assoc, "policy", kind.String())
	return e, nil
}

// SelectVictim chooses the way of set to replace for acc. Unless the result
// is a bypass, the caller must call [Engine.Update] for the filled way before
// the next access.
func (e *Engine) SelectVictim(set int, acc Access) Victim {
	e.stats.Misses++
	v := e.active.SelectVictim(set, acc)
	if v.IsBypass() {
		// No fill follows, so nothing will settle the flag.
		e.stats.Bypasses++
		e.inFlight = false
		return v
	}
	e.inFlight = true
	return v
}

// Update records an access to way of set. hit is false for the call that
// follows a fill. Whether the call settles a fill is decided by the pending
// victim selection, not by hit; the two agree for callers that keep the
// select/update alternation.
func (e *Engine) Update(set, way int, acc Access, hit bool) {
	e.stats.Updates++
	if hit {
		e.stats.Hits++
	}
	afterMiss := e.inFlight
	e.inFlight = false
	e.store.Get(set, way).AccessType = acc.Type
	e.active.Update(set, way, acc, afterMiss)
}

// SetPolicy switches the active policy. Existing metadata is left as the
// previous policy wrote it.
func (e *Engine) SetPolicy(kind Kind) error {
	if !kind.Valid() {
		return unknownPolicyError(kind)
	}
	if kind == e.stats.Policy {
		return nil
	}
	e.log.Info("switching replacement policy", "from", e.stats.Policy.String(), "to", kind.String())
	e.active = e.policies[kind]
	e.stats.Policy = kind
	e.stats.Switches++
	return nil
}

// Policy returns the active policy kind.
func (e *Engine) Policy() Kind { return e.stats.Policy }

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats { return e.stats }

// Store exposes the line metadata for inspection.
func (e *Engine) Store() *StateStore { return e.store }

// Line returns a copy of the record at (set, way).
func (e *Engine) Line(set, way int) LineRecord { return *e.store.Get(set, way) }

// LIRS returns the LIRSPlus policy instance.
func (e *Engine) LIRS() *LIRSPlusPolicy { return e.lirs }

// MLRU returns the AdaptiveMLRU policy instance.
func (e *Engine) MLRU() *AdaptiveMLRUPolicy { return e.mlru }

// PrintStats writes the statistics banner to w.
func (e *Engine) PrintStats(w io.Writer) error {
	const rule = "=========================================================="
	_, err := fmt.Fprintf(w,
		"%s\n=========== Replacement Policy Statistics ================\n%s\n"+
			"Policy:   %s\nHits:     %d\nMisses:   %d\nBypasses: %d\nUpdates:  %d\n",
		rule, rule, e.stats.Policy, e.stats.Hits, e.stats.Misses, e.stats.Bypasses, e.stats.Updates)
	return err
}
