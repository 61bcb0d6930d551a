package main

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/sarchlab/llcsim/cache"
	"github.com/sarchlab/llcsim/config"
	"github.com/sarchlab/llcsim/replacement"
	"github.com/sarchlab/llcsim/trace"
)

const noPendingPolicy = -1

// simulator feeds trace records to the LLC model and, optionally, to the
// ARC baseline.
type simulator struct {
	llc      *cache.Cache
	baseline *cache.Baseline
	log      logr.Logger

	// pending holds a policy requested by the config watcher. It is applied
	// between accesses.
	pending atomic.Int64
}

func newSimulator(cfg *config.Config, log logr.Logger) (*simulator, error) {
	cc, err := cfg.CacheConfig()
	if err != nil {
		return nil, err
	}
	llc, err := cache.New(cc, cfg.EngineOptions(log.WithName("replacement"))...)
	if err != nil {
		return nil, err
	}

	s := &simulator{llc: llc, log: log}
	s.pending.Store(noPendingPolicy)
	if cfg.Baseline {
		s.baseline, err = cache.NewBaseline(cc)
		if err != nil {
			return nil, err
		}
	}
	log.V(1).Info("cache ready",
		"sets", cc.NumSets(), "ways", cc.Associativity, "policy", cc.Policy.String())
	return s, nil
}

// requestPolicy may be called from any goroutine.
func (s *simulator) requestPolicy(kind replacement.Kind) {
	s.pending.Store(int64(kind))
}

func (s *simulator) applyPending() {
	next := s.pending.Swap(noPendingPolicy)
	if next == noPendingPolicy {
		return
	}
	if err := s.llc.SetPolicy(replacement.Kind(next)); err != nil {
		s.log.Error(err, "ignoring policy change")
	}
}

// run simulates records until the reader is exhausted or limit accesses
// have been made (limit 0 means no limit). It returns the access count.
func (s *simulator) run(r *trace.Reader, limit uint64) (uint64, error) {
	var n uint64
	for limit == 0 || n < limit {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		s.applyPending()
		s.llc.Access(rec.Access())
		if s.baseline != nil {
			s.baseline.Access(rec.Address)
		}
		n++
	}
	s.applyPending()
	return n, nil
}

func (s *simulator) report(w io.Writer) error {
	if err := s.llc.PrintStats(w); err != nil {
		return err
	}
	if s.baseline == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "ARC baseline (fully associative): %d/%d hits (%.2f%%)\n",
		s.baseline.Hits(), s.baseline.Accesses(), 100*s.baseline.HitRate())
	return err
}
