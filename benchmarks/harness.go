// Package benchmarks compares replacement policies over a fixed set of
// synthetic workloads.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/sarchlab/llcsim/cache"
	"github.com/sarchlab/llcsim/replacement"
	"github.com/sarchlab/llcsim/trace"
)

// BenchmarkResult holds the result of one workload under one policy.
type BenchmarkResult struct {
	// Workload identifies the workload
	Workload string `json:"workload"`

	// Policy is the replacement policy
	Policy string `json:"policy"`

	// Accesses is the number of trace records simulated
	Accesses uint64 `json:"accesses"`

	// Hits and Misses of the set-associative cache
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`

	// HitRate is Hits over Accesses
	HitRate float64 `json:"hit_rate"`

	// Evictions, Writebacks and Bypasses of the set-associative cache
	Evictions  uint64 `json:"evictions"`
	Writebacks uint64 `json:"writebacks"`
	Bypasses   uint64 `json:"bypasses"`

	// AverageLatency is the mean access latency in cycles
	AverageLatency float64 `json:"average_latency"`

	// BaselineHitRate is the ARC hit rate (if the baseline is enabled)
	BaselineHitRate float64 `json:"baseline_hit_rate,omitempty"`

	// Err is set if the workload could not be generated
	Err string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Workload defines a single named trace.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload stresses
	Description string

	// Records generates the trace
	Records func() ([]trace.Record, error)
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Cache is the geometry every policy runs on
	Cache cache.Config

	// Policies are compared in this order
	Policies []replacement.Kind

	// Seed seeds the random policy
	Seed uint64

	// Baseline also runs the fully-associative ARC cache
	Baseline bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Log receives engine logs (default: discard)
	Log logr.Logger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Cache:    cache.DefaultLLCConfig(),
		Policies: replacement.Kinds(),
		Seed:     1,
		Baseline: true,
		Output:   os.Stdout,
		Log:      logr.Discard(),
	}
}

// Harness runs workloads under every configured policy and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Log.GetSink() == nil {
		config.Log = logr.Discard()
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes every workload under every policy. Results are grouped by
// workload, in policy order.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.workloads)*len(h.config.Policies))

	for _, w := range h.workloads {
		records, err := w.Records()
		var baseline float64
		if err == nil && h.config.Baseline {
			baseline, err = h.runBaseline(records)
		}

		for _, kind := range h.config.Policies {
			result := BenchmarkResult{Workload: w.Name, Policy: kind.String()}
			if err != nil {
				result.Err = err.Error()
			} else {
				result = h.runWorkload(w, kind, records)
				result.BaselineHitRate = baseline
			}
			results = append(results, result)
		}
	}

	return results
}

func (h *Harness) runBaseline(records []trace.Record) (float64, error) {
	b, err := cache.NewBaseline(h.config.Cache)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		b.Access(r.Address)
	}
	return b.HitRate(), nil
}

// runWorkload simulates records on a fresh cache.
func (h *Harness) runWorkload(w Workload, kind replacement.Kind, records []trace.Record) BenchmarkResult {
	result := BenchmarkResult{Workload: w.Name, Policy: kind.String()}

	config := h.config.Cache
	config.Policy = kind
	llc, err := cache.New(config,
		replacement.WithLogger(h.config.Log),
		replacement.WithSeed(h.config.Seed))
	if err != nil {
		result.Err = err.Error()
		return result
	}

	start := time.Now()
	for _, r := range records {
		llc.Access(r.Access())
	}
	result.WallTime = time.Since(start)

	stats := llc.Stats()
	result.Accesses = stats.Accesses
	result.Hits = stats.Hits
	result.Misses = stats.Misses
	result.HitRate = stats.HitRate()
	result.Evictions = stats.Evictions
	result.Writebacks = stats.Writebacks
	result.Bypasses = stats.Bypasses
	result.AverageLatency = stats.AverageLatency()
	return result
}

// PrintResults outputs results as one table per workload.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output
	_, _ = fmt.Fprintln(out, "=== Replacement Policy Comparison ===")
	_, _ = fmt.Fprintf(out, "Cache: %dKB %d-way %dB lines\n",
		h.config.Cache.Size/1024, h.config.Cache.Associativity, h.config.Cache.BlockSize)

	last := ""
	for _, r := range results {
		if r.Workload != last {
			last = r.Workload
			_, _ = fmt.Fprintln(out, "")
			_, _ = fmt.Fprintf(out, "Workload: %s\n", r.Workload)
			if d := h.describe(r.Workload); d != "" {
				_, _ = fmt.Fprintf(out, "  Description: %s\n", d)
			}
			if r.BaselineHitRate > 0 {
				_, _ = fmt.Fprintf(out, "  ARC baseline hit rate: %6.2f%%\n", 100*r.BaselineHitRate)
			}
		}
		if r.Err != "" {
			_, _ = fmt.Fprintf(out, "  %-9s error: %s\n", r.Policy, r.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "  %-9s hit rate %6.2f%%  misses %8d  bypasses %6d  avg latency %7.2f  (%v)\n",
			r.Policy, 100*r.HitRate, r.Misses, r.Bypasses, r.AverageLatency, r.WallTime)
	}
	_, _ = fmt.Fprintln(out, "")
}

func (h *Harness) describe(name string) string {
	for _, w := range h.workloads {
		if w.Name == name {
			return w.Description
		}
	}
	return ""
}

// PrintCSV outputs results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"workload,policy,accesses,hits,misses,hit_rate,evictions,writebacks,bypasses,avg_latency,baseline_hit_rate")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%d,%.4f,%d,%d,%d,%.2f,%.4f\n",
			r.Workload,
			r.Policy,
			r.Accesses,
			r.Hits,
			r.Misses,
			r.HitRate,
			r.Evictions,
			r.Writebacks,
			r.Bypasses,
			r.AverageLatency,
			r.BaselineHitRate,
		)
	}
}

// PrintJSON outputs results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
