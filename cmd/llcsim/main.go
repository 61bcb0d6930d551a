// Package main provides the entry point for llcsim.
// llcsim runs a memory access trace through a set-associative last-level
// cache and reports how the chosen replacement policy performs.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/llcsim/config"
	"github.com/sarchlab/llcsim/replacement"
	"github.com/sarchlab/llcsim/trace"
)

var (
	configPath = flag.String("config", "", "Path to simulation configuration (YAML, JSON or TOML)")
	policy     = flag.String("policy", "", "Replacement policy: lru, random, lirsplus, mlru (overrides config)")
	seed       = flag.Uint64("seed", 0, "Seed for the random policy (overrides config when non-zero)")
	baseline   = flag.Bool("baseline", false, "Also run a fully-associative ARC cache of the same size")
	gated      = flag.Bool("gated", false, "Enable score-gated demotion in the mlru policy")
	watch      = flag.Bool("watch", false, "Apply policy changes written to the config file while running")
	limit      = flag.Uint64("limit", 0, "Stop after this many accesses (0 = whole trace)")
	verbosity  = flag.Int("v", 0, "Log verbosity")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: llcsim [options] <trace[.sz]>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0)))
}

// run simulates tracePath and returns the exit status. Deferred calls,
// including stopping the CPU profile, complete before main exits.
func run(tracePath string) int {
	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log := newLogger(cfg.Verbosity)

	sim, err := newSimulator(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating cache: %v\n", err)
		return 1
	}
	if *watch {
		watcher, err := config.NewWatcher(*configPath, log.WithName("config"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching config: %v\n", err)
			return 1
		}
		watcher.Subscribe(func(c *config.Config) {
			kind, err := c.Kind()
			if err != nil {
				return
			}
			sim.requestPolicy(kind)
		})
		watcher.Start()
	}

	in, err := trace.Open(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		return 1
	}
	defer in.Close()

	n, err := sim.run(trace.NewReader(in), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error after %d accesses: %v\n", n, err)
		return 1
	}

	if *memProfile != "" {
		writeMemProfile(*memProfile)
	}

	fmt.Printf("Trace: %s\n", tracePath)
	if err := sim.report(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(v int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: v})
}

// overrides holds the command-line settings layered over the config file.
type overrides struct {
	policy    string
	seed      uint64
	baseline  bool
	gated     bool
	verbosity int
}

// loadConfig reads the config file, if any, and applies the flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else if *watch {
		return nil, fmt.Errorf("-watch needs -config")
	}
	return applyOverrides(cfg, overrides{
		policy:    *policy,
		seed:      *seed,
		baseline:  *baseline,
		gated:     *gated,
		verbosity: *verbosity,
	})
}

// applyOverrides returns a copy of cfg with o applied. Flags only ever raise
// the verbosity set in the file.
func applyOverrides(cfg *config.Config, o overrides) (*config.Config, error) {
	overridden := *cfg
	if o.policy != "" {
		overridden.Policy = o.policy
	}
	if o.seed != 0 {
		overridden.Seed = o.seed
	}
	overridden.Baseline = overridden.Baseline || o.baseline
	overridden.ScoreGatedDemotion = overridden.ScoreGatedDemotion || o.gated
	overridden.Verbosity = max(overridden.Verbosity, o.verbosity)
	if err := overridden.Validate(); err != nil {
		return nil, fmt.Errorf("%w (policies: %v)", err, replacement.Kinds())
	}
	return &overridden, nil
}

func writeMemProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
		return
	}
	defer func() { _ = f.Close() }()
	if err := pprof.WriteHeapProfile(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
	}
}
