package benchmarks

import (
	"github.com/sarchlab/llcsim/replacement"
	"github.com/sarchlab/llcsim/trace"
)

// GetWorkloads returns the standard policy comparison workloads. Footprints
// are given relative to a cache of lines lines.
func GetWorkloads(lines int) []Workload {
	return []Workload{
		loopFits(lines),
		loopThrash(lines),
		hotSetWithScan(lines),
		uniform(lines),
		zipf(lines),
		matrixMultiply(),
	}
}

func loopFits(lines int) Workload {
	return Workload{
		Name:        "loop_fits",
		Description: "Cyclic walk over half the cache",
		Records: func() ([]trace.Record, error) {
			return trace.Loop(uint64(lines/2)*64, 64, 8), nil
		},
	}
}

func loopThrash(lines int) Workload {
	return Workload{
		Name:        "loop_thrash",
		Description: "Cyclic walk 25% larger than the cache; LRU gets no hits",
		Records: func() ([]trace.Record, error) {
			return trace.Loop(uint64(lines+lines/4)*64, 64, 8), nil
		},
	}
}

// hotSetWithScan interleaves a reused quarter-cache working set with a
// stream of never-reused lines.
func hotSetWithScan(lines int) Workload {
	return Workload{
		Name:        "hot_set_with_scan",
		Description: "Reused working set polluted by a streaming scan",
		Records: func() ([]trace.Record, error) {
			hot := lines / 4
			var records []trace.Record
			next := uint64(0x40000000)
			for rep := 0; rep < 16; rep++ {
				for i := 0; i < hot; i++ {
					records = append(records, trace.Record{
						Type:    replacement.Load,
						PC:      0x400100,
						Address: uint64(i) * 64,
					})
					for s := 0; s < 4; s++ {
						records = append(records, trace.Record{
							Type:    replacement.Load,
							PC:      0x400200,
							Address: next,
						})
						next += 64
					}
				}
			}
			return records, nil
		},
	}
}

func uniform(lines int) Workload {
	return Workload{
		Name:        "uniform",
		Description: "Uniform random lines over twice the cache",
		Records: func() ([]trace.Record, error) {
			return trace.Uniform(1, 16*lines, uint64(2*lines)*64), nil
		},
	}
}

func zipf(lines int) Workload {
	return Workload{
		Name:        "zipf",
		Description: "Zipf(1.2) popularity over four times the cache",
		Records: func() ([]trace.Record, error) {
			return trace.Zipf(1, 16*lines, uint64(4*lines), 1.2)
		},
	}
}

func matrixMultiply() Workload {
	return Workload{
		Name:        "matmul",
		Description: "Naive 64x64 double matrix multiply",
		Records: func() ([]trace.Record, error) {
			return trace.MatMul(64, 8), nil
		},
	}
}
