package trace

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/sarchlab/llcsim/replacement"
)

// Program counters used by the generators, one per access stream.
const (
	streamPC = 0x400000
	matrixPC = 0x401000
)

// Base addresses of the generated matrices.
const (
	matrixA = 0x10000000
	matrixB = 0x20000000
	matrixC = 0x30000000
)

// Sequential emits n loads with a fixed stride.
func Sequential(n int, stride uint64) []Record {
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			Type:    replacement.Load,
			PC:      streamPC,
			Address: uint64(i) * stride,
		})
	}
	return records
}

// Loop walks span bytes with the given stride reps times.
func Loop(span, stride uint64, reps int) []Record {
	if stride == 0 {
		return nil
	}
	var records []Record
	for r := 0; r < reps; r++ {
		for addr := uint64(0); addr < span; addr += stride {
			records = append(records, Record{
				Type:    replacement.Load,
				PC:      streamPC,
				Address: addr,
			})
		}
	}
	return records
}

// Uniform emits n loads drawn uniformly from [0, span), aligned to 64 bytes.
func Uniform(seed uint64, n int, span uint64) []Record {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	lines := max(span/64, 1)
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			Type:    replacement.Load,
			PC:      streamPC + uint64(i%4)*4,
			Address: rng.Uint64N(lines) * 64,
		})
	}
	return records
}

// Zipf emits n loads over the given number of 64-byte lines with Zipf
// popularity of exponent s (s > 1). Line 0 is the most popular.
func Zipf(seed uint64, n int, lines uint64, s float64) ([]Record, error) {
	if s <= 1 || lines == 0 {
		return nil, fmt.Errorf("zipf needs s > 1 and lines > 0, got s=%g lines=%d", s, lines)
	}
	rng := rand.New(rand.NewPCG(seed, seed+1))
	z := rand.NewZipf(rng, s, 1, lines-1)
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			Type:    replacement.Load,
			PC:      streamPC,
			Address: z.Uint64() * 64,
		})
	}
	return records, nil
}

// MatMul emits the access stream of a naive row-major dim x dim matrix
// multiply C += A * B with elem-byte elements: two loads per inner
// iteration and a store per output element.
func MatMul(dim int, elem uint64) []Record {
	records := make([]Record, 0, dim*dim*(2*dim+1))
	at := func(base uint64, row, col int) uint64 {
		return base + (uint64(row)*uint64(dim)+uint64(col))*elem
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			for k := 0; k < dim; k++ {
				records = append(records,
					Record{Type: replacement.Load, PC: matrixPC, Address: at(matrixA, i, k)},
					Record{Type: replacement.Load, PC: matrixPC + 4, Address: at(matrixB, k, j)},
				)
			}
			records = append(records,
				Record{Type: replacement.Store, PC: matrixPC + 8, Address: at(matrixC, i, j)})
		}
	}
	return records
}

// Interleave merges record streams round robin, tagging each record with
// the index of its stream as the thread id.
func Interleave(streams ...[]Record) []Record {
	var total int
	for _, s := range streams {
		total += len(s)
	}
	records := make([]Record, 0, total)
	for i := 0; len(records) < total; i++ {
		for tid, s := range streams {
			if i < len(s) {
				rec := s[i]
				rec.ThreadID = uint32(tid)
				records = append(records, rec)
			}
		}
	}
	return records
}

// Pattern generates records from parameters shared by the CLI generators.
type Pattern func(p Params) ([]Record, error)

// Params are the knobs understood by the named patterns.
type Params struct {
	N      int
	Stride uint64
	Span   uint64
	Reps   int
	Seed   uint64
	Skew   float64
	Dim    int
}

var patterns = map[string]Pattern{
	"sequential": func(p Params) ([]Record, error) { return Sequential(p.N, p.Stride), nil },
	"loop":       func(p Params) ([]Record, error) { return Loop(p.Span, p.Stride, p.Reps), nil },
	"uniform":    func(p Params) ([]Record, error) { return Uniform(p.Seed, p.N, p.Span), nil },
	"zipf": func(p Params) ([]Record, error) {
		return Zipf(p.Seed, p.N, max(p.Span/64, 1), p.Skew)
	},
	"matmul": func(p Params) ([]Record, error) { return MatMul(p.Dim, 8), nil },
}

// Patterns returns the names accepted by [Generate], sorted.
func Patterns() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate runs the named pattern.
func Generate(name string, p Params) ([]Record, error) {
	gen, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown trace pattern %q", name)
	}
	return gen(p)
}
