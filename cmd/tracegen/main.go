// Package main provides tracegen, which writes synthetic memory access
// traces for llcsim.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/llcsim/trace"
)

var (
	pattern = flag.String("pattern", "loop", "Access pattern: "+strings.Join(trace.Patterns(), ", "))
	output  = flag.String("o", "", "Output file (.sz is snappy compressed; default stdout)")
	n       = flag.Int("n", 100000, "Number of accesses (sequential, uniform, zipf)")
	stride  = flag.Uint64("stride", 64, "Stride in bytes (sequential, loop)")
	span    = flag.Uint64("span", 2*1024*1024, "Footprint in bytes (loop, uniform, zipf)")
	reps    = flag.Int("reps", 10, "Repetitions (loop)")
	seed    = flag.Uint64("seed", 1, "Random seed (uniform, zipf)")
	skew    = flag.Float64("skew", 1.2, "Zipf exponent, > 1 (zipf)")
	dim     = flag.Int("dim", 64, "Matrix dimension (matmul)")
)

func main() {
	flag.Parse()

	records, err := trace.Generate(*pattern, trace.Params{
		N:      *n,
		Stride: *stride,
		Span:   *span,
		Reps:   *reps,
		Seed:   *seed,
		Skew:   *skew,
		Dim:    *dim,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var out io.WriteCloser = nopCloser{os.Stdout}
	if *output != "" {
		out, err = trace.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *output, err)
			os.Exit(1)
		}
	}

	w := trace.NewWriter(out)
	if err := w.WriteComment(fmt.Sprintf("tracegen -pattern %s: %d accesses", *pattern, len(records))); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing trace: %v\n", err)
		os.Exit(1)
	}
	if err := w.WriteAll(records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing trace: %v\n", err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing trace: %v\n", err)
		os.Exit(1)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
