// Package main provides the entry point for llcsim.
// llcsim is a trace-driven last-level cache simulator for comparing
// replacement policies, built on Akita cache components.
//
// For the full CLI, use: go run ./cmd/llcsim
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/llcsim/replacement"
)

func main() {
	fmt.Println("llcsim - Last-Level Cache Replacement Simulator")
	fmt.Println("Built on Akita cache components")
	fmt.Println("")
	fmt.Println("Usage: llcsim [options] <trace[.sz]>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to simulation configuration file")
	fmt.Println("  -policy    Replacement policy")
	fmt.Println("  -baseline  Compare with a fully-associative ARC cache")
	fmt.Println("  -watch     Follow policy changes in the config file")
	fmt.Println("  -v         Log verbosity")
	fmt.Println("")
	fmt.Print("Policies:")
	for _, kind := range replacement.Kinds() {
		fmt.Printf(" %s", kind)
	}
	fmt.Println("")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/llcsim' for the full CLI and")
	fmt.Println("'go run ./cmd/tracegen' to generate traces.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/llcsim' instead.")
	}
}
