// Package main provides the entry point for mipspipe.
// mipspipe is a cycle-by-cycle MIPS 5-stage pipeline hazard simulator.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("mipspipe - MIPS 5-Stage Pipeline Hazard Simulator")
	fmt.Println("")
	fmt.Println("Usage: pipesim [options] <program.hex>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -forwarding      Enable operand forwarding (default true)")
	fmt.Println("  -branch-predict  Enable predict-not-taken")
	fmt.Println("  -config          Path to run configuration JSON file")
	fmt.Println("  -json            Print the report as JSON")
	fmt.Println("  -icache          Attach the L1 instruction cache model")
	fmt.Println("  -v               Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the hazard microbenchmarks.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}
