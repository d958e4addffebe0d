// Command benchmark runs the pipeline hazard microbenchmarks.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv             Output results in CSV format (default: human-readable)
//	-json            Output results in JSON format
//	-matrix          Compare cycle counts with forwarding/prediction toggled
//	-no-forwarding   Disable operand forwarding
//	-branch-predict  Enable predict-not-taken
//	-no-icache       Disable instruction cache statistics
//	-v               Trace every simulated cycle to stderr
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipspipe/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	matrix := flag.Bool("matrix", false, "Compare forwarding/prediction combinations")
	noForwarding := flag.Bool("no-forwarding", false, "Disable operand forwarding")
	branchPredict := flag.Bool("branch-predict", false, "Enable predict-not-taken")
	noICache := flag.Bool("no-icache", false, "Disable instruction cache statistics")
	verbose := flag.Bool("v", false, "Trace every simulated cycle to stderr")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Forwarding = !*noForwarding
	config.BranchPrediction = *branchPredict
	config.EnableICache = !*noICache
	config.Output = os.Stdout
	if *verbose {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		config.Logger = logger
	}

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

	if *matrix {
		harness.PrintMatrix(harness.RunMatrix())
		return
	}

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("MIPS Pipeline Hazard Benchmarks")
		fmt.Println("===============================")
		fmt.Printf("Forwarding: %v\n", config.Forwarding)
		fmt.Printf("Branch prediction: %v\n", config.BranchPrediction)
		fmt.Printf("I-Cache: %v\n", config.EnableICache)
		fmt.Println("")
	}

	// Run benchmarks
	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		// Print summary
		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Println("Expected characteristics:")
		fmt.Println("- independent_alu: CPI approaches 1, no hazards")
		fmt.Println("- dependency_chain: RAW on every instruction, free with forwarding")
		fmt.Println("- load_use: one stall per load even with forwarding")
		fmt.Println("- load_use_scheduled: same work, stalls hidden by reordering")
		fmt.Println("- branch_sequence: one stall per branch unless predicted")
		fmt.Println("- function_call: link register forwarded into JR")
	}

	for _, r := range results {
		if !r.Matches() {
			fmt.Fprintf(os.Stderr, "%s: expected %d cycles, got %d\n",
				r.Name, r.ExpectedCycles, r.SimulatedCycles)
			os.Exit(1)
		}
	}
}
