package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipspipe/report"
	"github.com/sarchlab/mipspipe/timing/cache"
	"github.com/sarchlab/mipspipe/timing/core"
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// Speedup is the speedup over an unpipelined machine
	Speedup float64 `json:"speedup"`

	// StallCycles is the number of stall cycles
	StallCycles uint64 `json:"stall_cycles"`

	// Forwards is the number of forwarded operands
	Forwards uint64 `json:"forwards"`

	// DataHazards is the number of instructions that hit a RAW hazard
	DataHazards uint64 `json:"data_hazards"`

	// LoadUseStalls is the number of load-use stalls
	LoadUseStalls uint64 `json:"load_use_stalls"`

	// BranchStalls is the number of control instructions seen
	BranchStalls uint64 `json:"branch_stalls"`

	// ICacheHits/Misses (if cache enabled)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// ExpectedCycles is the reference cycle count, 0 when the harness
	// configuration differs from the reference one
	ExpectedCycles uint64 `json:"expected_cycles,omitempty"`

	// Complete is false if the run hit the cycle cap
	Complete bool `json:"complete"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Matches reports whether the run agrees with the reference cycle count.
// Results without a reference always match.
func (r BenchmarkResult) Matches() bool {
	return r.ExpectedCycles == 0 || r.ExpectedCycles == r.SimulatedCycles
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the MIPS machine code to run
	Program []uint32

	// ExpectedCycles is the cycle count with forwarding enabled and branch
	// prediction disabled (0 = unchecked)
	ExpectedCycles uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Forwarding enables operand forwarding
	Forwarding bool

	// BranchPrediction enables predict-not-taken
	BranchPrediction bool

	// EnableICache enables instruction cache statistics
	EnableICache bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger, if set, receives per-cycle traces
	Logger *logrus.Logger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Forwarding:       true,
		BranchPrediction: false,
		EnableICache:     true,
		Output:           os.Stdout,
	}
}

// reference reports whether the configuration is the one ExpectedCycles
// was measured with.
func (c HarnessConfig) reference() bool {
	return c.Forwarding && !c.BranchPrediction
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench, h.config)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark, config HarnessConfig) BenchmarkResult {
	opts := []pipeline.PipelineOption{
		pipeline.WithForwarding(config.Forwarding),
		pipeline.WithBranchPrediction(config.BranchPrediction),
	}
	if config.EnableICache {
		opts = append(opts, pipeline.WithFetchCache(cache.DefaultL1IConfig()))
	}
	if config.Logger != nil {
		opts = append(opts, pipeline.WithLogger(config.Logger))
	}

	c := core.NewCore(bench.Program, opts...)

	// Run simulation and measure time
	start := time.Now()
	c.Run()
	wallTime := time.Since(start)

	res := c.Result()
	stats := res.Stats
	cpi := report.CPI(stats)
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 cpi,
		Speedup:             report.Speedup(cpi),
		StallCycles:         stats.Stalls,
		Forwards:            stats.Forwards,
		DataHazards:         stats.DataHazards,
		LoadUseStalls:       stats.LoadUseStalls,
		BranchStalls:        stats.BranchStalls,
		Complete:            res.Complete,
		WallTime:            wallTime,
	}
	if config.reference() {
		result.ExpectedCycles = bench.ExpectedCycles
	}

	// Collect cache stats if enabled
	if icStats, ok := c.Pipeline.FetchCacheStats(); ok {
		result.ICacheHits = icStats.Hits
		result.ICacheMisses = icStats.Misses
	}

	return result
}

// MatrixRow holds the cycle counts of one benchmark under every
// forwarding/prediction combination.
type MatrixRow struct {
	Name     string `json:"name"`
	Baseline uint64 `json:"baseline"`
	Forward  uint64 `json:"forwarding"`
	Predict  uint64 `json:"prediction"`
	Both     uint64 `json:"both"`
}

// RunMatrix runs every benchmark with forwarding and branch prediction
// toggled independently.
func (h *Harness) RunMatrix() []MatrixRow {
	rows := make([]MatrixRow, 0, len(h.benchmarks))

	cycles := func(bench Benchmark, fwd, bp bool) uint64 {
		config := h.config
		config.Forwarding = fwd
		config.BranchPrediction = bp
		config.EnableICache = false
		config.Logger = nil
		return h.runBenchmark(bench, config).SimulatedCycles
	}

	for _, bench := range h.benchmarks {
		rows = append(rows, MatrixRow{
			Name:     bench.Name,
			Baseline: cycles(bench, false, false),
			Forward:  cycles(bench, true, false),
			Predict:  cycles(bench, false, true),
			Both:     cycles(bench, true, true),
		})
	}

	return rows
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Pipeline Hazard Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		if r.ExpectedCycles > 0 {
			status := "ok"
			if !r.Matches() {
				status = "MISMATCH"
			}
			_, _ = fmt.Fprintf(h.config.Output, "  Expected Cycles:      %d (%s)\n", r.ExpectedCycles, status)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Speedup:              %.2fx\n", r.Speedup)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Hazards ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Forwards:             %d\n", r.Forwards)
		_, _ = fmt.Fprintf(h.config.Output, "  Load-Use Stalls:      %d\n", r.LoadUseStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Branch Stalls:        %d\n", r.BranchStalls)

		if r.ICacheHits > 0 || r.ICacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- I-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.ICacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,forwards,data_hazards,load_use_stalls,branch_stalls,icache_hits,icache_misses,expected_cycles")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.Forwards,
			r.DataHazards,
			r.LoadUseStalls,
			r.BranchStalls,
			r.ICacheHits,
			r.ICacheMisses,
			r.ExpectedCycles,
		)
	}
}

// PrintMatrix outputs the forwarding/prediction comparison table.
func (h *Harness) PrintMatrix(rows []MatrixRow) {
	_, _ = fmt.Fprintf(h.config.Output, "%-20s %10s %10s %10s %10s\n",
		"benchmark", "baseline", "forwarding", "prediction", "both")
	for _, r := range rows {
		_, _ = fmt.Fprintf(h.config.Output, "%-20s %10d %10d %10d %10d\n",
			r.Name, r.Baseline, r.Forward, r.Predict, r.Both)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Config describes the benchmark configuration
	Config BenchmarkConfig `json:"config"`
}

// BenchmarkConfig describes the harness configuration used.
type BenchmarkConfig struct {
	Forwarding       bool `json:"forwarding"`
	BranchPrediction bool `json:"branch_prediction"`
	ICacheEnabled    bool `json:"icache_enabled"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the aggregate cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// Mismatches is the number of results that missed their reference
	Mismatches int `json:"mismatches"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	// Calculate summary statistics
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	mismatches := 0
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
		if !r.Matches() {
			mismatches++
		}
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	out := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config: BenchmarkConfig{
				Forwarding:       h.config.Forwarding,
				BranchPrediction: h.config.BranchPrediction,
				ICacheEnabled:    h.config.EnableICache,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			Mismatches:        mismatches,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
