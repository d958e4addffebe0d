// Package core provides the hazard simulation entry point.
// It wraps the pipeline implementation to provide a high-level interface.
package core

import (
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

// SimulationResult is the outcome of one run.
type SimulationResult struct {
	// Stats holds the final counters, including the fixed-point CPI.
	Stats pipeline.Statistics
	// History holds the recorded cycles, oldest first.
	History []pipeline.CycleRecord
	// Stages holds the final contents of IF, ID, EX, MEM and WB.
	Stages [pipeline.NumStages]pipeline.Slot
	// Hazard is the hazard report of the last simulated cycle.
	Hazard pipeline.HazardReport
	// Complete is true if every instruction drained before the cycle cap.
	Complete bool
}

// Simulate runs instructions through a fresh pipeline and returns the
// result. Each call owns its own state, so concurrent calls are safe.
func Simulate(instructions []uint32, forwarding, branchPredict bool) SimulationResult {
	c := NewCore(instructions,
		pipeline.WithForwarding(forwarding),
		pipeline.WithBranchPrediction(branchPredict),
	)
	c.Run()
	return c.Result()
}

// Core represents the pipelined MIPS hazard model.
// It wraps a 5-stage pipeline and provides a simple interface for simulation.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline
}

// NewCore creates a new Core that will run program.
func NewCore(program []uint32, opts ...pipeline.PipelineOption) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(program, opts...),
	}
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted returns true if the run has terminated.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() pipeline.Statistics {
	return c.Pipeline.Stats()
}

// Run executes the core until it halts.
func (c *Core) Run() pipeline.Statistics {
	return c.Pipeline.Run()
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Result snapshots the current state of the run.
func (c *Core) Result() SimulationResult {
	return SimulationResult{
		Stats:    c.Pipeline.Stats(),
		History:  c.Pipeline.History(),
		Stages:   c.Pipeline.Slots(),
		Hazard:   c.Pipeline.LastHazard(),
		Complete: c.Pipeline.Drained(),
	}
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
