package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipspipe/timing/cache"
)

const (
	// TextBase is the default address of the first supplied instruction
	// (the MARS text segment base).
	TextBase uint32 = 0x00400000

	// MaxCycles bounds every run. A program that has not drained by then
	// is stopped.
	MaxCycles = 500

	// cpiScale is the fixed-point scale of CPINumerator.
	cpiScale = 100
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of cycles in which the hazard unit stalled.
	Stalls uint64
	// Forwards is the number of operands bypassed by forwarding.
	Forwards uint64
	// BranchStalls counts control instructions reaching the hazard check,
	// whether or not prediction avoided the stall.
	BranchStalls uint64
	// LoadUseStalls is the number of load-use stalls.
	LoadUseStalls uint64
	// DataHazards is the number of instructions that hit a RAW hazard.
	DataHazards uint64

	// CPINumerator and CPIDenominator are set once the run terminates.
	// CPI = CPINumerator / (CPIDenominator * 100).
	CPINumerator   uint64
	CPIDenominator uint64
}

// CPI returns the cycles per instruction. When no instruction completed,
// the cycle count is divided by 1.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return float64(s.Cycles)
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// finalize fills in the fixed-point CPI.
func (s *Statistics) finalize() {
	s.CPINumerator = s.Cycles * cpiScale
	s.CPIDenominator = s.Instructions
	if s.CPIDenominator == 0 {
		s.CPIDenominator = 1
	}
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithForwarding enables or disables operand forwarding. Default: enabled.
func WithForwarding(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.forwarding = enabled
	}
}

// WithBranchPrediction enables or disables predict-not-taken. With
// prediction disabled every control instruction costs one stall cycle.
// Default: disabled.
func WithBranchPrediction(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.branchPrediction = enabled
	}
}

// WithEntryPoint sets the address of the first instruction. Default:
// TextBase.
func WithEntryPoint(addr uint32) PipelineOption {
	return func(p *Pipeline) {
		p.entry = addr
	}
}

// WithFetchCache routes instruction fetch through an L1 instruction cache
// model. The cache only gathers statistics; it never delays fetch.
func WithFetchCache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		p.fetchCacheConfig = &config
	}
}

// WithLogger enables per-cycle debug tracing.
func WithLogger(logger *logrus.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Pipeline implements a 5-stage pipelined MIPS hazard model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	// Stage slots
	ifSlot  Slot
	idSlot  Slot
	exSlot  Slot
	memSlot Slot
	wbSlot  Slot

	// idHeld is true when the ID instruction was stalled last cycle.
	idHeld bool

	scoreboard Scoreboard
	hazardUnit *HazardUnit
	lastHazard HazardReport

	// Configuration
	forwarding       bool
	branchPrediction bool

	// Instruction supply
	program          []uint32
	entry            uint32
	fetchIndex       int
	pc               uint32
	fetchCacheConfig *cache.Config
	fetchCache       *cache.Cache

	history *History
	logger  *logrus.Logger

	stats Statistics

	// Execution state
	halted  bool
	drained bool
}

// NewPipeline creates a pipeline that will fetch program in order.
func NewPipeline(program []uint32, opts ...PipelineOption) *Pipeline {
	words := make([]uint32, len(program))
	copy(words, program)

	p := &Pipeline{
		ifSlot:     Bubble(),
		idSlot:     Bubble(),
		exSlot:     Bubble(),
		memSlot:    Bubble(),
		wbSlot:     Bubble(),
		forwarding: true,
		program:    words,
		entry:      TextBase,
		history:    NewHistory(DefaultHistoryCapacity),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.pc = p.entry
	if p.fetchCacheConfig != nil {
		backing := cache.NewProgramBacking(p.program, uint64(p.entry))
		p.fetchCache = cache.New(*p.fetchCacheConfig, backing)
	}

	p.hazardUnit = NewHazardUnit(p.forwarding, p.branchPrediction)

	return p
}

// EntryPoint returns the address of the first instruction.
func (p *Pipeline) EntryPoint() uint32 {
	return p.entry
}

// PC returns the address of the next instruction to fetch.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// Slot returns the contents of stage.
func (p *Pipeline) Slot(stage Stage) Slot {
	switch stage {
	case StageIF:
		return p.ifSlot
	case StageID:
		return p.idSlot
	case StageEX:
		return p.exSlot
	case StageMEM:
		return p.memSlot
	case StageWB:
		return p.wbSlot
	}
	return Bubble()
}

// Slots returns the five stage slots in IF..WB order.
func (p *Pipeline) Slots() [NumStages]Slot {
	return [NumStages]Slot{p.ifSlot, p.idSlot, p.exSlot, p.memSlot, p.wbSlot}
}

// Scoreboard returns a copy of the register scoreboard.
func (p *Pipeline) Scoreboard() Scoreboard {
	return p.scoreboard
}

// LastHazard returns the hazard report of the most recent cycle.
func (p *Pipeline) LastHazard() HazardReport {
	return p.lastHazard
}

// History returns the recorded cycles, oldest first.
func (p *Pipeline) History() []CycleRecord {
	return p.history.Records()
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// FetchCacheStats returns the instruction cache statistics and whether a
// fetch cache is attached.
func (p *Pipeline) FetchCacheStats() (cache.Statistics, bool) {
	if p.fetchCache == nil {
		return cache.Statistics{}, false
	}
	return p.fetchCache.Stats(), true
}

// Halted returns true once the run has terminated.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Drained returns true if the run terminated because every instruction
// left the pipeline, rather than by hitting MaxCycles.
func (p *Pipeline) Drained() bool {
	return p.drained
}

// Run executes the pipeline until it terminates.
func (p *Pipeline) Run() Statistics {
	for !p.halted {
		p.Tick()
	}
	return p.stats
}

// RunCycles executes the pipeline for the specified number of cycles.
// Returns true if still running, false if halted.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// Tick executes one pipeline cycle.
//
// Stages are evaluated in reverse order (WB→MEM→EX→ID→IF) so that no stage
// overwrites a slot the stage behind it still has to read this cycle. The
// hazard unit runs after MEM has latched the EX instruction but before EX
// is overwritten, so it still sees the producer sitting in EX.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	p.stats.Cycles++

	// Stage 5: Writeback
	if p.wbSlot.Valid {
		p.stats.Instructions++
		p.scoreboard.Retire(p.wbSlot.Dest)
	}
	p.wbSlot = p.memSlot

	// Stage 4: Memory
	p.memSlot = p.exSlot

	// Hazard detection for the ID -> EX transition
	report, events := p.hazardUnit.Detect(&p.idSlot, &p.exSlot, &p.scoreboard, p.idHeld)
	p.account(report, events)
	p.scoreboard.Advance()

	// Stage 3: Execute
	if report.StallRequired {
		p.exSlot = Bubble()
	} else {
		p.exSlot = p.idSlot
		if p.exSlot.Valid {
			p.scoreboard.MarkBusy(p.exSlot.Dest, StageEX)
		}
	}

	// Stage 2: Decode
	// A stalled instruction stays in ID and is presented again next cycle.
	if report.StallRequired {
		p.idHeld = true
	} else {
		p.idSlot = decoded(p.ifSlot)
		p.idHeld = false
	}

	// Stage 1: Fetch
	if !report.StallRequired {
		p.ifSlot = p.fetch()
	}

	p.lastHazard = report
	p.history.Record(p.snapshot(report))
	p.trace(report)

	p.checkTermination()
}

// fetch returns the next instruction, or a bubble once the supply is
// exhausted.
func (p *Pipeline) fetch() Slot {
	if p.fetchIndex >= len(p.program) {
		return Bubble()
	}

	word := p.program[p.fetchIndex]
	if p.fetchCache != nil {
		word = uint32(p.fetchCache.Read(uint64(p.pc), 4).Data)
	}

	slot := fetched(word, p.pc)
	p.fetchIndex++
	p.pc += 4

	return slot
}

// account folds one hazard verdict into the statistics.
func (p *Pipeline) account(report HazardReport, events HazardEvents) {
	if events.RAW {
		p.stats.DataHazards++
	}
	if events.LoadUse {
		p.stats.LoadUseStalls++
	}
	if events.Branch {
		p.stats.BranchStalls++
	}
	p.stats.Forwards += events.Forwards
	if report.StallRequired {
		p.stats.Stalls++
	}
}

func (p *Pipeline) snapshot(report HazardReport) CycleRecord {
	return CycleRecord{
		Cycle: p.stats.Cycles,
		Stages: [NumStages]uint32{
			p.ifSlot.InstructionWord,
			p.idSlot.InstructionWord,
			p.exSlot.InstructionWord,
			p.memSlot.InstructionWord,
			p.wbSlot.InstructionWord,
		},
		Hazard:  report.Kind,
		Stall:   report.StallRequired,
		Forward: report.Forwarded(),
	}
}

func (p *Pipeline) trace(report HazardReport) {
	if p.logger == nil {
		return
	}

	p.logger.WithFields(logrus.Fields{
		"cycle":  p.stats.Cycles,
		"if":     p.ifSlot.InstructionWord,
		"id":     p.idSlot.InstructionWord,
		"ex":     p.exSlot.InstructionWord,
		"mem":    p.memSlot.InstructionWord,
		"wb":     p.wbSlot.InstructionWord,
		"hazard": report.Kind.String(),
		"stall":  report.StallRequired,
	}).Debug("pipeline cycle")
}

// checkTermination halts once every instruction has been fetched and has
// left the pipeline, or when the cycle cap is reached.
func (p *Pipeline) checkTermination() {
	if p.fetchIndex >= len(p.program) && p.empty() {
		p.halted = true
		p.drained = true
	} else if p.stats.Cycles >= MaxCycles {
		p.halted = true
	}

	if p.halted {
		p.stats.finalize()
		if p.logger != nil {
			p.logger.WithFields(logrus.Fields{
				"cycles":       p.stats.Cycles,
				"instructions": p.stats.Instructions,
				"drained":      p.drained,
			}).Debug("pipeline halted")
		}
	}
}

func (p *Pipeline) empty() bool {
	return p.ifSlot.IsBubble() && p.idSlot.IsBubble() && p.exSlot.IsBubble() &&
		p.memSlot.IsBubble() && p.wbSlot.IsBubble()
}

// Reset returns the pipeline to its initial state, keeping the program and
// configuration.
func (p *Pipeline) Reset() {
	p.ifSlot = Bubble()
	p.idSlot = Bubble()
	p.exSlot = Bubble()
	p.memSlot = Bubble()
	p.wbSlot = Bubble()
	p.idHeld = false
	p.scoreboard.Reset()
	p.lastHazard = HazardReport{}
	p.fetchIndex = 0
	p.pc = p.entry
	p.history.Reset()
	p.stats = Statistics{}
	p.halted = false
	p.drained = false
	if p.fetchCache != nil {
		p.fetchCache.Reset()
	}
}
