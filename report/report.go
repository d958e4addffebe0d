// Package report turns a simulation result into the views printed by the
// command-line tools.
package report

import (
	"fmt"
	"math"

	"github.com/sarchlab/akita/v4/sim"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sarchlab/mipspipe/insts"
	"github.com/sarchlab/mipspipe/timing/cache"
	"github.com/sarchlab/mipspipe/timing/core"
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

// IdealSpeedup is the speedup of a perfectly filled 5-stage pipeline over
// an unpipelined machine.
const IdealSpeedup = 5.0

var labelCaser = cases.Title(language.English, cases.NoLower)

// HazardLabel returns the display label of kind, e.g. "Load-Use".
func HazardLabel(kind pipeline.HazardKind) string {
	return labelCaser.String(kind.String())
}

// StageView describes one pipeline slot.
type StageView struct {
	Name           string `json:"name"`
	Instruction    uint32 `json:"instruction"`
	InstructionHex string `json:"instruction_hex"`
	Mnemonic       string `json:"mnemonic"`
	PC             uint32 `json:"pc"`
	PCHex          string `json:"pc_hex"`
	Valid          bool   `json:"valid"`
	SrcReg1        int8   `json:"src_reg1"`
	SrcReg2        int8   `json:"src_reg2"`
	DestReg        int8   `json:"dest_reg"`
	SrcReg1Name    string `json:"src_reg1_name,omitempty"`
	SrcReg2Name    string `json:"src_reg2_name,omitempty"`
	DestRegName    string `json:"dest_reg_name,omitempty"`
}

// HazardView describes a hazard report.
type HazardView struct {
	Detected        bool   `json:"detected"`
	HazardType      int    `json:"hazard_type"`
	HazardTypeName  string `json:"hazard_type_name"`
	Label           string `json:"label"`
	StallRequired   bool   `json:"stall_required"`
	ForwardFrom     int    `json:"forward_from"`
	ForwardFromName string `json:"forward_from_name,omitempty"`
	ForwardTo       int    `json:"forward_to"`
	ForwardToName   string `json:"forward_to_name,omitempty"`
	ForwardReg      int8   `json:"forward_reg"`
	ForwardRegName  string `json:"forward_reg_name,omitempty"`
}

// Metrics holds the final counters and the derived performance figures.
type Metrics struct {
	TotalCycles       uint64  `json:"total_cycles"`
	TotalInstructions uint64  `json:"total_instructions"`
	StallCycles       uint64  `json:"stall_cycles"`
	ForwardCount      uint64  `json:"forward_count"`
	BranchStalls      uint64  `json:"branch_stalls"`
	LoadUseStalls     uint64  `json:"load_use_stalls"`
	RAWHazards        uint64  `json:"raw_hazards"`
	CPI               float64 `json:"cpi"`
	Efficiency        float64 `json:"efficiency"`
	Speedup           float64 `json:"speedup"`
	ClockGHz          float64 `json:"clock_ghz"`
	SimulatedTimeNS   float64 `json:"simulated_time_ns"`
}

// CycleView describes one recorded cycle.
type CycleView struct {
	Cycle          uint64            `json:"cycle"`
	Stages         map[string]uint32 `json:"stages"`
	StagesHex      map[string]string `json:"stages_hex"`
	HazardType     int               `json:"hazard_type"`
	HazardTypeName string            `json:"hazard_type_name"`
	Stall          bool              `json:"stall"`
	Forward        bool              `json:"forward"`
}

// CacheView summarizes the instruction cache.
type CacheView struct {
	Reads     uint64  `json:"reads"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// Report is the complete presentation of one run.
type Report struct {
	Stages             []StageView `json:"stages"`
	Hazard             HazardView  `json:"hazard"`
	Metrics            Metrics     `json:"metrics"`
	CycleHistory       []CycleView `json:"cycle_history"`
	SimulationComplete bool        `json:"simulation_complete"`
	ICache             *CacheView  `json:"icache,omitempty"`
}

// New builds the report for result. clock converts cycles to time.
func New(result core.SimulationResult, clock sim.Freq) *Report {
	decoder := insts.NewDecoder()

	r := &Report{
		Stages:             make([]StageView, 0, pipeline.NumStages),
		Hazard:             hazardView(result.Hazard),
		Metrics:            metrics(result.Stats, clock),
		CycleHistory:       make([]CycleView, 0, len(result.History)),
		SimulationComplete: result.Complete,
	}

	for i, stage := range pipeline.Stages {
		r.Stages = append(r.Stages, stageView(stage, result.Stages[i], decoder))
	}
	for _, rec := range result.History {
		r.CycleHistory = append(r.CycleHistory, cycleView(rec))
	}

	return r
}

// SetICache attaches instruction cache statistics.
func (r *Report) SetICache(stats cache.Statistics) {
	r.ICache = &CacheView{
		Reads:     stats.Reads,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		HitRate:   round(stats.HitRate()*100, 1),
	}
}

// CPI returns the cycles per instruction from the fixed-point fields, or
// 1 when the run has not produced a figure.
func CPI(stats pipeline.Statistics) float64 {
	cpi := stats.CPI()
	if stats.CPIDenominator > 0 {
		cpi = float64(stats.CPINumerator) / (float64(stats.CPIDenominator) * 100)
	}
	if cpi <= 0 {
		return 1
	}
	return cpi
}

// Efficiency returns the pipeline efficiency in percent (ideal CPI is 1).
func Efficiency(cpi float64) float64 {
	if cpi <= 0 {
		return 100
	}
	return 100 / cpi
}

// Speedup returns the speedup over an unpipelined machine.
func Speedup(cpi float64) float64 {
	if cpi <= 0 {
		return IdealSpeedup
	}
	return IdealSpeedup / cpi
}

// SimulatedTime returns the duration of cycles at clock, in nanoseconds.
func SimulatedTime(cycles uint64, clock sim.Freq) float64 {
	if clock <= 0 {
		return 0
	}
	return float64(cycles) / float64(clock) * 1e9
}

func metrics(stats pipeline.Statistics, clock sim.Freq) Metrics {
	cpi := CPI(stats)
	return Metrics{
		TotalCycles:       stats.Cycles,
		TotalInstructions: stats.Instructions,
		StallCycles:       stats.Stalls,
		ForwardCount:      stats.Forwards,
		BranchStalls:      stats.BranchStalls,
		LoadUseStalls:     stats.LoadUseStalls,
		RAWHazards:        stats.DataHazards,
		CPI:               round(cpi, 2),
		Efficiency:        round(Efficiency(cpi), 1),
		Speedup:           round(Speedup(cpi), 2),
		ClockGHz:          float64(clock) / float64(sim.GHz),
		SimulatedTimeNS:   round(SimulatedTime(stats.Cycles, clock), 3),
	}
}

func stageView(stage pipeline.Stage, slot pipeline.Slot, decoder *insts.Decoder) StageView {
	mnemonic := "bubble"
	if slot.Valid {
		mnemonic = decoder.Decode(slot.InstructionWord).Op.String()
	}
	return StageView{
		Name:           stage.String(),
		Instruction:    slot.InstructionWord,
		InstructionHex: hex(slot.InstructionWord),
		Mnemonic:       mnemonic,
		PC:             slot.PC,
		PCHex:          hex(slot.PC),
		Valid:          slot.Valid,
		SrcReg1:        slot.Src1,
		SrcReg2:        slot.Src2,
		DestReg:        slot.Dest,
		SrcReg1Name:    insts.RegisterName(slot.Src1),
		SrcReg2Name:    insts.RegisterName(slot.Src2),
		DestRegName:    insts.RegisterName(slot.Dest),
	}
}

func hazardView(h pipeline.HazardReport) HazardView {
	v := HazardView{
		Detected:       h.Detected,
		HazardType:     int(h.Kind),
		HazardTypeName: h.Kind.String(),
		Label:          HazardLabel(h.Kind),
		StallRequired:  h.StallRequired,
		ForwardReg:     insts.NoReg,
	}
	if h.Forward != nil {
		v.ForwardFrom = int(h.Forward.From)
		v.ForwardFromName = h.Forward.From.String()
		v.ForwardTo = int(h.Forward.To)
		v.ForwardToName = h.Forward.To.String()
		v.ForwardReg = h.Forward.Register
		v.ForwardRegName = insts.RegisterName(h.Forward.Register)
	}
	return v
}

func cycleView(rec pipeline.CycleRecord) CycleView {
	v := CycleView{
		Cycle:          rec.Cycle,
		Stages:         make(map[string]uint32, pipeline.NumStages),
		StagesHex:      make(map[string]string, pipeline.NumStages),
		HazardType:     int(rec.Hazard),
		HazardTypeName: rec.Hazard.String(),
		Stall:          rec.Stall,
		Forward:        rec.Forward,
	}
	for i, stage := range pipeline.Stages {
		v.Stages[stage.String()] = rec.Stages[i]
		v.StagesHex[stage.String()] = hex(rec.Stages[i])
	}
	return v
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
