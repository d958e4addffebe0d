package pipeline

import "github.com/sarchlab/mipspipe/insts"

// HazardKind classifies the hazard reported for a cycle.
type HazardKind uint8

// Hazard kinds. The numeric codes match the history encoding.
const (
	HazardNone HazardKind = iota
	HazardRAW
	HazardLoadUse
	HazardControl
)

var hazardNames = [...]string{"none", "RAW", "load-use", "control"}

// String returns the hazard name.
func (k HazardKind) String() string {
	if int(k) < len(hazardNames) {
		return hazardNames[k]
	}
	return "unknown"
}

// Forward describes one bypass of a not-yet-written result.
type Forward struct {
	// From is the stage holding the producer.
	From Stage
	// To is the stage receiving the value (always ID).
	To Stage
	// Register is the forwarded architectural register.
	Register int8
}

// HazardReport is the hazard unit's verdict for the instruction in ID.
// It is recomputed from scratch every cycle.
type HazardReport struct {
	// Detected is true if any data or control hazard was found.
	Detected bool
	// Kind is the reported hazard class. A control hazard overwrites a
	// data hazard kind found for the same instruction.
	Kind HazardKind
	// StallRequired holds IF and ID and inserts a bubble into EX.
	StallRequired bool
	// Forward is the last forwarding decision made, if any.
	Forward *Forward
}

// Forwarded reports whether any operand was forwarded.
func (r HazardReport) Forwarded() bool {
	return r.Forward != nil
}

// HazardEvents are the statistics side effects of one detection.
type HazardEvents struct {
	// RAW is set once per instruction whose operands hazard.
	RAW bool
	// LoadUse is set when a load-use stall is required.
	LoadUse bool
	// Forwards is the number of operands forwarded.
	Forwards uint64
	// Branch is set when a control instruction is seen for the first time.
	Branch bool
}

// HazardUnit detects data and control hazards for the ID stage and picks
// between stalling and forwarding.
type HazardUnit struct {
	forwarding       bool
	branchPrediction bool
}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit(forwarding, branchPrediction bool) *HazardUnit {
	return &HazardUnit{
		forwarding:       forwarding,
		branchPrediction: branchPrediction,
	}
}

// Detect evaluates the instruction in id against the scoreboard. ex is the
// instruction currently in EX, used to spot load-use hazards. held is true
// when id was stalled last cycle and is being presented again; RAW and
// control accounting happen only on an instruction's first presentation.
func (h *HazardUnit) Detect(
	id, ex *Slot,
	scoreboard *Scoreboard,
	held bool,
) (HazardReport, HazardEvents) {
	var report HazardReport
	var events HazardEvents

	if !id.Valid {
		return report, events
	}

	// src1 is fully resolved before src2 is looked at.
	dataHazard := false
	for _, reg := range [2]int8{id.Src1, id.Src2} {
		if h.resolveOperand(reg, ex, scoreboard, &report, &events) {
			dataHazard = true
		}
	}
	if dataHazard && !held {
		events.RAW = true
	}

	if insts.IsControlWord(id.InstructionWord) {
		report.Detected = true
		report.Kind = HazardControl
		if !held {
			events.Branch = true
			if !h.branchPrediction {
				report.StallRequired = true
			}
		}
	}

	return report, events
}

// resolveOperand checks one source register and records the stall or
// forward it requires. It returns true if the operand hazards.
func (h *HazardUnit) resolveOperand(
	reg int8,
	ex *Slot,
	scoreboard *Scoreboard,
	report *HazardReport,
	events *HazardEvents,
) bool {
	// Register 0 is hard-wired and never hazards.
	if reg <= 0 {
		return false
	}

	producer := scoreboard.Producer(reg)
	if producer == StageNone {
		return false
	}

	report.Detected = true

	switch {
	case h.isLoadUse(producer, ex):
		// A load's result leaves EX too late to forward.
		report.Kind = HazardLoadUse
		report.StallRequired = true
		events.LoadUse = true
	case h.forwarding:
		report.Forward = &Forward{From: producer, To: StageID, Register: reg}
		events.Forwards++
		if report.Kind != HazardLoadUse {
			report.Kind = HazardRAW
		}
	default:
		report.StallRequired = true
		if report.Kind != HazardLoadUse {
			report.Kind = HazardRAW
		}
	}

	return true
}

func (h *HazardUnit) isLoadUse(producer Stage, ex *Slot) bool {
	return producer == StageEX && ex.Valid && insts.IsLoadWord(ex.InstructionWord)
}
