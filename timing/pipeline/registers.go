// Package pipeline provides the 5-stage pipeline implementation for hazard
// simulation.
package pipeline

import "github.com/sarchlab/mipspipe/insts"

// Stage identifies a pipeline stage. The numeric codes are the ones the
// scoreboard and forwarding records use.
type Stage uint8

// Pipeline stages.
const (
	// StageNone means no stage (an available register, or no forwarding).
	StageNone Stage = iota
	StageIF
	StageID
	StageEX
	StageMEM
	StageWB
)

// NumStages is the depth of the pipeline.
const NumStages = 5

var stageNames = [...]string{"none", "IF", "ID", "EX", "MEM", "WB"}

// String returns the short stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Stages lists the pipeline stages in program order.
var Stages = [NumStages]Stage{StageIF, StageID, StageEX, StageMEM, StageWB}

// Slot holds the instruction occupying one pipeline stage.
type Slot struct {
	// InstructionWord is the raw 32-bit instruction word. 0 for a bubble.
	InstructionWord uint32

	// PC is the program counter of the instruction.
	PC uint32

	// Valid indicates if this slot holds an instruction.
	Valid bool

	// Register numbers for hazard detection. insts.NoReg when unused.
	Src1 int8
	Src2 int8
	Dest int8
}

// Bubble returns an empty slot.
func Bubble() Slot {
	return Slot{Src1: insts.NoReg, Src2: insts.NoReg, Dest: insts.NoReg}
}

// IsBubble reports whether the slot is empty.
func (s *Slot) IsBubble() bool {
	return !s.Valid
}

// fetched returns the IF slot for word. Operands are filled in by decode.
func fetched(word, pc uint32) Slot {
	slot := Bubble()
	slot.Valid = true
	slot.InstructionWord = word
	slot.PC = pc
	return slot
}

// decoded returns the ID slot for an IF slot.
func decoded(ifSlot Slot) Slot {
	if !ifSlot.Valid {
		return Bubble()
	}
	slot := ifSlot
	slot.Src1, slot.Src2, slot.Dest = insts.Operands(ifSlot.InstructionWord)
	return slot
}
