package pipeline

import "github.com/sarchlab/mipspipe/insts"

// Scoreboard records, per architectural register, the stage holding the
// youngest in-flight instruction that will write it. StageNone means the
// register file value is current.
//
// Register 0 is never marked busy.
type Scoreboard struct {
	entries [insts.NumRegisters]Stage
}

// MarkBusy records that the instruction writing reg is now in stage.
// Negative registers and register 0 are ignored.
func (s *Scoreboard) MarkBusy(reg int8, stage Stage) {
	if !tracked(reg) {
		return
	}
	s.entries[reg] = stage
}

// Producer returns the stage producing reg, or StageNone.
func (s *Scoreboard) Producer(reg int8) Stage {
	if !tracked(reg) {
		return StageNone
	}
	return s.entries[reg]
}

// Busy reports whether reg has a pending write.
func (s *Scoreboard) Busy(reg int8) bool {
	return s.Producer(reg) != StageNone
}

// Retire clears reg after its producer completes writeback. A younger
// writer that has re-marked the register keeps it busy.
func (s *Scoreboard) Retire(reg int8) {
	if !tracked(reg) {
		return
	}
	if s.entries[reg] == StageWB {
		s.entries[reg] = StageNone
	}
}

// Advance moves every pending producer one stage down the pipe. Producers
// past ID never stall, so this runs once per cycle.
func (s *Scoreboard) Advance() {
	for i, stage := range s.entries {
		switch stage {
		case StageEX:
			s.entries[i] = StageMEM
		case StageMEM:
			s.entries[i] = StageWB
		}
	}
}

// Entries returns a copy of all scoreboard entries.
func (s *Scoreboard) Entries() [insts.NumRegisters]Stage {
	return s.entries
}

// Reset marks every register available.
func (s *Scoreboard) Reset() {
	s.entries = [insts.NumRegisters]Stage{}
}

func tracked(reg int8) bool {
	return reg > 0 && int(reg) < insts.NumRegisters
}
