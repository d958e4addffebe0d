package insts

// Class groups instructions by how they use registers and the pipeline.
type Class uint8

// Instruction classes.
const (
	ClassUnknown   Class = iota
	ClassNop             // The all-zero word
	ClassRType           // Register-register (opcode 0)
	ClassLoad            // Memory loads (opcodes 32-37)
	ClassStore           // Memory stores (opcodes 40-43)
	ClassBranch          // Conditional branches (opcodes 4-7)
	ClassJump            // J
	ClassJumpLink        // JAL
	ClassImmediate       // Immediate ALU (opcodes 8-15)
)

// NoReg marks an operand slot the instruction does not use.
const NoReg int8 = -1

// LinkRegister is $ra, written by JAL.
const LinkRegister = 31

// Primary opcodes (bits [31:26]).
const (
	opcodeSpecial = 0x00
	opcodeJ       = 0x02
	opcodeJAL     = 0x03
	opcodeBEQ     = 0x04
	opcodeBGTZ    = 0x07
	opcodeADDI    = 0x08
	opcodeLUI     = 0x0F
	opcodeLB      = 0x20
	opcodeLHU     = 0x25
	opcodeSB      = 0x28
	opcodeSW      = 0x2B
)

// R-type function codes that change operand usage.
const (
	FunctJR   = 0x08
	FunctJALR = 0x09
)

// Instruction represents a decoded MIPS instruction.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Op     Op     // Mnemonic
	Class  Class  // Register/pipeline usage class
	Opcode uint8  // bits [31:26]

	// Raw fields
	Rs     uint8  // bits [25:21]
	Rt     uint8  // bits [20:16]
	Rd     uint8  // bits [15:11]
	Shamt  uint8  // bits [10:6]
	Funct  uint8  // bits [5:0]
	Imm    uint16 // bits [15:0]
	Target uint32 // bits [25:0]

	// Operand view used for hazard detection. NoReg when unused.
	Src1 int8
	Src2 int8
	Dest int8
}

// IsLoad reports whether the instruction reads data memory into a register.
func (i *Instruction) IsLoad() bool { return i.Class == ClassLoad }

// IsStore reports whether the instruction writes data memory.
func (i *Instruction) IsStore() bool { return i.Class == ClassStore }

// IsControl reports whether the instruction can redirect the PC.
func (i *Instruction) IsControl() bool {
	switch i.Class {
	case ClassBranch, ClassJump, ClassJumpLink:
		return true
	case ClassRType:
		return i.Funct == FunctJR || i.Funct == FunctJALR
	}
	return false
}

// Decoder decodes MIPS machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit MIPS instruction word. Unknown encodings decode
// to ClassUnknown with no operands; decoding never fails.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word:   word,
		Opcode: uint8(word >> 26),
		Rs:     uint8((word >> 21) & 0x1F),
		Rt:     uint8((word >> 16) & 0x1F),
		Rd:     uint8((word >> 11) & 0x1F),
		Shamt:  uint8((word >> 6) & 0x1F),
		Funct:  uint8(word & 0x3F),
		Imm:    uint16(word & 0xFFFF),
		Target: word & 0x3FFFFFF,
	}

	inst.Class = classify(word)
	inst.Src1, inst.Src2, inst.Dest = Operands(word)
	inst.Op = lookupOp(inst)

	return inst
}

// IsLoadWord reports whether word is a load-class instruction.
func IsLoadWord(word uint32) bool {
	return classify(word) == ClassLoad
}

// IsControlWord reports whether word is a branch or jump.
func IsControlWord(word uint32) bool {
	switch classify(word) {
	case ClassBranch, ClassJump, ClassJumpLink:
		return true
	case ClassRType:
		funct := word & 0x3F
		return funct == FunctJR || funct == FunctJALR
	}
	return false
}

// Operands extracts the source and destination registers of word. The
// all-zero word and unknown opcodes use no registers.
func Operands(word uint32) (src1, src2, dest int8) {
	rs := int8((word >> 21) & 0x1F)
	rt := int8((word >> 16) & 0x1F)
	rd := int8((word >> 11) & 0x1F)

	switch classify(word) {
	case ClassRType:
		switch word & 0x3F {
		case FunctJR:
			return rs, NoReg, NoReg
		case FunctJALR:
			return rs, NoReg, rd
		}
		return rs, rt, rd
	case ClassLoad:
		return rs, NoReg, rt
	case ClassStore, ClassBranch:
		// BLEZ/BGTZ encode rt as 0.
		return rs, rt, NoReg
	case ClassJumpLink:
		return NoReg, NoReg, LinkRegister
	case ClassImmediate:
		return rs, NoReg, rt
	}
	return NoReg, NoReg, NoReg
}

func classify(word uint32) Class {
	if word == 0 {
		return ClassNop
	}

	opcode := word >> 26
	switch {
	case opcode == opcodeSpecial:
		return ClassRType
	case opcode == opcodeJ:
		return ClassJump
	case opcode == opcodeJAL:
		return ClassJumpLink
	case opcode >= opcodeBEQ && opcode <= opcodeBGTZ:
		return ClassBranch
	case opcode >= opcodeADDI && opcode <= opcodeLUI:
		return ClassImmediate
	case opcode >= opcodeLB && opcode <= opcodeLHU:
		return ClassLoad
	case opcode >= opcodeSB && opcode <= opcodeSW:
		return ClassStore
	}
	return ClassUnknown
}
