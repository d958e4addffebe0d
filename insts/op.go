package insts

// Op represents a MIPS mnemonic.
type Op uint8

// MIPS mnemonics.
const (
	OpUnknown Op = iota
	OpNOP

	// R-type
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU

	// Jumps and branches
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ

	// Immediate ALU
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI

	// Loads and stores
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSWL
	OpSW
)

var opNames = [...]string{
	OpUnknown: "unknown",
	OpNOP:     "nop",
	OpSLL:     "sll",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpSLLV:    "sllv",
	OpSRLV:    "srlv",
	OpSRAV:    "srav",
	OpJR:      "jr",
	OpJALR:    "jalr",
	OpMFHI:    "mfhi",
	OpMTHI:    "mthi",
	OpMFLO:    "mflo",
	OpMTLO:    "mtlo",
	OpMULT:    "mult",
	OpMULTU:   "multu",
	OpDIV:     "div",
	OpDIVU:    "divu",
	OpADD:     "add",
	OpADDU:    "addu",
	OpSUB:     "sub",
	OpSUBU:    "subu",
	OpAND:     "and",
	OpOR:      "or",
	OpXOR:     "xor",
	OpNOR:     "nor",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpJ:       "j",
	OpJAL:     "jal",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLEZ:    "blez",
	OpBGTZ:    "bgtz",
	OpADDI:    "addi",
	OpADDIU:   "addiu",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpANDI:    "andi",
	OpORI:     "ori",
	OpXORI:    "xori",
	OpLUI:     "lui",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLWL:     "lwl",
	OpLW:      "lw",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSWL:     "swl",
	OpSW:      "sw",
}

// String returns the assembler mnemonic.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// functOps maps R-type function codes to mnemonics.
var functOps = map[uint8]Op{
	0x00: OpSLL,
	0x02: OpSRL,
	0x03: OpSRA,
	0x04: OpSLLV,
	0x06: OpSRLV,
	0x07: OpSRAV,
	0x08: OpJR,
	0x09: OpJALR,
	0x10: OpMFHI,
	0x11: OpMTHI,
	0x12: OpMFLO,
	0x13: OpMTLO,
	0x18: OpMULT,
	0x19: OpMULTU,
	0x1A: OpDIV,
	0x1B: OpDIVU,
	0x20: OpADD,
	0x21: OpADDU,
	0x22: OpSUB,
	0x23: OpSUBU,
	0x24: OpAND,
	0x25: OpOR,
	0x26: OpXOR,
	0x27: OpNOR,
	0x2A: OpSLT,
	0x2B: OpSLTU,
}

// opcodeOps maps primary opcodes to mnemonics.
var opcodeOps = map[uint8]Op{
	0x02: OpJ,
	0x03: OpJAL,
	0x04: OpBEQ,
	0x05: OpBNE,
	0x06: OpBLEZ,
	0x07: OpBGTZ,
	0x08: OpADDI,
	0x09: OpADDIU,
	0x0A: OpSLTI,
	0x0B: OpSLTIU,
	0x0C: OpANDI,
	0x0D: OpORI,
	0x0E: OpXORI,
	0x0F: OpLUI,
	0x20: OpLB,
	0x21: OpLH,
	0x22: OpLWL,
	0x23: OpLW,
	0x24: OpLBU,
	0x25: OpLHU,
	0x28: OpSB,
	0x29: OpSH,
	0x2A: OpSWL,
	0x2B: OpSW,
}

func lookupOp(inst *Instruction) Op {
	switch inst.Class {
	case ClassNop:
		return OpNOP
	case ClassRType:
		if op, ok := functOps[inst.Funct]; ok {
			return op
		}
		return OpUnknown
	}
	if op, ok := opcodeOps[inst.Opcode]; ok {
		return op
	}
	return OpUnknown
}
