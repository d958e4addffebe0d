package insts

// EncodeR builds an R-type word.
func EncodeR(rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 |
		uint32(shamt&0x1F)<<6 |
		uint32(funct&0x3F)
}

// EncodeI builds an I-type word.
func EncodeI(opcode, rs, rt uint8, imm uint16) uint32 {
	return uint32(opcode&0x3F)<<26 |
		uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(imm)
}

// EncodeJ builds a J-type word.
func EncodeJ(opcode uint8, target uint32) uint32 {
	return uint32(opcode&0x3F)<<26 | target&0x3FFFFFF
}

// ADD encodes add rd, rs, rt.
func ADD(rd, rs, rt uint8) uint32 { return EncodeR(rs, rt, rd, 0, 0x20) }

// SUB encodes sub rd, rs, rt.
func SUB(rd, rs, rt uint8) uint32 { return EncodeR(rs, rt, rd, 0, 0x22) }

// AND encodes and rd, rs, rt.
func AND(rd, rs, rt uint8) uint32 { return EncodeR(rs, rt, rd, 0, 0x24) }

// OR encodes or rd, rs, rt.
func OR(rd, rs, rt uint8) uint32 { return EncodeR(rs, rt, rd, 0, 0x25) }

// SLT encodes slt rd, rs, rt.
func SLT(rd, rs, rt uint8) uint32 { return EncodeR(rs, rt, rd, 0, 0x2A) }

// SLL encodes sll rd, rt, shamt.
func SLL(rd, rt, shamt uint8) uint32 { return EncodeR(0, rt, rd, shamt, 0x00) }

// JR encodes jr rs.
func JR(rs uint8) uint32 { return EncodeR(rs, 0, 0, 0, FunctJR) }

// JALR encodes jalr rd, rs.
func JALR(rd, rs uint8) uint32 { return EncodeR(rs, 0, rd, 0, FunctJALR) }

// ADDI encodes addi rt, rs, imm.
func ADDI(rt, rs uint8, imm int16) uint32 { return EncodeI(opcodeADDI, rs, rt, uint16(imm)) }

// ORI encodes ori rt, rs, imm.
func ORI(rt, rs uint8, imm uint16) uint32 { return EncodeI(0x0D, rs, rt, imm) }

// LUI encodes lui rt, imm.
func LUI(rt uint8, imm uint16) uint32 { return EncodeI(opcodeLUI, 0, rt, imm) }

// LW encodes lw rt, offset(base).
func LW(rt uint8, offset int16, base uint8) uint32 { return EncodeI(0x23, base, rt, uint16(offset)) }

// LB encodes lb rt, offset(base).
func LB(rt uint8, offset int16, base uint8) uint32 {
	return EncodeI(opcodeLB, base, rt, uint16(offset))
}

// SW encodes sw rt, offset(base).
func SW(rt uint8, offset int16, base uint8) uint32 {
	return EncodeI(opcodeSW, base, rt, uint16(offset))
}

// BEQ encodes beq rs, rt, offset.
func BEQ(rs, rt uint8, offset int16) uint32 { return EncodeI(opcodeBEQ, rs, rt, uint16(offset)) }

// BNE encodes bne rs, rt, offset.
func BNE(rs, rt uint8, offset int16) uint32 { return EncodeI(0x05, rs, rt, uint16(offset)) }

// BLEZ encodes blez rs, offset.
func BLEZ(rs uint8, offset int16) uint32 { return EncodeI(0x06, rs, 0, uint16(offset)) }

// J encodes j target (word index).
func J(target uint32) uint32 { return EncodeJ(opcodeJ, target) }

// JAL encodes jal target (word index).
func JAL(target uint32) uint32 { return EncodeJ(opcodeJAL, target) }

// NOP is the canonical no-op (sll $zero, $zero, 0).
const NOP uint32 = 0
