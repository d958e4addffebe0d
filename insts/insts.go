// Package insts provides MIPS32 instruction definitions and decoding.
//
// This package decodes 32-bit MIPS machine words into the operand view a
// pipeline hazard unit needs (which registers an instruction reads and
// writes) plus enough structure to name the instruction in reports. It
// classifies:
//   - R-type register-register operations (opcode 0), including JR and JALR
//   - Loads (opcodes 32-37) and stores (opcodes 40-43)
//   - Branches (BEQ, BNE, BLEZ, BGTZ) and jumps (J, JAL)
//   - Immediate ALU operations (ADDI through LUI)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x012A5820) // add $t3, $t1, $t2
//	fmt.Printf("Op: %v, Src1: %d, Src2: %d, Dest: %d\n", inst.Op, inst.Src1, inst.Src2, inst.Dest)
package insts
