package insts

// NumRegisters is the number of MIPS general-purpose registers.
const NumRegisters = 32

var registerNames = [NumRegisters]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

// Conventional register numbers used by tests and benchmarks.
const (
	RegZero = 0
	RegT0   = 8
	RegT1   = 9
	RegT2   = 10
	RegT3   = 11
	RegT4   = 12
	RegT5   = 13
	RegT6   = 14
	RegT7   = 15
	RegS0   = 16
	RegS1   = 17
	RegSP   = 29
	RegRA   = 31
)

// RegisterName returns the ABI name of reg, or "" when reg is outside 0-31
// (including NoReg).
func RegisterName(reg int8) string {
	if reg < 0 || int(reg) >= NumRegisters {
		return ""
	}
	return registerNames[reg]
}
