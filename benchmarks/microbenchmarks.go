// Package benchmarks provides hazard microbenchmarks and a harness that runs
// them through the pipeline model.
package benchmarks

import "github.com/sarchlab/mipspipe/insts"

// GetMicrobenchmarks returns the standard set of hazard microbenchmarks.
// Each benchmark isolates one pipeline behavior.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentALU(),
		dependencyChain(),
		loadUse(),
		loadUseScheduled(),
		storeAfterLoad(),
		branchSequence(),
		functionCall(),
	}
}

// GetCoreBenchmarks returns a minimal set covering data, load-use and
// control hazards.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		dependencyChain(),
		loadUse(),
		branchSequence(),
	}
}

// 1. Independent ALU - no hazards, the N+5 fill/drain baseline
func independentALU() Benchmark {
	program := make([]uint32, 0, 10)
	dests := []uint8{
		insts.RegT0, insts.RegT1, insts.RegT2, insts.RegT3, insts.RegT4,
		insts.RegT5, insts.RegT6, insts.RegT7, insts.RegS0, insts.RegS1,
	}
	for i, rd := range dests {
		program = append(program, insts.ADDI(rd, insts.RegZero, int16(i)))
	}

	return Benchmark{
		Name:           "independent_alu",
		Description:    "10 independent ADDIs - hazard-free baseline",
		Program:        program,
		ExpectedCycles: 15,
	}
}

// 2. Dependency Chain - back-to-back RAW hazards
func dependencyChain() Benchmark {
	return Benchmark{
		Name:           "dependency_chain",
		Description:    "10 dependent ADDIs ($t0 = $t0 + 1) - forwarding vs stalling",
		Program:        buildDependencyChain(10),
		ExpectedCycles: 15,
	}
}

func buildDependencyChain(n int) []uint32 {
	program := []uint32{insts.ADDI(insts.RegT0, insts.RegZero, 1)}
	for i := 1; i < n; i++ {
		program = append(program, insts.ADDI(insts.RegT0, insts.RegT0, 1))
	}
	return program
}

// 3. Load-Use - every load is consumed by the next instruction
func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "4 LW/ADD pairs consuming the load immediately - one stall each",
		Program: []uint32{
			insts.LW(insts.RegT0, 0, insts.RegSP),
			insts.ADD(insts.RegT1, insts.RegT0, insts.RegT0),
			insts.LW(insts.RegT2, 4, insts.RegSP),
			insts.ADD(insts.RegT3, insts.RegT2, insts.RegT2),
			insts.LW(insts.RegT4, 8, insts.RegSP),
			insts.ADD(insts.RegT5, insts.RegT4, insts.RegT4),
			insts.LW(insts.RegT6, 12, insts.RegSP),
			insts.ADD(insts.RegT7, insts.RegT6, insts.RegT6),
		},
		ExpectedCycles: 17,
	}
}

// 4. Load-Use Scheduled - the same work with loads hoisted one slot
func loadUseScheduled() Benchmark {
	return Benchmark{
		Name:        "load_use_scheduled",
		Description: "load_use with the loads paired up - forwarding hides the latency",
		Program: []uint32{
			insts.LW(insts.RegT0, 0, insts.RegSP),
			insts.LW(insts.RegT2, 4, insts.RegSP),
			insts.ADD(insts.RegT1, insts.RegT0, insts.RegT0),
			insts.ADD(insts.RegT3, insts.RegT2, insts.RegT2),
			insts.LW(insts.RegT4, 8, insts.RegSP),
			insts.LW(insts.RegT6, 12, insts.RegSP),
			insts.ADD(insts.RegT5, insts.RegT4, insts.RegT4),
			insts.ADD(insts.RegT7, insts.RegT6, insts.RegT6),
		},
		ExpectedCycles: 13,
	}
}

// 5. Store After Load - stores read their data register in ID
func storeAfterLoad() Benchmark {
	return Benchmark{
		Name:        "store_after_load",
		Description: "3 LW/SW copies - the store data is a load-use hazard",
		Program: []uint32{
			insts.LW(insts.RegT0, 0, insts.RegSP),
			insts.SW(insts.RegT0, 4, insts.RegSP),
			insts.LW(insts.RegT1, 8, insts.RegSP),
			insts.SW(insts.RegT1, 12, insts.RegSP),
			insts.LW(insts.RegT2, 16, insts.RegSP),
			insts.SW(insts.RegT2, 20, insts.RegSP),
		},
		ExpectedCycles: 14,
	}
}

// 6. Branch Sequence - control hazards without data dependencies
func branchSequence() Benchmark {
	program := make([]uint32, 0, 8)
	for i := 0; i < 4; i++ {
		program = append(program,
			insts.BEQ(insts.RegT0, insts.RegT1, 1),
			insts.ADDI(insts.RegT2, insts.RegZero, int16(i)),
		)
	}

	return Benchmark{
		Name:           "branch_sequence",
		Description:    "4 BEQs over independent ADDIs - one stall per branch unless predicted",
		Program:        program,
		ExpectedCycles: 17,
	}
}

// 7. Function Call - JAL writes $ra, JR reads it
func functionCall() Benchmark {
	return Benchmark{
		Name:        "function_call",
		Description: "JAL, body, JR $ra - link register forwarding plus two control stalls",
		Program: []uint32{
			insts.JAL(0x00400004 >> 2),
			insts.ADDI(insts.RegT5, insts.RegZero, 7),
			insts.JR(insts.RegRA),
			insts.NOP,
		},
		ExpectedCycles: 11,
	}
}
