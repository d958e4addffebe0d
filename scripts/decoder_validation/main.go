// Validate decoder allocations - the hazard path must decode operands
// without allocating
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/mipspipe/insts"
)

var words = []uint32{
	0x012A5820, // add $t3, $t1, $t2
	0x8D4B0000, // lw $t3, 0($t2)
	0xAD4B0004, // sw $t3, 4($t2)
	0x11090002, // beq $t0, $t1, 2
	0x03E00008, // jr $ra
}

func main() {
	decoder := insts.NewDecoder()

	// Warm up
	for i := 0; i < 1000; i++ {
		_, _, _ = insts.Operands(words[i%len(words)])
		_ = decoder.Decode(words[i%len(words)])
	}

	iterations := 100000
	operandAllocs, operandTime := measure(iterations, func(w uint32) {
		_, _, _ = insts.Operands(w)
	})
	decodeAllocs, decodeTime := measure(iterations, func(w uint32) {
		_ = decoder.Decode(w)
	})

	total := iterations * len(words)

	fmt.Printf("Decoder Allocation Validation Results:\n")
	fmt.Printf("======================================\n")
	fmt.Printf("Decodes per path: %d\n", total)
	fmt.Printf("Operands: %v, %.3f allocs/op\n", operandTime, float64(operandAllocs)/float64(total))
	fmt.Printf("Decode:   %v, %.3f allocs/op\n", decodeTime, float64(decodeAllocs)/float64(total))

	if operandAllocs == 0 {
		fmt.Printf("\nSUCCESS: operand decode is allocation-free\n")
	} else {
		fmt.Printf("\nWARNING: operand decode allocates\n")
	}
}

func measure(iterations int, fn func(uint32)) (uint64, time.Duration) {
	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		for _, w := range words {
			fn(w)
		}
	}
	elapsed := time.Since(start)

	runtime.ReadMemStats(&m2)
	return m2.Mallocs - m1.Mallocs, elapsed
}
