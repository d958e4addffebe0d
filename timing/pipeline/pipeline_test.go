package pipeline_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipspipe/insts"
	"github.com/sarchlab/mipspipe/timing/cache"
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

// loadUseProgram is add $t2,$t0,$t1; lw $t3,0($t2); add $t4,$t3,$t2.
func loadUseProgram() []uint32 {
	return []uint32{
		insts.ADD(insts.RegT2, insts.RegT0, insts.RegT1),
		insts.LW(insts.RegT3, 0, insts.RegT2),
		insts.ADD(insts.RegT4, insts.RegT3, insts.RegT2),
	}
}

func nops(n int) []uint32 {
	return make([]uint32, n)
}

var _ = Describe("Pipeline", func() {
	Describe("NewPipeline", func() {
		It("should start empty at the text base", func() {
			pipe := pipeline.NewPipeline(loadUseProgram())

			Expect(pipe.PC()).To(Equal(pipeline.TextBase))
			for _, slot := range pipe.Slots() {
				Expect(slot).To(Equal(pipeline.Bubble()))
			}
			Expect(pipe.Halted()).To(BeFalse())
			Expect(pipe.History()).To(BeEmpty())
		})

		It("should copy the program", func() {
			program := loadUseProgram()
			pipe := pipeline.NewPipeline(program)
			program[0] = insts.J(0)

			pipe.RunCycles(1)

			Expect(pipe.Slot(pipeline.StageIF).InstructionWord).
				To(Equal(insts.ADD(insts.RegT2, insts.RegT0, insts.RegT1)))
		})
	})

	Describe("Fetch and decode", func() {
		It("should advance the PC by 4 per fetch", func() {
			pipe := pipeline.NewPipeline(loadUseProgram())

			pipe.RunCycles(1)
			Expect(pipe.Slot(pipeline.StageIF).PC).To(Equal(pipeline.TextBase))
			Expect(pipe.PC()).To(Equal(pipeline.TextBase + 4))

			pipe.RunCycles(1)
			Expect(pipe.Slot(pipeline.StageIF).PC).To(Equal(pipeline.TextBase + 4))
			Expect(pipe.Slot(pipeline.StageID).PC).To(Equal(pipeline.TextBase))
		})

		It("should fetch from a custom entry point", func() {
			const entry uint32 = 0x00001000
			pipe := pipeline.NewPipeline(loadUseProgram(),
				pipeline.WithEntryPoint(entry),
				pipeline.WithFetchCache(cache.DefaultL1IConfig()))
			Expect(pipe.EntryPoint()).To(Equal(entry))

			pipe.RunCycles(2)
			Expect(pipe.Slot(pipeline.StageID).PC).To(Equal(entry))
			Expect(pipe.Slot(pipeline.StageIF).PC).To(Equal(entry + 4))
			Expect(pipe.Slot(pipeline.StageIF).InstructionWord).
				To(Equal(loadUseProgram()[1]))

			pipe.Run()
			pipe.Reset()
			Expect(pipe.PC()).To(Equal(entry))
		})

		It("should decode operands when entering ID", func() {
			pipe := pipeline.NewPipeline(loadUseProgram())

			pipe.RunCycles(2)

			id := pipe.Slot(pipeline.StageID)
			Expect(id.Src1).To(Equal(int8(insts.RegT0)))
			Expect(id.Src2).To(Equal(int8(insts.RegT1)))
			Expect(id.Dest).To(Equal(int8(insts.RegT2)))
		})

		It("should keep bubbles canonical", func() {
			pipe := pipeline.NewPipeline(loadUseProgram())

			for pipe.RunCycles(1) {
				for _, slot := range pipe.Slots() {
					if !slot.Valid {
						Expect(slot).To(Equal(pipeline.Bubble()))
					}
				}
			}
		})
	})

	Describe("Load-use scenario", func() {
		var stats pipeline.Statistics
		var pipe *pipeline.Pipeline

		BeforeEach(func() {
			pipe = pipeline.NewPipeline(loadUseProgram(),
				pipeline.WithForwarding(true),
				pipeline.WithBranchPrediction(false))
			stats = pipe.Run()
		})

		It("should stall once for the load", func() {
			Expect(stats.Stalls).To(Equal(uint64(1)))
			Expect(stats.LoadUseStalls).To(Equal(uint64(1)))
			Expect(stats.Instructions).To(Equal(uint64(3)))
			Expect(stats.Cycles).To(Equal(uint64(9)))
		})

		It("should count data hazards and forwards", func() {
			Expect(stats.DataHazards).To(Equal(uint64(2)))
			Expect(stats.Forwards).To(Equal(uint64(3)))
			Expect(stats.BranchStalls).To(BeZero())
		})

		It("should finalize the CPI", func() {
			Expect(stats.CPINumerator).To(Equal(uint64(900)))
			Expect(stats.CPIDenominator).To(Equal(uint64(3)))
			Expect(stats.CPI()).To(BeNumerically("~", 3.0))
		})

		It("should drain", func() {
			Expect(pipe.Halted()).To(BeTrue())
			Expect(pipe.Drained()).To(BeTrue())
			for _, slot := range pipe.Slots() {
				Expect(slot.Valid).To(BeFalse())
			}
		})

		It("should record the stalled cycle", func() {
			history := pipe.History()
			Expect(history).To(HaveLen(9))

			program := loadUseProgram()
			stalled := history[4]
			Expect(stalled.Cycle).To(Equal(uint64(5)))
			Expect(stalled.Hazard).To(Equal(pipeline.HazardLoadUse))
			Expect(stalled.Stall).To(BeTrue())
			Expect(stalled.Forward).To(BeTrue())
			Expect(stalled.Stages).To(Equal([pipeline.NumStages]uint32{
				0, program[2], 0, program[1], program[0],
			}))

			// The held add now forwards $t3 from MEM.
			Expect(history[5].Hazard).To(Equal(pipeline.HazardRAW))
			Expect(history[5].Stall).To(BeFalse())
			Expect(history[5].Forward).To(BeTrue())
		})
	})

	Describe("Load-use precedence", func() {
		It("should stall on load-use even with forwarding", func() {
			pipe := pipeline.NewPipeline([]uint32{
				insts.LW(insts.RegT0, 0, insts.RegSP),
				insts.ADD(insts.RegT1, insts.RegT0, insts.RegT2),
			}, pipeline.WithForwarding(true))

			pipe.RunCycles(4)

			report := pipe.LastHazard()
			Expect(report.Kind).To(Equal(pipeline.HazardLoadUse))
			Expect(report.StallRequired).To(BeTrue())
			Expect(report.Forward).To(BeNil())
			Expect(pipe.Slot(pipeline.StageEX).Valid).To(BeFalse())
		})
	})

	Describe("Forwarding toggle", func() {
		program := []uint32{
			insts.ADD(insts.RegT2, insts.RegT0, insts.RegT1),
			insts.ADD(insts.RegT3, insts.RegT2, insts.RegT1),
		}

		It("should forward instead of stalling", func() {
			stats := pipeline.NewPipeline(program, pipeline.WithForwarding(true)).Run()

			Expect(stats.DataHazards).To(Equal(uint64(1)))
			Expect(stats.Forwards).To(Equal(uint64(1)))
			Expect(stats.Stalls).To(BeZero())
			Expect(stats.Cycles).To(Equal(uint64(7)))
		})

		It("should stall until writeback without forwarding", func() {
			stats := pipeline.NewPipeline(program, pipeline.WithForwarding(false)).Run()

			Expect(stats.DataHazards).To(Equal(uint64(1)))
			Expect(stats.Forwards).To(BeZero())
			Expect(stats.Stalls).To(Equal(uint64(2)))
			Expect(stats.Cycles).To(Equal(uint64(9)))
		})

		It("should see the same RAW hazards either way", func() {
			on := pipeline.NewPipeline(loadUseProgram(), pipeline.WithForwarding(true)).Run()
			off := pipeline.NewPipeline(loadUseProgram(), pipeline.WithForwarding(false)).Run()

			Expect(on.DataHazards).To(Equal(off.DataHazards))
			Expect(on.Forwards).To(BeNumerically(">", 0))
			Expect(off.Forwards).To(BeZero())
			Expect(off.Stalls).To(BeNumerically(">", on.Stalls))
			Expect(off.Stalls).To(Equal(uint64(4)))
			Expect(off.LoadUseStalls).To(Equal(uint64(1)))
		})
	})

	Describe("No-hazard baseline", func() {
		It("should take N+5 cycles", func() {
			program := []uint32{
				insts.ADD(insts.RegT2, insts.RegT0, insts.RegT1),
				insts.ADD(insts.RegT3, insts.RegT0, insts.RegT1),
				insts.ADD(insts.RegT4, insts.RegT0, insts.RegT1),
			}

			stats := pipeline.NewPipeline(program).Run()

			Expect(stats.DataHazards).To(BeZero())
			Expect(stats.Stalls).To(BeZero())
			Expect(stats.Forwards).To(BeZero())
			Expect(stats.Instructions).To(Equal(uint64(3)))
			Expect(stats.Cycles).To(Equal(uint64(8)))
		})
	})

	Describe("Scoreboard timing", func() {
		It("should clear one cycle after the producer reaches WB", func() {
			pipe := pipeline.NewPipeline([]uint32{
				insts.ADD(insts.RegT0, insts.RegT1, insts.RegT2),
			})

			producers := []pipeline.Stage{}
			for pipe.RunCycles(1) {
				sb := pipe.Scoreboard()
				producers = append(producers, sb.Producer(insts.RegT0))
			}

			Expect(producers).To(Equal([]pipeline.Stage{
				pipeline.StageNone,
				pipeline.StageNone,
				pipeline.StageEX,
				pipeline.StageMEM,
				pipeline.StageWB,
			}))
			sb := pipe.Scoreboard()
			Expect(sb.Busy(insts.RegT0)).To(BeFalse())
			Expect(pipe.Stats().Cycles).To(Equal(uint64(6)))
		})

		It("should keep a register busy for a younger writer", func() {
			pipe := pipeline.NewPipeline([]uint32{
				insts.ADD(insts.RegT0, insts.RegT1, insts.RegT2),
				insts.ADD(insts.RegT0, insts.RegT1, insts.RegT2),
			})

			pipe.RunCycles(6)
			sb := pipe.Scoreboard()
			Expect(sb.Busy(insts.RegT0)).To(BeTrue())

			pipe.RunCycles(1)
			sb = pipe.Scoreboard()
			Expect(sb.Busy(insts.RegT0)).To(BeFalse())
		})
	})

	Describe("Control hazards", func() {
		program := []uint32{
			insts.BEQ(insts.RegT0, insts.RegT1, 1),
			insts.ADD(insts.RegT2, insts.RegT0, insts.RegT1),
		}

		It("should stall once per branch without prediction", func() {
			pipe := pipeline.NewPipeline(program, pipeline.WithBranchPrediction(false))
			stats := pipe.Run()

			Expect(stats.BranchStalls).To(Equal(uint64(1)))
			Expect(stats.Stalls).To(Equal(uint64(1)))
			Expect(stats.Cycles).To(Equal(uint64(8)))
			Expect(pipe.History()[2].Hazard).To(Equal(pipeline.HazardControl))
			Expect(pipe.History()[2].Stall).To(BeTrue())
		})

		It("should count but not stall with prediction", func() {
			stats := pipeline.NewPipeline(program, pipeline.WithBranchPrediction(true)).Run()

			Expect(stats.BranchStalls).To(Equal(uint64(1)))
			Expect(stats.Stalls).To(BeZero())
			Expect(stats.Cycles).To(Equal(uint64(7)))
		})

		It("should report control over a forwarded operand", func() {
			pipe := pipeline.NewPipeline([]uint32{
				insts.JAL(0x100010),
				insts.JR(insts.RegRA),
			}, pipeline.WithBranchPrediction(true))

			pipe.RunCycles(4)

			report := pipe.LastHazard()
			Expect(report.Kind).To(Equal(pipeline.HazardControl))
			Expect(report.StallRequired).To(BeFalse())
			Expect(report.Forward).To(Equal(&pipeline.Forward{
				From:     pipeline.StageEX,
				To:       pipeline.StageID,
				Register: insts.RegRA,
			}))
		})
	})

	Describe("Termination", func() {
		It("should run one cycle for an empty program", func() {
			pipe := pipeline.NewPipeline(nil)
			stats := pipe.Run()

			Expect(stats.Cycles).To(Equal(uint64(1)))
			Expect(stats.Instructions).To(BeZero())
			Expect(stats.CPIDenominator).To(Equal(uint64(1)))
			Expect(stats.CPINumerator).To(Equal(uint64(100)))
			Expect(stats.CPI()).To(BeNumerically("~", 1.0))
			Expect(pipe.Drained()).To(BeTrue())
		})

		It("should stop at the cycle cap", func() {
			pipe := pipeline.NewPipeline(nops(600))
			stats := pipe.Run()

			Expect(stats.Cycles).To(Equal(uint64(pipeline.MaxCycles)))
			Expect(stats.Instructions).To(Equal(uint64(495)))
			Expect(pipe.Halted()).To(BeTrue())
			Expect(pipe.Drained()).To(BeFalse())
			Expect(stats.CPI()).To(BeNumerically(">=", 1.0))
		})

		It("should ignore ticks after halting", func() {
			pipe := pipeline.NewPipeline(loadUseProgram())
			stats := pipe.Run()

			pipe.Tick()
			Expect(pipe.RunCycles(10)).To(BeFalse())

			Expect(pipe.Stats()).To(Equal(stats))
		})
	})

	Describe("History", func() {
		It("should keep the first 50 cycles", func() {
			pipe := pipeline.NewPipeline(nops(60))
			pipe.Run()

			history := pipe.History()
			Expect(pipe.Stats().Cycles).To(Equal(uint64(65)))
			Expect(history).To(HaveLen(pipeline.DefaultHistoryCapacity))
			Expect(history[0].Cycle).To(Equal(uint64(1)))
			Expect(history[49].Cycle).To(Equal(uint64(50)))
		})
	})

	Describe("Determinism", func() {
		It("should produce identical runs", func() {
			a := pipeline.NewPipeline(loadUseProgram())
			b := pipeline.NewPipeline(loadUseProgram())

			Expect(a.Run()).To(Equal(b.Run()))
			Expect(a.History()).To(Equal(b.History()))
		})

		It("should repeat a run after Reset", func() {
			pipe := pipeline.NewPipeline(loadUseProgram())
			first := pipe.Run()
			history := pipe.History()

			pipe.Reset()
			Expect(pipe.Halted()).To(BeFalse())
			Expect(pipe.PC()).To(Equal(pipeline.TextBase))

			Expect(pipe.Run()).To(Equal(first))
			Expect(pipe.History()).To(Equal(history))
		})
	})

	Describe("Fetch cache", func() {
		It("should gather statistics without changing timing", func() {
			program := nops(8)
			plain := pipeline.NewPipeline(program).Run()

			pipe := pipeline.NewPipeline(program,
				pipeline.WithFetchCache(cache.DefaultL1IConfig()))
			cached := pipe.Run()

			Expect(cached).To(Equal(plain))

			stats, ok := pipe.FetchCacheStats()
			Expect(ok).To(BeTrue())
			Expect(stats.Reads).To(Equal(uint64(8)))
			Expect(stats.Misses).To(Equal(uint64(2)))
			Expect(stats.Hits).To(Equal(uint64(6)))
		})

		It("should fetch the program words through the cache", func() {
			pipe := pipeline.NewPipeline(loadUseProgram(),
				pipeline.WithFetchCache(cache.DefaultL1IConfig()))

			pipe.RunCycles(2)

			Expect(pipe.Slot(pipeline.StageIF).InstructionWord).
				To(Equal(loadUseProgram()[1]))
		})

		It("should report no cache when none is attached", func() {
			_, ok := pipeline.NewPipeline(nil).FetchCacheStats()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Logging", func() {
		It("should trace cycles at debug level", func() {
			var buf bytes.Buffer
			logger := logrus.New()
			logger.SetOutput(&buf)
			logger.SetLevel(logrus.DebugLevel)

			pipeline.NewPipeline(loadUseProgram(), pipeline.WithLogger(logger)).Run()

			Expect(buf.String()).To(ContainSubstring("pipeline cycle"))
			Expect(buf.String()).To(ContainSubstring("hazard=load-use"))
			Expect(buf.String()).To(ContainSubstring("pipeline halted"))
		})
	})
})
