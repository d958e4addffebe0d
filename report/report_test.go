package report_test

import (
	"bytes"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mipspipe/insts"
	"github.com/sarchlab/mipspipe/report"
	"github.com/sarchlab/mipspipe/timing/cache"
	"github.com/sarchlab/mipspipe/timing/core"
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

var scenario = []uint32{
	insts.ADD(insts.RegT2, insts.RegT0, insts.RegT1),
	insts.LW(insts.RegT3, 0, insts.RegT2),
	insts.ADD(insts.RegT4, insts.RegT3, insts.RegT2),
}

var _ = Describe("Report", func() {
	Describe("derived metrics", func() {
		It("should compute efficiency and speedup from CPI", func() {
			Expect(report.Efficiency(1)).To(Equal(100.0))
			Expect(report.Efficiency(2)).To(Equal(50.0))
			Expect(report.Speedup(1)).To(Equal(5.0))
			Expect(report.Speedup(2.5)).To(Equal(2.0))
		})

		It("should fall back for a zero CPI", func() {
			Expect(report.Efficiency(0)).To(Equal(100.0))
			Expect(report.Speedup(0)).To(Equal(report.IdealSpeedup))
			Expect(report.CPI(pipeline.Statistics{})).To(Equal(1.0))
		})

		It("should read the fixed-point CPI", func() {
			stats := pipeline.Statistics{
				Cycles:         9,
				Instructions:   3,
				CPINumerator:   900,
				CPIDenominator: 3,
			}
			Expect(report.CPI(stats)).To(BeNumerically("~", 3.0))
		})

		It("should convert cycles to time", func() {
			Expect(report.SimulatedTime(9, 1*sim.GHz)).To(BeNumerically("~", 9.0))
			Expect(report.SimulatedTime(9, 2*sim.GHz)).To(BeNumerically("~", 4.5))
			Expect(report.SimulatedTime(9, 0)).To(BeZero())
		})
	})

	Describe("HazardLabel", func() {
		It("should title-case hazard names", func() {
			Expect(report.HazardLabel(pipeline.HazardNone)).To(Equal("None"))
			Expect(report.HazardLabel(pipeline.HazardRAW)).To(Equal("RAW"))
			Expect(report.HazardLabel(pipeline.HazardLoadUse)).To(Equal("Load-Use"))
			Expect(report.HazardLabel(pipeline.HazardControl)).To(Equal("Control"))
		})
	})

	Describe("New", func() {
		var r *report.Report

		BeforeEach(func() {
			r = report.New(core.Simulate(scenario, true, false), 1*sim.GHz)
		})

		It("should round the metrics", func() {
			Expect(r.Metrics.TotalCycles).To(Equal(uint64(9)))
			Expect(r.Metrics.TotalInstructions).To(Equal(uint64(3)))
			Expect(r.Metrics.StallCycles).To(Equal(uint64(1)))
			Expect(r.Metrics.LoadUseStalls).To(Equal(uint64(1)))
			Expect(r.Metrics.CPI).To(Equal(3.0))
			Expect(r.Metrics.Efficiency).To(Equal(33.3))
			Expect(r.Metrics.Speedup).To(Equal(1.67))
			Expect(r.Metrics.ClockGHz).To(BeNumerically("~", 1.0))
			Expect(r.Metrics.SimulatedTimeNS).To(BeNumerically("~", 9.0))
		})

		It("should list the five stages in order", func() {
			names := []string{}
			for _, s := range r.Stages {
				names = append(names, s.Name)
				Expect(s.Valid).To(BeFalse())
				Expect(s.Mnemonic).To(Equal("bubble"))
				Expect(s.DestRegName).To(BeEmpty())
			}
			Expect(names).To(Equal([]string{"IF", "ID", "EX", "MEM", "WB"}))
		})

		It("should convert the cycle history", func() {
			Expect(r.CycleHistory).To(HaveLen(9))

			stalled := r.CycleHistory[4]
			Expect(stalled.Cycle).To(Equal(uint64(5)))
			Expect(stalled.HazardTypeName).To(Equal("load-use"))
			Expect(stalled.Stall).To(BeTrue())
			Expect(stalled.Stages["ID"]).To(Equal(scenario[2]))
			Expect(stalled.StagesHex["WB"]).To(Equal("0x01095020"))
		})

		It("should mark a drained run complete", func() {
			Expect(r.SimulationComplete).To(BeTrue())
			Expect(r.ICache).To(BeNil())
		})
	})

	Describe("mid-run state", func() {
		It("should describe the live hazard and slots", func() {
			c := core.NewCore(scenario)
			c.RunCycles(5)

			r := report.New(c.Result(), 1*sim.GHz)

			Expect(r.SimulationComplete).To(BeFalse())
			Expect(r.Hazard.Label).To(Equal("Load-Use"))
			Expect(r.Hazard.StallRequired).To(BeTrue())
			Expect(r.Hazard.ForwardFromName).To(Equal("MEM"))
			Expect(r.Hazard.ForwardToName).To(Equal("ID"))
			Expect(r.Hazard.ForwardRegName).To(Equal("$t2"))

			id := r.Stages[1]
			Expect(id.Mnemonic).To(Equal("add"))
			Expect(id.SrcReg1Name).To(Equal("$t3"))
			Expect(id.SrcReg2Name).To(Equal("$t2"))
			Expect(id.DestRegName).To(Equal("$t4"))
			Expect(id.PCHex).To(Equal("0x00400008"))
		})
	})

	Describe("SetICache", func() {
		It("should attach cache statistics", func() {
			r := report.New(core.Simulate(scenario, true, false), 1*sim.GHz)
			r.SetICache(cache.Statistics{Reads: 3, Hits: 2, Misses: 1})

			Expect(r.ICache.HitRate).To(Equal(66.7))
		})
	})

	Describe("WriteJSON", func() {
		It("should encode the report", func() {
			r := report.New(core.Simulate(scenario, true, false), 1*sim.GHz)

			var buf bytes.Buffer
			Expect(r.WriteJSON(&buf)).To(Succeed())

			var decoded map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
			Expect(decoded).To(HaveKey("stages"))
			Expect(decoded).To(HaveKey("cycle_history"))
			Expect(decoded).NotTo(HaveKey("icache"))

			metrics := decoded["metrics"].(map[string]any)
			Expect(metrics["total_cycles"]).To(Equal(9.0))
			Expect(metrics["cpi"]).To(Equal(3.0))
		})
	})

	Describe("WriteText", func() {
		It("should print metrics, stages and history", func() {
			r := report.New(core.Simulate(scenario, true, false), 1*sim.GHz)

			var buf bytes.Buffer
			Expect(r.WriteText(&buf)).To(Succeed())

			out := buf.String()
			Expect(out).To(ContainSubstring("Total Cycles: 9"))
			Expect(out).To(ContainSubstring("CPI: 3.00"))
			Expect(out).To(ContainSubstring("Efficiency: 33.3%"))
			Expect(out).To(ContainSubstring("Load-use stalls: 1"))
			Expect(out).To(ContainSubstring("Last Hazard: None"))
			Expect(out).To(ContainSubstring("Cycle History (9 cycles)"))
			Expect(out).To(ContainSubstring("load-use"))
			Expect(out).NotTo(ContainSubstring("I-Cache"))
		})

		It("should note a run stopped at the cycle limit", func() {
			r := report.New(core.Simulate(make([]uint32, 600), true, false), 1*sim.GHz)

			var buf bytes.Buffer
			Expect(r.WriteText(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("cycle limit"))
		})

		It("should return write errors", func() {
			r := report.New(core.Simulate(scenario, true, false), 1*sim.GHz)

			Expect(r.WriteText(failingWriter{})).To(HaveOccurred())
		})
	})
})

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}
