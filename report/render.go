package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteText writes the human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	m := r.Metrics

	p := &printer{w: w}
	p.printf("Total Instructions: %d\n", m.TotalInstructions)
	p.printf("Total Cycles: %d\n", m.TotalCycles)
	p.printf("CPI: %.2f\n", m.CPI)
	p.printf("Efficiency: %.1f%%\n", m.Efficiency)
	p.printf("Speedup: %.2fx (ideal %.0fx)\n", m.Speedup, IdealSpeedup)
	p.printf("Simulated Time: %.3f ns @ %.2f GHz\n", m.SimulatedTimeNS, m.ClockGHz)
	if !r.SimulationComplete {
		p.printf("Note: stopped at the cycle limit before the pipeline drained\n")
	}
	p.printf("\n")

	p.printf("Hazards:\n")
	p.printf("  RAW hazards:     %d\n", m.RAWHazards)
	p.printf("  Forwards:        %d\n", m.ForwardCount)
	p.printf("  Stall cycles:    %d\n", m.StallCycles)
	p.printf("  Load-use stalls: %d\n", m.LoadUseStalls)
	p.printf("  Branch stalls:   %d\n", m.BranchStalls)

	if r.ICache != nil {
		p.printf("\n")
		p.printf("I-Cache:\n")
		p.printf("  Reads:    %d\n", r.ICache.Reads)
		p.printf("  Hits:     %d\n", r.ICache.Hits)
		p.printf("  Misses:   %d\n", r.ICache.Misses)
		p.printf("  Hit rate: %.1f%%\n", r.ICache.HitRate)
	}

	p.printf("\n")
	p.printf("Final Stages:\n")
	for _, s := range r.Stages {
		p.printf("  %-3s %s  %s\n", s.Name, s.InstructionHex, s.Mnemonic)
	}
	p.printf("Last Hazard: %s\n", r.hazardSummary())

	if p.err != nil {
		return p.err
	}

	if len(r.CycleHistory) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\nCycle History (%d cycles):\n", len(r.CycleHistory)); err != nil {
		return err
	}
	return r.writeHistory(w)
}

func (r *Report) hazardSummary() string {
	h := r.Hazard
	if !h.Detected {
		return HazardLabel(0)
	}

	s := h.Label
	if h.StallRequired {
		s += ", stall"
	}
	if h.ForwardFromName != "" {
		s += fmt.Sprintf(", forward %s %s->%s", h.ForwardRegName, h.ForwardFromName, h.ForwardToName)
	}
	return s
}

func (r *Report) writeHistory(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  Cycle\tIF\tID\tEX\tMEM\tWB\tHazard\tStall\tFwd")
	for _, c := range r.CycleHistory {
		_, _ = fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Cycle,
			c.StagesHex["IF"],
			c.StagesHex["ID"],
			c.StagesHex["EX"],
			c.StagesHex["MEM"],
			c.StagesHex["WB"],
			c.HazardTypeName,
			mark(c.Stall),
			mark(c.Forward),
		)
	}
	return tw.Flush()
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return "-"
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
