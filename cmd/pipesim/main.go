// Package main provides the pipesim command.
// pipesim runs a MIPS text segment through the 5-stage hazard pipeline and
// prints per-cycle snapshots and performance metrics.
//
// Usage:
//
//	pipesim [options] <program.hex>
//
// The program is a MARS "HexText" dump of the .text segment.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mipspipe/config"
	"github.com/sarchlab/mipspipe/loader"
	"github.com/sarchlab/mipspipe/report"
	"github.com/sarchlab/mipspipe/timing/cache"
	"github.com/sarchlab/mipspipe/timing/core"
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("pipesim", flag.ContinueOnError)
	flags.SetOutput(stderr)

	forwarding := flags.Bool("forwarding", true, "Enable operand forwarding")
	branchPredict := flags.Bool("branch-predict", false, "Enable predict-not-taken")
	configPath := flags.String("config", "", "Path to run configuration JSON file")
	writeConfig := flags.String("write-config", "", "Write the effective configuration to this path")
	jsonOutput := flags.Bool("json", false, "Print the report as JSON")
	icache := flags.Bool("icache", false, "Attach the default L1 instruction cache model")
	verbose := flags.Bool("v", false, "Verbose output (per-cycle trace on stderr)")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	if flags.NArg() < 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: pipesim [options] <program.hex>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		flags.PrintDefaults()
		return 1
	}

	programPath := flags.Arg(0)

	logger := logrus.New()
	logger.SetOutput(stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Set up run configuration
	var runConfig *config.RunConfig
	if *configPath != "" {
		var err error
		runConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error loading run config: %v\n", err)
			return 1
		}
	} else {
		runConfig = config.DefaultRunConfig()
	}

	// Flags given on the command line override the file.
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "forwarding":
			runConfig.Forwarding = *forwarding
		case "branch-predict":
			runConfig.BranchPrediction = *branchPredict
		case "icache":
			if !*icache {
				runConfig.ICache = nil
			} else if runConfig.ICache == nil {
				icacheConfig := cache.DefaultL1IConfig()
				runConfig.ICache = &icacheConfig
			}
		}
	})

	if err := runConfig.Validate(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error in run config: %v\n", err)
		return 1
	}

	if *writeConfig != "" {
		if err := runConfig.SaveConfig(*writeConfig); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error saving run config: %v\n", err)
			return 1
		}
	}

	// Load the program
	prog, err := loader.Load(programPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	logger.WithFields(logrus.Fields{
		"path":              programPath,
		"words":             prog.Len(),
		"entry":             fmt.Sprintf("0x%08X", prog.EntryPoint),
		"forwarding":        runConfig.Forwarding,
		"branch_prediction": runConfig.BranchPrediction,
	}).Debug("program loaded")

	opts := append(runConfig.PipelineOptions(), pipeline.WithEntryPoint(prog.EntryPoint))
	if *verbose {
		opts = append(opts, pipeline.WithLogger(logger))
	}

	c := core.NewCore(prog.Words, opts...)
	c.Run()
	result := c.Result()

	if !result.Complete {
		logger.WithField("cycles", result.Stats.Cycles).
			Warn("cycle limit reached before the pipeline drained")
	}

	rep := report.New(result, sim.Freq(runConfig.ClockGHz)*sim.GHz)
	if icStats, ok := c.Pipeline.FetchCacheStats(); ok {
		rep.SetICache(icStats)
	}

	if *jsonOutput {
		err = rep.WriteJSON(stdout)
	} else {
		_, _ = fmt.Fprintf(stdout, "Program: %s\n", programPath)
		_, _ = fmt.Fprintf(stdout, "Forwarding: %v, Branch prediction: %v\n",
			runConfig.Forwarding, runConfig.BranchPrediction)
		_, _ = fmt.Fprintf(stdout, "\n")
		err = rep.WriteText(stdout)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return 1
	}

	return 0
}
