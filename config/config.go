// Package config holds the JSON run profile used by the command-line tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/mipspipe/timing/cache"
	"github.com/sarchlab/mipspipe/timing/pipeline"
)

// RunConfig selects how a program is simulated.
type RunConfig struct {
	// Forwarding enables operand forwarding from EX and MEM.
	// Default: true.
	Forwarding bool `json:"forwarding"`

	// BranchPrediction enables predict-not-taken, which removes the
	// one-cycle control stall. Default: false.
	BranchPrediction bool `json:"branch_prediction"`

	// ICache, when set, attaches an instruction cache model to fetch and
	// reports its hit rate. Default: nil (no cache).
	ICache *cache.Config `json:"icache,omitempty"`

	// ClockGHz is the clock used to convert cycles into simulated time.
	// Default: 1.0.
	ClockGHz float64 `json:"clock_ghz"`
}

// DefaultRunConfig returns the classroom defaults: forwarding on, branch
// prediction off, no instruction cache, 1 GHz clock.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Forwarding:       true,
		BranchPrediction: false,
		ClockGHz:         1.0,
	}
}

// LoadConfig loads a RunConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config file: %w", err)
	}

	config := DefaultRunConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a RunConfig to a JSON file.
func (c *RunConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run config file: %w", err)
	}

	return nil
}

// Validate checks that the clock and cache geometry are usable.
func (c *RunConfig) Validate() error {
	if c.ClockGHz <= 0 {
		return fmt.Errorf("clock_ghz must be > 0")
	}
	if c.ICache != nil {
		if err := validateCache(c.ICache); err != nil {
			return fmt.Errorf("icache: %w", err)
		}
	}
	return nil
}

func validateCache(c *cache.Config) error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be > 0")
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.BlockSize < 4 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of two >= 4")
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size must be a multiple of associativity * block_size")
	}
	return nil
}

// Clone returns a deep copy of the RunConfig.
func (c *RunConfig) Clone() *RunConfig {
	clone := &RunConfig{
		Forwarding:       c.Forwarding,
		BranchPrediction: c.BranchPrediction,
		ClockGHz:         c.ClockGHz,
	}
	if c.ICache != nil {
		icache := *c.ICache
		clone.ICache = &icache
	}
	return clone
}

// PipelineOptions translates the profile into pipeline options.
func (c *RunConfig) PipelineOptions() []pipeline.PipelineOption {
	opts := []pipeline.PipelineOption{
		pipeline.WithForwarding(c.Forwarding),
		pipeline.WithBranchPrediction(c.BranchPrediction),
	}
	if c.ICache != nil {
		opts = append(opts, pipeline.WithFetchCache(*c.ICache))
	}
	return opts
}
