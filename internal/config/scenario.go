// Package config loads river-solver scenarios from HCL files, following the
// same load/default/validate shape the rest of this codebase uses for its
// configuration structs.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ScenarioConfig is everything a solve needs, in its on-disk HCL form.
// Ranges and the board are kept as plain strings here and parsed into
// poker.Range/poker.Board by the caller, so this package stays independent
// of range-parsing errors specific to card notation.
type ScenarioConfig struct {
	Board         string  `hcl:"board"`
	HeroRange     string  `hcl:"hero_range"`
	VillainRange  string  `hcl:"villain_range"`
	HeroSide      string  `hcl:"hero_side,optional"`
	BetSize       float64 `hcl:"bet_size,optional"`
	StackSize     float64 `hcl:"stack_size,optional"`
	StartingPot   float64 `hcl:"starting_pot,optional"`
	Method        string  `hcl:"method,optional"`
	MaxIterations int     `hcl:"max_iterations,optional"`
}

// DefaultScenario returns a ScenarioConfig with every non-range, non-board
// field set to the library's documented defaults. Callers still must supply
// a board and both ranges before Validate passes.
func DefaultScenario() *ScenarioConfig {
	return &ScenarioConfig{
		HeroSide:      "oop",
		BetSize:       1.0,
		StackSize:     4.0,
		StartingPot:   1.0,
		Method:        "nelder-mead",
		MaxIterations: 1000,
	}
}

// LoadScenario loads a scenario from an HCL file, returning the documented
// defaults untouched if filename does not exist.
func LoadScenario(filename string) (*ScenarioConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultScenario(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	cfg := DefaultScenario()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	if cfg.HeroSide == "" {
		cfg.HeroSide = "oop"
	}
	if cfg.BetSize == 0 {
		cfg.BetSize = 1.0
	}
	if cfg.StackSize == 0 {
		cfg.StackSize = 4.0
	}
	if cfg.StartingPot == 0 {
		cfg.StartingPot = 1.0
	}
	if cfg.Method == "" {
		cfg.Method = "nelder-mead"
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 1000
	}

	return cfg, nil
}

// Validate checks the fields a scenario cannot proceed without.
func (c *ScenarioConfig) Validate() error {
	if c.Board == "" {
		return fmt.Errorf("config: board must be set")
	}
	if c.HeroRange == "" {
		return fmt.Errorf("config: hero_range must be set")
	}
	if c.VillainRange == "" {
		return fmt.Errorf("config: villain_range must be set")
	}
	if c.HeroSide != "ip" && c.HeroSide != "oop" {
		return fmt.Errorf("config: hero_side must be \"ip\" or \"oop\", got %q", c.HeroSide)
	}
	if c.BetSize <= 0 {
		return fmt.Errorf("config: bet_size must be positive, got %v", c.BetSize)
	}
	if c.StackSize <= 0 {
		return fmt.Errorf("config: stack_size must be positive, got %v", c.StackSize)
	}
	if c.StartingPot <= 0 {
		return fmt.Errorf("config: starting_pot must be positive, got %v", c.StartingPot)
	}
	if c.Method != "nelder-mead" && c.Method != "gradient-descent" {
		return fmt.Errorf("config: method must be \"nelder-mead\" or \"gradient-descent\", got %q", c.Method)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("config: max_iterations must be nonnegative, got %d", c.MaxIterations)
	}
	return nil
}
