package solver

import (
	"fmt"

	"github.com/lox/riversolver/poker"
)

// Config is everything a solve needs: the fixed board, both sides'
// starting ranges, which side is being optimized, and the three
// parameters that shape the strategy tree.
type Config struct {
	Board         poker.Board
	HeroRange     *poker.Range
	VillainRange  *poker.Range
	HeroSide      Side
	BetSize       float64
	StackSize     float64
	StartingPot   float64
	Method        OptimizeMethod
	MaxIterations int

	// OnProgress, if set, is called after each major optimizer iteration
	// with the iteration count and the objective value at that point. It
	// is how a caller like the streaming solve server reports progress to
	// a connected client while gonum/optimize is still running.
	OnProgress func(iteration int, objective float64)
}

// OptimizeMethod selects which gonum/optimize local method the driver
// hands the objective to.
type OptimizeMethod int

const (
	NelderMead OptimizeMethod = iota
	GradientDescent
)

// Validate checks the fields a solve cannot proceed without, following the
// same LoadX/DefaultX/Validate shape this codebase uses for its other
// configuration structs.
func (c *Config) Validate() error {
	if c.Board == (poker.Board{}) {
		return fmt.Errorf("solver: board must be set")
	}
	if c.HeroRange == nil || c.HeroRange.Len() == 0 {
		return fmt.Errorf("solver: hero range must be nonempty")
	}
	if c.VillainRange == nil || c.VillainRange.Len() == 0 {
		return fmt.Errorf("solver: villain range must be nonempty")
	}
	if c.HeroSide != IP && c.HeroSide != OOP {
		return ErrInvalidPlayer
	}
	if c.BetSize <= 0 {
		return fmt.Errorf("solver: bet size must be positive, got %v", c.BetSize)
	}
	if c.StackSize <= 0 {
		return fmt.Errorf("solver: stack size must be positive, got %v", c.StackSize)
	}
	if c.StartingPot <= 0 {
		return fmt.Errorf("solver: starting pot must be positive, got %v", c.StartingPot)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("solver: max iterations must be nonnegative, got %d", c.MaxIterations)
	}
	return nil
}

// DefaultConfig returns a Config with the non-range fields set to the
// library's documented defaults; callers still must supply a board and
// both ranges before Validate passes.
func DefaultConfig() Config {
	return Config{
		BetSize:       1.0,
		StackSize:     4.0,
		StartingPot:   1.0,
		Method:        NelderMead,
		MaxIterations: 1000,
	}
}
