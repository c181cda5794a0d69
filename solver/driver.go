package solver

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/optimize"

	"github.com/lox/riversolver/poker"
	"github.com/lox/riversolver/strategy"
)

// EqualityConstraint is one "these variables must sum to this total" row,
// consumed by the penalty bridge rather than captured in a closure, per
// the nested-closure redesign note: (hand_index, plan_range_start,
// plan_range_stop, desired_total) with the range half-open [start, stop).
type EqualityConstraint struct {
	HandIndex      int
	PlanRangeStart int
	PlanRangeStop  int
	DesiredTotal   float64
}

// Result is the converged variable vector, the objective value at that
// point, and whether the optimizer reported success.
type Result struct {
	Variables []float64
	Objective float64
	Success   bool
	Status    optimize.Status
}

// driverState is the fixed context an objective-function evaluation
// closes over: everything needed to turn a variable vector into a filled
// tree and a counter-strategy value, without re-deriving the plan/hand
// enumeration on every call.
type driverState struct {
	tree         *strategy.Tree
	heroHands    []poker.HoleCards
	heroPlans    []string
	opponentRange *poker.Range
	heroSide     Side
	board        poker.Board
	constraints  []EqualityConstraint
	penaltyWeight float64
}

// Solve builds the strategy tree for cfg, assembles the equality
// constraints that keep each hand's total plan weight equal to its input
// range weight, and minimizes the opposing side's counter-strategy value
// via gonum/optimize.
func Solve(cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	tree := strategy.Build(cfg.StartingPot, cfg.StackSize, cfg.BetSize)

	heroRange, opponentRange := cfg.HeroRange, cfg.VillainRange
	// Hero's variables range over every leaf plan of the tree: hero's
	// strategy must place weight at every terminal the tree can reach,
	// not just the leaves whose final action happens to be hero's own
	// (that length-parity partition only matters inside the
	// counter-strategy walk, for picking which formula branch applies).
	heroPlans := orderPlansForConstraints(tree.Plans, cfg.HeroSide)
	heroHands := heroRange.Hands()

	state := &driverState{
		tree:          tree,
		heroHands:     heroHands,
		heroPlans:     heroPlans,
		opponentRange: opponentRange,
		heroSide:      cfg.HeroSide,
		board:         cfg.Board,
		penaltyWeight: 1e6,
	}
	state.constraints = buildConstraints(heroHands, heroPlans, cfg.HeroSide, heroRange)

	init := initialPoint(heroHands, heroPlans, cfg.HeroSide, heroRange)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return state.objective(x)
		},
	}

	method := optimize.Method(&optimize.NelderMead{})
	if cfg.Method == GradientDescent {
		method = &optimize.GradientDescent{}
	}

	settings := &optimize.Settings{}
	if cfg.MaxIterations > 0 {
		settings.MajorIterations = cfg.MaxIterations
	}
	if cfg.OnProgress != nil {
		settings.Recorder = &progressRecorder{onProgress: cfg.OnProgress}
	}

	res, err := optimize.Minimize(problem, init, settings, method)
	if err != nil {
		return Result{}, fmt.Errorf("solver: optimize.Minimize: %w", err)
	}

	return Result{
		Variables: res.X,
		Objective: res.F,
		Success:   res.Status == optimize.Success || res.Status == optimize.FunctionConvergence,
		Status:    res.Status,
	}, nil
}

// progressRecorder adapts a Config.OnProgress callback to gonum/optimize's
// Recorder interface, so a caller can observe iteration progress without
// depending on gonum/optimize directly.
type progressRecorder struct {
	onProgress func(iteration int, objective float64)
	iteration  int
}

func (r *progressRecorder) Init() error { return nil }

func (r *progressRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if op != optimize.MajorIteration {
		return nil
	}
	r.iteration++
	if loc != nil {
		r.onProgress(r.iteration, loc.F)
	}
	return nil
}

// varIndex is the fixed (plan, hand) → variable mapping the whole driver
// agrees on: plan p and hand h map to p*num_hands+h.
func varIndex(planIdx, handIdx, numHands int) int {
	return planIdx*numHands + handIdx
}

// FillTree fills tree's node ranges from a solved variable vector x, using
// the same (plan, hand) -> variable layout Solve's objective uses. Callers
// that want to inspect the converged strategy in a tree (rather than just
// the objective value Solve returns) call this with Solve's Result.Variables.
func FillTree(tree *strategy.Tree, heroSide Side, heroRange *poker.Range, x []float64) error {
	heroPlans := orderPlansForConstraints(tree.Plans, heroSide)
	return fillTree(tree, heroPlans, heroRange.Hands(), x)
}

func fillTree(tree *strategy.Tree, heroPlans []string, heroHands []poker.HoleCards, x []float64) error {
	numHands := len(heroHands)

	tree.ClearRanges()
	for pi, plan := range heroPlans {
		for hi, h := range heroHands {
			w := x[varIndex(pi, hi, numHands)]
			if w <= 0 {
				continue
			}
			delta := poker.NewRange()
			delta.Set(h, w)
			if err := tree.ModifyNodesByPlan(plan, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// objective fills the tree from x, clearing prior ranges first, then
// returns the opponent's counter-strategy value plus a quadratic penalty
// for any equality constraint violation. gonum/optimize ships only
// unconstrained and bounded local methods, so the equality constraints
// that keep each hand's plan weights summing to its input range weight
// are folded into the objective as a penalty term rather than solved by a
// native equality-constrained method.
func (s *driverState) objective(x []float64) float64 {
	numHands := len(s.heroHands)
	_ = fillTree(s.tree, s.heroPlans, s.heroHands, x)

	value, err := CounterStrategyValue(s.tree, s.opponentRange, s.heroSide, s.board)
	if err != nil {
		return 1e18
	}

	var penalty float64
	for _, c := range s.constraints {
		var sum float64
		for pi := c.PlanRangeStart; pi < c.PlanRangeStop; pi++ {
			sum += x[varIndex(pi, c.HandIndex, numHands)]
		}
		diff := sum - c.DesiredTotal
		penalty += diff * diff
	}

	return value + s.penaltyWeight*penalty
}

// orderPlansForConstraints arranges an IP hero's plans so that bet-first
// ("r"-leading) plans form a contiguous prefix and check-first
// ("c"-leading) plans a contiguous suffix, so each partition's equality
// constraint can be expressed as a single contiguous plan-index range.
// OOP plans need no reordering: there is only one partition.
func orderPlansForConstraints(plans []string, side Side) []string {
	if side == OOP {
		out := make([]string, len(plans))
		copy(out, plans)
		return out
	}
	var betFirst, checkFirst []string
	for _, p := range plans {
		if strings.HasPrefix(p, "r") {
			betFirst = append(betFirst, p)
		} else {
			checkFirst = append(checkFirst, p)
		}
	}
	return append(betFirst, checkFirst...)
}

// buildConstraints assembles one equality constraint per (hand, partition)
// pair. An OOP hero has a single partition spanning all of heroPlans: the
// total weight placed on hand h across every plan must equal the input
// range's weight for h. An IP hero has two partitions — bet-first plans
// and check-first plans — each separately required to sum to h's weight,
// encoding that IP's total probability conditional on facing a bet equals
// the marginal hand weight, and likewise conditional on facing a check.
func buildConstraints(hands []poker.HoleCards, plans []string, side Side, heroRange *poker.Range) []EqualityConstraint {
	numPlans := len(plans)
	var ranges [][2]int
	if side == OOP {
		ranges = [][2]int{{0, numPlans}}
	} else {
		split := 0
		for _, p := range plans {
			if strings.HasPrefix(p, "r") {
				split++
			} else {
				break
			}
		}
		ranges = [][2]int{{0, split}, {split, numPlans}}
	}

	var constraints []EqualityConstraint
	for hi, h := range hands {
		weight := heroRange.Weight(h)
		for _, r := range ranges {
			if r[0] == r[1] {
				continue
			}
			constraints = append(constraints, EqualityConstraint{
				HandIndex:      hi,
				PlanRangeStart: r[0],
				PlanRangeStop:  r[1],
				DesiredTotal:   weight,
			})
		}
	}
	return constraints
}

// initialPoint spreads each hand's weight uniformly across its allowed
// plans — for IP, uniformly within each partition separately.
func initialPoint(hands []poker.HoleCards, plans []string, side Side, heroRange *poker.Range) []float64 {
	numHands := len(hands)
	x := make([]float64, len(plans)*numHands)

	assignUniform := func(planStart, planStop int) {
		n := planStop - planStart
		if n == 0 {
			return
		}
		for hi, h := range hands {
			share := heroRange.Weight(h) / float64(n)
			for pi := planStart; pi < planStop; pi++ {
				x[varIndex(pi, hi, numHands)] = share
			}
		}
	}

	if side == OOP {
		assignUniform(0, len(plans))
		return x
	}

	split := 0
	for _, p := range plans {
		if strings.HasPrefix(p, "r") {
			split++
		} else {
			break
		}
	}
	assignUniform(0, split)
	assignUniform(split, len(plans))
	return x
}
