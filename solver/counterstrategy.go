// Package solver computes the best-response value of a candidate strategy
// filled into a strategy.Tree, and drives an external optimizer searching
// for the strategy that minimizes the opponent's best response.
package solver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lox/riversolver/equity"
	"github.com/lox/riversolver/poker"
	"github.com/lox/riversolver/strategy"
)

// ErrInvalidPlayer is returned when a side identifier other than IP or OOP
// is supplied to a counter-strategy computation.
var ErrInvalidPlayer = fmt.Errorf("solver: invalid player side")

// Side, IP, and OOP alias strategy's side type so callers of this package
// never need to import strategy just to name a side.
type Side = strategy.Side

const (
	IP  = strategy.IP
	OOP = strategy.OOP
)

// modval reports the depth parity at which the opponent of heroSide acts:
// 0 when hero is IP (so OOP, the opponent, acts at even depths), 1 when
// hero is OOP (so IP acts at odd depths).
func modval(heroSide strategy.Side) int {
	if heroSide == strategy.IP {
		return 0
	}
	return 1
}

// CounterStrategyValue computes Σ_h weight(h) × best_response_ev(h) for
// opponentRange against the strategy already filled into tree, where
// heroSide names the side whose strategy populated the tree's ranges.
// Each opponent hand's best-response walk is independent of every other
// hand's, so the per-hand loop fans out across goroutines the same way
// equity.parallelWinLose does, reducing back in a fixed order for
// deterministic floating-point summation.
func CounterStrategyValue(tree *strategy.Tree, opponentRange *poker.Range, heroSide strategy.Side, board poker.Board) (float64, error) {
	if heroSide != strategy.IP && heroSide != strategy.OOP {
		return 0, ErrInvalidPlayer
	}
	mv := modval(heroSide)
	boardHand := board.Hand()

	hands := opponentRange.Hands()
	contributions := make([]float64, len(hands))

	g, _ := errgroup.WithContext(context.Background())
	for i, h := range hands {
		i, h := i, h
		g.Go(func() error {
			if !h.Hand().Disjoint(boardHand) {
				return nil
			}
			weight := opponentRange.Weight(h)
			ev := bestResponseEV(tree.Root, h, 0, mv, tree.StartingPot, board)
			contributions[i] = weight * ev
			return nil
		})
	}
	_ = g.Wait()

	var total float64
	for _, c := range contributions {
		total += c
	}
	return total, nil
}

// bestResponseEV returns the opponent's best-response expected value for a
// single hand h, starting from node at the given depth. mv is the depth
// parity at which the opponent (not the hero whose strategy fills the
// tree) is to act.
func bestResponseEV(node *strategy.Node, h poker.HoleCards, depth, mv int, p0 float64, board poker.Board) float64 {
	opponentActs := depth%2 == mv

	if opponentActs {
		return bestOfAvailableActions(node, h, depth, mv, p0, board)
	}
	return sumOfAvailableActions(node, h, depth, mv, p0, board)
}

// bestOfAvailableActions is used when the opponent is to act at node: they
// choose whichever of fold/call/raise maximizes their own EV.
func bestOfAvailableActions(node *strategy.Node, h poker.HoleCards, depth, mv int, p0 float64, board poker.Board) float64 {
	best := negInf
	hasOption := false

	if foldChild, ok := node.Children['f']; ok {
		_ = foldChild
		ev := -node.Range.Size(h.Hand()) * strategy.AmountLost(node.PotSize, p0)
		best, hasOption = maxOf(best, hasOption, ev)
	}
	if callChild, ok := node.Children['c']; ok {
		ev := node.Range.Size(h.Hand()) * callContribution(h, node.Range, callChild, p0, board)
		best, hasOption = maxOf(best, hasOption, ev)
	}
	if raiseChild, ok := node.Children['r']; ok {
		ev := bestResponseEV(raiseChild, h, depth+1, mv, p0, board)
		best, hasOption = maxOf(best, hasOption, ev)
	}
	if !hasOption {
		return 0
	}
	return best
}

// sumOfAvailableActions is used when the hero (whose strategy fills the
// tree) is to act at node: their action is already fixed by how their
// range split across the children, so the opponent's EV is an additive
// mixture over whichever children the hero's range actually reaches.
func sumOfAvailableActions(node *strategy.Node, h poker.HoleCards, depth, mv int, p0 float64, board poker.Board) float64 {
	var total float64

	if foldChild, ok := node.Children['f']; ok {
		total += foldChild.Range.Size(h.Hand()) * strategy.AmountGained(node.PotSize, p0)
	}
	if callChild, ok := node.Children['c']; ok {
		total += callChild.Range.Size(h.Hand()) * callContribution(h, callChild.Range, callChild, p0, board)
	}
	if raiseChild, ok := node.Children['r']; ok {
		total += bestResponseEV(raiseChild, h, depth+1, mv, p0, board)
	}
	return total
}

// callContribution is the common equity-times-pot-minus-risk term shared
// by the call branch at both an opponent-acts and a hero-acts node: the
// caller multiplies by the appropriate range size. eqRange is
// the range equity is computed against, which differs by who is acting:
// at an opponent-acts node the opponent's single hand h plays against the
// node's own (pre-action) range, since the call hasn't split hero's range
// yet from the opponent's point of view; at a hero-acts node hero's
// range has already been fixed by the call branch, so h plays against
// callChild.Range directly.
func callContribution(h poker.HoleCards, eqRange *poker.Range, callChild *strategy.Node, p0 float64, board poker.Board) float64 {
	eq := equity.HandVsRange(h, eqRange, board)
	return eq*callChild.PotSize - strategy.AmountLost(callChild.PotSize, p0)
}

const negInf = -1e300

func maxOf(best float64, hasOption bool, candidate float64) (float64, bool) {
	if !hasOption || candidate > best {
		return candidate, true
	}
	return best, hasOption
}
