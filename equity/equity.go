// Package equity scores one hand or one weighted range against another
// weighted range on a completed board, using the poker package's
// evaluator. Every computation here is exact enumeration over the range,
// never Monte Carlo sampling.
package equity

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lox/riversolver/poker"
)

// HandVsRange returns hero's equity against villain_range on a completed
// board: probability of winning plus half the probability of tying,
// summed only over villain hands disjoint from hero and the board.
//
// Degenerate cases return the 1.0 sentinel, not an error: hero sharing a
// card with the board (hero is impossible so the value is ignored by
// callers), an empty villain range, or a zero win+lose denominator
// (every surviving villain combo ties).
func HandVsRange(hero poker.HoleCards, villainRange *poker.Range, board poker.Board) float64 {
	boardHand := board.Hand()
	heroHand := hero.Hand()

	if !heroHand.Disjoint(boardHand) {
		return 1.0
	}
	if villainRange.Len() == 0 {
		return 1.0
	}

	dead := boardHand | heroHand
	heroValue := poker.EvaluateHand(boardHand | heroHand)

	villains := villainRange.Hands()
	win, lose := parallelWinLose(villains, func(vh poker.HoleCards) (w, l float64) {
		weight := villainRange.Weight(vh)
		if !vh.Hand().Disjoint(dead) {
			return 0, 0
		}
		villainValue := poker.EvaluateHand(boardHand | vh.Hand())
		switch poker.Compare(heroValue, villainValue) {
		case 1:
			return weight, 0
		case -1:
			return 0, weight
		default:
			return weight / 2, weight / 2
		}
	})

	if win+lose == 0 {
		return 1.0
	}
	return win / (win + lose)
}

// RangeVsRange returns heroRange's aggregate equity against villainRange
// on a completed board. Each villain hand's HandValue is computed once
// and reused across every hero hand that compares against it.
func RangeVsRange(heroRange, villainRange *poker.Range, board poker.Board) float64 {
	boardHand := board.Hand()

	heroHands := heroRange.Hands()
	villainHands := villainRange.Hands()
	if len(heroHands) == 0 || len(villainHands) == 0 {
		return 1.0
	}

	villainValues := make(map[poker.HoleCards]poker.HandValue, len(villainHands))
	for _, vh := range villainHands {
		if vh.Hand().Disjoint(boardHand) {
			villainValues[vh] = poker.EvaluateHand(boardHand | vh.Hand())
		}
	}

	win, lose := parallelWinLose(heroHands, func(hh poker.HoleCards) (w, l float64) {
		if !hh.Hand().Disjoint(boardHand) {
			return 0, 0
		}
		heroWeight := heroRange.Weight(hh)
		heroValue := poker.EvaluateHand(boardHand | hh.Hand())

		var hw, hl float64
		for _, vh := range villainHands {
			villainValue, ok := villainValues[vh]
			if !ok {
				continue // vh shares a card with the board
			}
			if !vh.Hand().Disjoint(hh.Hand()) {
				continue // vh shares a card with hero's hand
			}
			villainWeight := villainRange.Weight(vh)
			pairWeight := heroWeight * villainWeight
			switch poker.Compare(heroValue, villainValue) {
			case 1:
				hw += pairWeight
			case -1:
				hl += pairWeight
			default:
				hw += pairWeight / 2
				hl += pairWeight / 2
			}
		}
		return hw, hl
	})

	if win+lose == 0 {
		return 1.0
	}
	return win / (win + lose)
}

// parallelWinLose fans the per-item win/lose computation out across
// goroutines via errgroup, then reduces partial sums back in the fixed
// order of items so floating-point summation is deterministic regardless
// of goroutine scheduling.
func parallelWinLose[T any](items []T, score func(T) (win, lose float64)) (win, lose float64) {
	partialWin := make([]float64, len(items))
	partialLose := make([]float64, len(items))

	g, _ := errgroup.WithContext(context.Background())
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			w, l := score(item)
			partialWin[i] = w
			partialLose[i] = l
			return nil
		})
	}
	_ = g.Wait()

	for i := range items {
		win += partialWin[i]
		lose += partialLose[i]
	}
	return win, lose
}
