package equity

import (
	"math"
	"testing"

	"github.com/lox/riversolver/poker"
)

// The concrete suits below are chosen so that "55" and "56s" share the 5h
// card, matching the blocking behavior the scenario expects: the range
// entries are literal two-card combos, not abstract hand classes, and
// combos sharing a card with the hand under evaluation are skipped per
// the hand-vs-range and range-vs-range contracts.
func scenarioBoard(t *testing.T) poker.Board {
	t.Helper()
	b, err := poker.ParseBoard("3c 4c 7c Ks Td")
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

func scenarioVillainRange(t *testing.T) *poker.Range {
	t.Helper()
	r := poker.NewRange()
	r.Add(hc(t, "Ah", "Ad"), 1)
	r.Add(hc(t, "5h", "6h"), 2)
	r.Add(hc(t, "2h", "2d"), 3)
	return r
}

func hc(t *testing.T, a, b string) poker.HoleCards {
	t.Helper()
	ca, err := poker.ParseCard(a)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", a, err)
	}
	cb, err := poker.ParseCard(b)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", b, err)
	}
	return poker.NewHoleCards(ca, cb)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHandVsRangeScenario11(t *testing.T) {
	board := scenarioBoard(t)
	villains := scenarioVillainRange(t)
	hero := hc(t, "Kh", "Kd")

	got := HandVsRange(hero, villains, board)
	want := 2.0 / 3.0
	if !almostEqual(got, want) {
		t.Errorf("HandVsRange(KK) = %v, want %v", got, want)
	}
}

func TestHandVsRangeScenario12(t *testing.T) {
	board := scenarioBoard(t)
	villains := scenarioVillainRange(t)
	hero := hc(t, "5h", "5d")

	got := HandVsRange(hero, villains, board)
	want := 3.0 / 4.0
	if !almostEqual(got, want) {
		t.Errorf("HandVsRange(55) = %v, want %v", got, want)
	}
}

func TestRangeVsRangeScenario13(t *testing.T) {
	board := scenarioBoard(t)
	heroRange := scenarioVillainRange(t)

	villainRange := poker.NewRange()
	villainRange.Add(hc(t, "Kh", "Kd"), 1)
	villainRange.Add(hc(t, "5h", "5d"), 1)

	got := RangeVsRange(heroRange, villainRange, board)
	want := 0.3
	if !almostEqual(got, want) {
		t.Errorf("RangeVsRange = %v, want %v", got, want)
	}
}

func TestHandVsRangeHeroBlockedByBoard(t *testing.T) {
	board := scenarioBoard(t)
	villains := scenarioVillainRange(t)
	// Hero holds a card already on the board: impossible hand, sentinel 1.0.
	hero := hc(t, "3c", "2s")

	if got := HandVsRange(hero, villains, board); got != 1.0 {
		t.Errorf("expected sentinel 1.0 for board-blocked hero, got %v", got)
	}
}

func TestHandVsRangeEmptyRange(t *testing.T) {
	board := scenarioBoard(t)
	hero := hc(t, "Kh", "Kd")

	if got := HandVsRange(hero, poker.NewRange(), board); got != 1.0 {
		t.Errorf("expected sentinel 1.0 for empty range, got %v", got)
	}
}

func TestEquityComplementInvariant(t *testing.T) {
	board := scenarioBoard(t)
	hero := hc(t, "Kh", "Kd")
	villain := hc(t, "Ah", "Ad")

	heroRange := poker.NewRange()
	heroRange.Add(villain, 1)
	villainRange := poker.NewRange()
	villainRange.Add(hero, 1)

	forward := HandVsRange(hero, heroRange, board)
	backward := HandVsRange(villain, villainRange, board)

	if !almostEqual(forward+backward, 1.0) {
		t.Errorf("equity complement invariant violated: %v + %v != 1", forward, backward)
	}
}

func TestSelfEquityIsHalf(t *testing.T) {
	board := scenarioBoard(t)
	r := poker.NewRange()
	r.Add(hc(t, "Ah", "Ad"), 1)
	r.Add(hc(t, "Kc", "Kd"), 1)

	got := RangeVsRange(r, r, board)
	if !almostEqual(got, 0.5) {
		t.Errorf("self-equity = %v, want 0.5", got)
	}
}
