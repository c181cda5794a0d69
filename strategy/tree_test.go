package strategy

import (
	"testing"

	"github.com/lox/riversolver/poker"
)

func TestBuildRootShape(t *testing.T) {
	tree := Build(10, 40, 0.5)

	if _, ok := tree.Root.Children['c']; !ok {
		t.Fatal("root missing check child")
	}
	if _, ok := tree.Root.Children['r']; !ok {
		t.Fatal("root missing raise child")
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("root should have exactly 2 children, got %d", len(tree.Root.Children))
	}

	checkNode := tree.Root.Children['c']
	if checkNode.PotSize != tree.StartingPot {
		t.Errorf("check node pot = %v, want %v (unchanged)", checkNode.PotSize, tree.StartingPot)
	}
	if _, ok := checkNode.Children['c']; !ok {
		t.Fatal("check node missing check-check terminal")
	}
	if _, ok := checkNode.Children['r']; !ok {
		t.Fatal("check node missing check-raise continuation")
	}
	if len(checkNode.Children['c'].Children) != 0 {
		t.Fatal("check-check should be a terminal leaf")
	}
}

func TestRaiseNodeEconomics(t *testing.T) {
	tree := Build(10, 1000, 0.5)
	betNode := tree.Root.Children['r']

	want := 10.0 * (1 + 2*0.5)
	if betNode.PotSize != want {
		t.Errorf("bet node pot = %v, want %v", betNode.PotSize, want)
	}
	if _, ok := betNode.Children['f']; !ok {
		t.Fatal("bet node missing fold child")
	}
	if _, ok := betNode.Children['c']; !ok {
		t.Fatal("bet node missing call child")
	}
	if _, ok := betNode.Children['r']; !ok {
		t.Fatal("bet node should allow a further raise with deep stacks")
	}
}

func TestStackCapStopsRaising(t *testing.T) {
	// Small stack relative to pot: expansion must terminate.
	tree := Build(10, 0.1, 0.5)
	betNode := tree.Root.Children['r']

	if _, ok := betNode.Children['r']; ok {
		t.Fatal("expected stack cap to suppress further raise child")
	}
	if _, ok := betNode.Children['f']; !ok {
		t.Fatal("capped node should still allow fold")
	}
	if _, ok := betNode.Children['c']; !ok {
		t.Fatal("capped node should still allow the all-in call")
	}
}

func TestPlanPartitionByParity(t *testing.T) {
	tree := Build(10, 5, 0.5)

	for _, p := range tree.OOPPlans {
		if len(p)%2 != 1 {
			t.Errorf("OOP plan %q has even length", p)
		}
	}
	for _, p := range tree.IPPlans {
		if len(p)%2 != 0 {
			t.Errorf("IP plan %q has odd length", p)
		}
	}
	if len(tree.Plans) != len(tree.IPPlans)+len(tree.OOPPlans) {
		t.Fatal("plan partition does not cover all plans")
	}
}

func TestModifyNodesByPlanAddsAlongPath(t *testing.T) {
	tree := Build(10, 40, 0.5)
	hh := poker.NewHoleCards(mustCard(t, "As"), mustCard(t, "Ah"))
	delta := poker.NewRange()
	delta.Add(hh, 2.0)

	if err := tree.ModifyNodesByPlan("rf", delta); err != nil {
		t.Fatalf("ModifyNodesByPlan: %v", err)
	}

	if got := tree.Root.Range.Weight(hh); got != 2.0 {
		t.Errorf("root weight = %v, want 2.0", got)
	}
	betNode := tree.Root.Children['r']
	if got := betNode.Range.Weight(hh); got != 2.0 {
		t.Errorf("bet node weight = %v, want 2.0", got)
	}
	foldNode := betNode.Children['f']
	if got := foldNode.Range.Weight(hh); got != 2.0 {
		t.Errorf("fold node weight = %v, want 2.0", got)
	}
	if got := betNode.Children['c'].Range.Weight(hh); got != 0 {
		t.Errorf("call node should be untouched, got %v", got)
	}
}

func TestModifyNodesByPlanRejectsUnknownAction(t *testing.T) {
	tree := Build(10, 40, 0.5)
	delta := poker.NewRange()
	delta.Add(poker.NewHoleCards(mustCard(t, "As"), mustCard(t, "Ah")), 1.0)

	if err := tree.ModifyNodesByPlan("x", delta); err == nil {
		t.Fatal("expected error for an action not in the tree")
	}
}

func TestClearRangesResetsEveryNode(t *testing.T) {
	tree := Build(10, 40, 0.5)
	delta := poker.NewRange()
	delta.Add(poker.NewHoleCards(mustCard(t, "As"), mustCard(t, "Ah")), 1.0)
	_ = tree.ModifyNodesByPlan("rc", delta)

	tree.ClearRanges()

	if tree.Root.Range.Len() != 0 {
		t.Error("root range not cleared")
	}
	if tree.Root.Children['r'].Children['c'].Range.Len() != 0 {
		t.Error("descendant range not cleared")
	}
}

func mustCard(t *testing.T, s string) poker.Card {
	t.Helper()
	c, err := poker.ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}
