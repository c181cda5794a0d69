// Package strategy builds the fixed c/r/f betting tree a solver evaluates
// and fills with one side's candidate strategy between optimizer calls.
package strategy

import (
	"fmt"

	"github.com/lox/riversolver/poker"
)

// Side identifies which player a plan or best-response walk belongs to.
type Side int

const (
	IP Side = iota
	OOP
)

// Node is one point in the betting tree: a pot size, up to three children
// keyed by action symbol ('c' check/call, 'r' raise, 'f' fold), and the
// range of the tree owner's hands that reach this node under whatever
// strategy was last filled in via ModifyNodesByPlan.
type Node struct {
	PotSize  float64
	Children map[byte]*Node
	Range    *poker.Range
}

func newNode(pot float64) *Node {
	return &Node{PotSize: pot, Children: map[byte]*Node{}, Range: poker.NewRange()}
}

// Tree is a built betting tree together with the parameters it was built
// from and the full set of leaf plans, partitioned by owning side.
type Tree struct {
	Root         *Node
	StartingPot  float64
	StackSize    float64
	BetSize      float64
	Plans        []string
	IPPlans      []string
	OOPPlans     []string
}

// Build constructs the tree for a given starting pot, effective stack, and
// bet size expressed as a fraction of pot. Root has actions c and r; root.c
// (OOP checks) has actions c and r as well (check-check terminal,
// check-raise continuation). Every r-node has f/c children, plus a further
// r child unless the stack cap has already been reached.
func Build(startingPot, stackSize, betSize float64) *Tree {
	root := newNode(startingPot)
	root.Children['r'] = buildRaiseNode(startingPot, startingPot, stackSize, betSize)

	checkNode := newNode(startingPot)
	checkNode.Children['c'] = newNode(startingPot)
	checkNode.Children['r'] = buildRaiseNode(startingPot, startingPot, stackSize, betSize)
	root.Children['c'] = checkNode

	t := &Tree{Root: root, StartingPot: startingPot, StackSize: stackSize, BetSize: betSize}
	t.Plans = collectPlans(root, nil)
	for _, p := range t.Plans {
		if len(p)%2 == 1 {
			t.OOPPlans = append(t.OOPPlans, p)
		} else {
			t.IPPlans = append(t.IPPlans, p)
		}
	}
	return t
}

// buildRaiseNode builds the node reached by a raise action out of a parent
// whose pot was parentPot. Node economics: the new pot is
// parentPot * (1 + 2*betSize), representing both players contributing
// betSize * parentPot. If that pot has already capped the stack — i.e. a
// call here would commit at least stackSize beyond the starting pot — no
// further raise child is spawned and the existing call child is the all-in
// terminal.
func buildRaiseNode(parentPot, startingPot, stackSize, betSize float64) *Node {
	pot := parentPot * (1 + 2*betSize)
	node := newNode(pot)
	node.Children['f'] = newNode(pot)
	node.Children['c'] = newNode(pot)

	if (pot-startingPot)/2 < stackSize {
		node.Children['r'] = buildRaiseNode(pot, startingPot, stackSize, betSize)
	}
	return node
}

// collectPlans walks the tree gathering the action string for every leaf
// (a node with no children). A plan ending with 'f' is always a leaf, as
// is one ending with 'c' except the root's check ("c"), which has its own
// c/r children; every 'r' node either leads deeper or, at the stack cap, has only
// f/c children, which are themselves leaves.
func collectPlans(node *Node, prefix []byte) []string {
	if len(node.Children) == 0 {
		return []string{string(prefix)}
	}
	var plans []string
	// Deterministic order keeps Plans (and therefore any derived variable
	// indexing) stable across builds of the same parameters.
	for _, action := range []byte{'c', 'r', 'f'} {
		child, ok := node.Children[action]
		if !ok {
			continue
		}
		plans = append(plans, collectPlans(child, append(append([]byte{}, prefix...), action))...)
	}
	return plans
}

// ModifyNodesByPlan walks the tree from the root following plan
// action-by-action, adding delta to the range of every node visited,
// including the root and the final leaf.
func (t *Tree) ModifyNodesByPlan(plan string, delta *poker.Range) error {
	node := t.Root
	node.Range.AddRange(delta)
	for i := 0; i < len(plan); i++ {
		child, ok := node.Children[plan[i]]
		if !ok {
			return fmt.Errorf("strategy: plan %q has no %q child at depth %d", plan, plan[i], i)
		}
		child.Range.AddRange(delta)
		node = child
	}
	return nil
}

// ClearRanges resets every node's range to empty, ready for the next
// objective-function evaluation.
func (t *Tree) ClearRanges() {
	clearNode(t.Root)
}

func clearNode(n *Node) {
	n.Range.Clear()
	for _, c := range n.Children {
		clearNode(c)
	}
}

// AmountGained is the winner's profit after a fold or completed action at
// pot size p, relative to the starting pot p0.
func AmountGained(p, p0 float64) float64 {
	return (p + p0) / 2
}

// AmountLost is the loser's loss after a fold or completed action at pot
// size p, relative to the starting pot p0. Always nonnegative: any node
// reachable by at least one bet has p >= p0.
func AmountLost(p, p0 float64) float64 {
	return (p - p0) / 2
}
