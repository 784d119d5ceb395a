// Package exprtree implements the canonical expression-tree enumerator:
// a Node is a single well-formed expression over an atom.Library, and
// its Iterate method advances it, in place, to the lexicographically
// next tree up to a bounded depth.
package exprtree

import (
	"math/big"

	"github.com/hupe1980/fsynth/atom"
)

type characteristics[V comparable] struct {
	first    V
	allEqual bool
	valid    bool
}

// Node is one node of an expression tree, owning its children
// exclusively (no sharing - Clone is always a deep copy).
type Node[V comparable] struct {
	lib *atom.Library[V]
	idx atom.Index

	arg1 *Node[V]
	arg2 *Node[V]

	skipConstant  bool
	skipSymmetric bool

	values atom.Values[V]
	ch     characteristics[V]

	maxSNCache map[int]*big.Int
}

// New returns a root Node bound to lib. skipConstant and skipSymmetric
// configure the pruning rules applied by Iterate: skipConstant skips
// subtrees whose value is constant across every input row (other than
// an atomic constant itself), skipSymmetric skips the mirror image of
// a commutative binary atom's arguments.
func New[V comparable](lib *atom.Library[V], skipConstant, skipSymmetric bool) *Node[V] {
	return &Node[V]{lib: lib, skipConstant: skipConstant, skipSymmetric: skipSymmetric}
}

func (n *Node[V]) newChild() *Node[V] {
	return &Node[V]{lib: n.lib, skipConstant: n.skipConstant, skipSymmetric: n.skipSymmetric}
}

// Clone returns a deep copy of n.
func (n *Node[V]) Clone() *Node[V] {
	c := &Node[V]{
		lib:           n.lib,
		idx:           n.idx,
		skipConstant:  n.skipConstant,
		skipSymmetric: n.skipSymmetric,
	}
	switch n.Arity() {
	case 1:
		c.arg1 = n.arg1.Clone()
	case 2:
		c.arg1 = n.arg1.Clone()
		c.arg2 = n.arg2.Clone()
	}
	return c
}

// Arity returns 0, 1, or 2: the arity of the atom at this node.
func (n *Node[V]) Arity() int { return n.idx.Arity }

// AtomIndex returns the (arity, num) identifying this node's atom.
func (n *Node[V]) AtomIndex() atom.Index { return n.idx }

// CurrentMaxLevel returns the height of the tree rooted at n.
func (n *Node[V]) CurrentMaxLevel() int {
	switch n.Arity() {
	case 0:
		return 0
	case 1:
		return n.arg1.CurrentMaxLevel() + 1
	case 2:
		a, b := n.arg1.CurrentMaxLevel(), n.arg2.CurrentMaxLevel()
		if b > a {
			a = b
		}
		return a + 1
	default:
		return 0
	}
}

// CurrentMinLevel returns the depth of the shallowest leaf under n.
func (n *Node[V]) CurrentMinLevel() int {
	switch n.Arity() {
	case 0:
		return 0
	case 1:
		return n.arg1.CurrentMinLevel() + 1
	case 2:
		a, b := n.arg1.CurrentMinLevel(), n.arg2.CurrentMinLevel()
		if b < a {
			a = b
		}
		return a + 1
	default:
		return 0
	}
}

// FunctionsCount returns the number of internal (non-leaf) nodes.
func (n *Node[V]) FunctionsCount() int {
	switch n.Arity() {
	case 0:
		return 0
	case 1:
		return n.arg1.FunctionsCount() + 1
	case 2:
		return n.arg1.FunctionsCount() + n.arg2.FunctionsCount() + 1
	default:
		return 0
	}
}

// FunctionsUnique returns the number of distinct serial numbers among
// this tree's internal nodes (a measure of structural repetition).
func (n *Node[V]) FunctionsUnique() int {
	seen := make(map[string]struct{})
	n.collectSerials(seen)
	return len(seen)
}

func (n *Node[V]) collectSerials(seen map[string]struct{}) {
	switch n.Arity() {
	case 0:
		return
	case 1:
		n.arg1.collectSerials(seen)
	case 2:
		n.arg1.collectSerials(seen)
		n.arg2.collectSerials(seen)
	default:
		return
	}
	seen[n.SerialNumber().String()] = struct{}{}
}

// ClearCalculated discards cached evaluation results.
func (n *Node[V]) ClearCalculated() {
	n.values = nil
	n.ch = characteristics[V]{}
}

// Calculate evaluates the tree and caches the result. Pass recalculate
// to force re-evaluation even if a cached result exists.
func (n *Node[V]) Calculate(recalculate bool) (atom.Values[V], error) {
	if len(n.values) == 0 || recalculate {
		a, err := n.lib.Get(n.idx)
		if err != nil {
			return nil, err
		}
		switch n.Arity() {
		case 0:
			n.values = a.(atom.Atom0[V]).Calculate()
		case 1:
			arg, err := n.arg1.Calculate(false)
			if err != nil {
				return nil, err
			}
			n.values = a.(atom.Atom1[V]).Calculate(arg)
		case 2:
			a1, err := n.arg1.Calculate(false)
			if err != nil {
				return nil, err
			}
			a2, err := n.arg2.Calculate(false)
			if err != nil {
				return nil, err
			}
			n.values = a.(atom.Atom2[V]).Calculate(a1, a2)
		}
		n.updateCharacteristics()
	}
	return n.values, nil
}

func (n *Node[V]) updateCharacteristics() {
	ch := characteristics[V]{valid: true, allEqual: true}
	if len(n.values) > 0 {
		ch.first = n.values[0]
		for _, v := range n.values[1:] {
			if v != ch.first {
				ch.allEqual = false
				break
			}
		}
	}
	n.ch = ch
}

// Constant reports whether the tree evaluates to the same value for
// every input row, determined structurally (without evaluation) by
// recursing into atom declarations.
func (n *Node[V]) Constant() bool {
	switch n.Arity() {
	case 0:
		a, err := n.lib.Get(n.idx)
		if err != nil {
			return false
		}
		return a.(atom.Atom0[V]).Constant()
	case 1:
		return n.arg1.Constant()
	case 2:
		return n.arg1.Constant() && n.arg2.Constant()
	default:
		return true
	}
}

// Repr renders the tree as "atom(child1;child2)".
func (n *Node[V]) Repr() string {
	a, err := n.lib.Get(n.idx)
	if err != nil {
		return "<invalid>"
	}
	switch n.Arity() {
	case 0:
		return a.(atom.Atom0[V]).String()
	case 1:
		return a.(atom.Atom1[V]).String() + "(" + n.arg1.Repr() + ")"
	case 2:
		return a.(atom.Atom2[V]).String() + "(" + n.arg1.Repr() + ";" + n.arg2.Repr() + ")"
	default:
		return "<invalid>"
	}
}
