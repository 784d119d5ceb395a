package exprtree

import "github.com/hupe1980/fsynth/atom"

// InitDepth resets n, in place, to the leftmost (first) tree of
// exactly maxDepth levels below currentDepth: a chain of unary atoms
// (index 0) bottoming out in the arity-0 atom at index 0.
func (n *Node[V]) InitDepth(maxDepth, currentDepth int) {
	n.arg2 = nil
	if currentDepth == maxDepth {
		n.arg1 = nil
		n.idx = atom.Index{Arity: 0, Num: 0}
		n.ClearCalculated()
		return
	}
	n.arg1 = n.newChild()
	n.arg1.InitDepth(maxDepth, currentDepth+1)
	n.idx = atom.Index{Arity: 1, Num: 0}
	n.ClearCalculated()
}

// Iterate advances n, in place, to the lexicographically next tree
// whose height does not exceed maxDepth - currentDepth, skipping
// trees pruned by the configured skipConstant/skipSymmetric rules. It
// returns false once the canonical space at this depth is exhausted.
func (n *Node[V]) Iterate(maxDepth, currentDepth int) bool {
	keepIterating := true
	for keepIterating {
		if !n.iterateRaw(maxDepth, currentDepth) {
			return false
		}
		n.ClearCalculated()

		if n.Arity() == 0 {
			return true
		}

		if n.Arity() == 2 && !n.iterateArity2CheckSymmetric(true) {
			continue
		}

		if !n.skipConstant {
			keepIterating = false
			continue
		}

		keepIterating = n.Constant()
		if !keepIterating {
			if _, err := n.Calculate(true); err == nil && n.ch.allEqual {
				keepIterating = true
			}
		}
	}
	return true
}

func (n *Node[V]) iterateRaw(maxDepth, currentDepth int) bool {
	nextDepth := currentDepth + 1
	currentMaxDepth := currentDepth + n.CurrentMaxLevel()

	var result bool
	switch n.Arity() {
	case 0:
		result = n.iterateArity0(currentMaxDepth, nextDepth)
	case 1:
		result = n.iterateArity1(currentMaxDepth, nextDepth)
	case 2:
		result = n.iterateArity2(currentMaxDepth, nextDepth)
	}

	if !result && currentMaxDepth < maxDepth {
		n.InitDepth(currentMaxDepth+1, currentDepth)
		result = true
	}

	return result
}

func (n *Node[V]) iterateArity0(maxDepth, nextDepth int) bool {
	if n.lastArityFunc() {
		if nextDepth > maxDepth {
			return false
		}
		n.nextArity1()
	} else {
		n.idx.Num++
	}
	return true
}

func (n *Node[V]) iterateArity1(maxDepth, nextDepth int) bool {
	arg1Iterated := n.arg1.Iterate(maxDepth, nextDepth)

	if n.skipConstant {
		if arg1Iterated && n.arg1.Arity() == 0 && n.arg1.Constant() {
			arg1Iterated = false
		}
	}

	if !arg1Iterated {
		if n.lastArityFunc() {
			n.nextArity2()
			n.arg2.InitDepth(maxDepth, nextDepth)
		} else {
			n.nextArity1()
			n.arg1.InitDepth(maxDepth, nextDepth)
		}
	}
	return true
}

func (n *Node[V]) iterateArity2CheckConstant(arg1Iterated bool) bool {
	if n.skipConstant {
		if arg1Iterated && n.arg1.Arity() == 0 && n.arg1.Constant() &&
			n.arg2.Arity() == 0 && n.arg2.Constant() {
			return false
		}
	}
	return true
}

func (n *Node[V]) iterateArity2CheckSymmetric(arg1Iterated bool) bool {
	if !n.skipSymmetric || !arg1Iterated {
		return true
	}
	a, err := n.lib.Get(n.idx)
	if err != nil {
		return true
	}
	a2 := a.(atom.Atom2[V])
	if !a2.Commutative() {
		return true
	}
	cmp := n.arg1.SerialNumber().Cmp(n.arg2.SerialNumber())
	if a2.Idempotent() {
		return cmp < 0
	}
	return cmp <= 0
}

func (n *Node[V]) iterateArity2(maxDepth, nextDepth int) bool {
	arg1Iterated := n.arg1.Iterate(maxDepth, nextDepth)
	arg1Iterated = arg1Iterated && n.iterateArity2CheckConstant(arg1Iterated)
	arg1Iterated = arg1Iterated && n.iterateArity2CheckSymmetric(arg1Iterated)

	if !arg1Iterated {
		if !n.arg2.Iterate(maxDepth, nextDepth) {
			if n.lastArityFunc() {
				return false
			}
			n.nextArity2()
			n.arg2.InitDepth(maxDepth, nextDepth)
		} else {
			n.arg1 = n.newChild()
		}
	}
	return true
}

func (n *Node[V]) lastArityFunc() bool {
	switch n.Arity() {
	case 0:
		return n.idx.Num+1 >= n.lib.Len(0)
	case 1:
		return n.idx.Num+1 >= n.lib.Len(1)
	case 2:
		return n.idx.Num+1 >= n.lib.Len(2)
	default:
		return true
	}
}

func (n *Node[V]) nextArity1() {
	if n.Arity() != 1 {
		n.idx = atom.Index{Arity: 1, Num: 0}
	} else {
		n.idx.Num++
	}
	n.arg1 = n.newChild()
	n.arg2 = nil
}

func (n *Node[V]) nextArity2() {
	if n.Arity() != 2 {
		n.idx = atom.Index{Arity: 2, Num: 0}
	} else {
		n.idx.Num++
	}
	n.arg1 = n.newChild()
	n.arg2 = n.newChild()
}
