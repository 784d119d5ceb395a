package exprtree

import (
	"fmt"
	"math/big"

	"github.com/hupe1980/fsynth/atom"
)

// MaxSerialNumber returns the number of distinct canonical trees of
// height exactly level or less that this node's library can produce,
// via the recurrence:
//
//	max(0)     = |arg0|
//	max(l)     = max(l-1)*(max(l-1)-max(l-2))*|arg2|
//	           +            (max(l-1)-max(l-2))*|arg1|
//	           + max(l-1)
//
// with max(-1) taken as 0. Results are memoized per node since the
// same level is repeatedly queried by SerialNumber and
// FromSerialNumber.
func (n *Node[V]) MaxSerialNumber(level int) *big.Int {
	if n.maxSNCache == nil {
		n.maxSNCache = make(map[int]*big.Int)
	}
	if v, ok := n.maxSNCache[level]; ok {
		return new(big.Int).Set(v)
	}

	var result *big.Int
	if level <= 0 {
		result = big.NewInt(int64(n.lib.Len(0)))
	} else {
		maxPrev := n.MaxSerialNumber(level - 1)
		var maxPrevLvl *big.Int
		if level > 1 {
			maxPrevLvl = new(big.Int).Sub(maxPrev, n.MaxSerialNumber(level-2))
		} else {
			maxPrevLvl = new(big.Int).Set(maxPrev)
		}

		arg2n := big.NewInt(int64(n.lib.Len(2)))
		arg1n := big.NewInt(int64(n.lib.Len(1)))

		term1 := new(big.Int).Mul(maxPrev, maxPrevLvl)
		term1.Mul(term1, arg2n)

		term2 := new(big.Int).Mul(maxPrevLvl, arg1n)

		result = new(big.Int).Add(term1, term2)
		result.Add(result, maxPrev)
	}

	n.maxSNCache[level] = new(big.Int).Set(result)
	return result
}

// SerialNumber returns the bijective canonical index of this tree
// among all canonical trees this node's library can produce, ordered
// by height first: trees of height l number from MaxSerialNumber(l-1).
// Arity-0 trees number directly by atom index; higher-arity trees
// number by combining the running totals for shallower trees with the
// lexicographic position of their children.
func (n *Node[V]) SerialNumber() *big.Int {
	if n.Arity() == 0 {
		return big.NewInt(int64(n.idx.Num))
	}

	level := n.CurrentMaxLevel()
	maxPrev := n.MaxSerialNumber(level - 1)
	var maxPrev2 *big.Int
	if level > 1 {
		maxPrev2 = n.MaxSerialNumber(level - 2)
	} else {
		maxPrev2 = big.NewInt(0)
	}
	maxPrevLvl := new(big.Int).Sub(maxPrev, maxPrev2)

	snum := new(big.Int).Set(maxPrev)

	switch n.Arity() {
	case 1:
		t := new(big.Int).Mul(maxPrevLvl, big.NewInt(int64(n.idx.Num)))
		snum.Add(snum, t)
		snum1 := new(big.Int).Sub(n.arg1.SerialNumber(), maxPrev2)
		snum.Add(snum, snum1)
	case 2:
		arg1n := big.NewInt(int64(n.lib.Len(1)))
		t1 := new(big.Int).Mul(maxPrevLvl, arg1n)
		snum.Add(snum, t1)

		t2 := new(big.Int).Mul(maxPrev, maxPrevLvl)
		t2.Mul(t2, big.NewInt(int64(n.idx.Num)))
		snum.Add(snum, t2)

		snum1 := n.arg1.SerialNumber()
		snum2 := new(big.Int).Sub(n.arg2.SerialNumber(), maxPrev2)
		t3 := new(big.Int).Mul(maxPrev, snum2)
		snum.Add(snum, t3)
		snum.Add(snum, snum1)
	}

	return snum
}

// FromSerialNumber rebuilds n, in place, as the unique canonical tree
// with the given serial number: the inverse of SerialNumber. It
// locates the smallest level l with sn < MaxSerialNumber(l), then
// unpacks the leaf/unary/binary encoding in the reverse order that
// SerialNumber produced it.
//
// On failure n is left unchanged: reconstruction happens into a
// scratch node which only replaces n's contents once the whole tree
// has been rebuilt successfully.
func (n *Node[V]) FromSerialNumber(sn *big.Int) error {
	if sn.Sign() < 0 {
		return fmt.Errorf("%w: negative serial number %s", atom.ErrOutOfRange, sn)
	}
	if n.lib.Len(0) == 0 {
		return fmt.Errorf("%w: library has no arity-0 atoms", atom.ErrOutOfRange)
	}

	scratch := n.newChild()
	if err := scratch.fromSerialNumber(sn); err != nil {
		return err
	}
	*n = *scratch
	return nil
}

// fromSerialNumber finds the level a serial number belongs to, then
// dispatches to fromSerialNumberAtLevel.
func (n *Node[V]) fromSerialNumber(sn *big.Int) error {
	level := 0
	for sn.Cmp(n.MaxSerialNumber(level)) >= 0 {
		level++
	}
	return n.fromSerialNumberAtLevel(sn, level)
}

// fromSerialNumberAtLevel rebuilds n as the canonical tree of depth
// exactly level with the given serial number.
func (n *Node[V]) fromSerialNumberAtLevel(sn *big.Int, level int) error {
	if level == 0 {
		idx := int(sn.Int64())
		if idx < 0 || idx >= n.lib.Len(0) {
			return fmt.Errorf("%w: arity-0 index %d", atom.ErrOutOfRange, idx)
		}
		n.idx = atom.Index{Arity: 0, Num: idx}
		n.arg1 = nil
		n.arg2 = nil
		n.ClearCalculated()
		return nil
	}

	maxPrev := n.MaxSerialNumber(level - 1)
	var maxPrev2 *big.Int
	if level > 1 {
		maxPrev2 = n.MaxSerialNumber(level - 2)
	} else {
		maxPrev2 = big.NewInt(0)
	}
	maxPrevLvl := new(big.Int).Sub(maxPrev, maxPrev2)

	off := new(big.Int).Sub(sn, maxPrev)
	if off.Sign() < 0 {
		return fmt.Errorf("%w: serial number %s below level %d floor", atom.ErrOutOfRange, sn, level)
	}

	a1n := big.NewInt(int64(n.lib.Len(1)))
	unaryCount := new(big.Int).Mul(maxPrevLvl, a1n)

	if maxPrevLvl.Sign() > 0 && off.Cmp(unaryCount) < 0 {
		idxBig, rem := new(big.Int).QuoRem(off, maxPrevLvl, new(big.Int))
		idx := int(idxBig.Int64())
		if idx < 0 || idx >= n.lib.Len(1) {
			return fmt.Errorf("%w: arity-1 index %d", atom.ErrOutOfRange, idx)
		}
		s1 := new(big.Int).Add(rem, maxPrev2)

		n.idx = atom.Index{Arity: 1, Num: idx}
		n.arg1 = n.newChild()
		if err := n.arg1.fromSerialNumberAtLevel(s1, level-1); err != nil {
			return err
		}
		n.arg2 = nil
		n.ClearCalculated()
		return nil
	}

	off2 := new(big.Int).Sub(off, unaryCount)
	perIdx := new(big.Int).Mul(maxPrev, maxPrevLvl)
	if perIdx.Sign() <= 0 {
		return fmt.Errorf("%w: serial number %s has no binary encoding at level %d", atom.ErrOutOfRange, sn, level)
	}

	idxBig, rem2 := new(big.Int).QuoRem(off2, perIdx, new(big.Int))
	idx := int(idxBig.Int64())
	if idx < 0 || idx >= n.lib.Len(2) {
		return fmt.Errorf("%w: arity-2 index %d", atom.ErrOutOfRange, idx)
	}

	sROffset, sL := new(big.Int).QuoRem(rem2, maxPrev, new(big.Int))
	sR := new(big.Int).Add(sROffset, maxPrev2)

	n.idx = atom.Index{Arity: 2, Num: idx}
	n.arg1 = n.newChild()
	if err := n.arg1.fromSerialNumber(sL); err != nil {
		return err
	}
	n.arg2 = n.newChild()
	if err := n.arg2.fromSerialNumberAtLevel(sR, level-1); err != nil {
		return err
	}
	n.ClearCalculated()
	return nil
}
