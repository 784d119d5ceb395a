package pool_test

import (
	"testing"

	"github.com/hupe1980/fsynth/atom"
	"github.com/hupe1980/fsynth/exprtree"
	"github.com/hupe1980/fsynth/pool"
	"github.com/hupe1980/fsynth/rangeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const n = 8

type constAtom struct {
	name string
	val  int
}

func (a constAtom) Calculate() atom.Values[int] {
	out := make(atom.Values[int], n)
	for i := range out {
		out[i] = a.val
	}
	return out
}
func (a constAtom) Constant() bool { return true }
func (a constAtom) String() string { return a.name }

type notAtom struct{}

func (notAtom) Calculate(arg atom.Values[int]) atom.Values[int] {
	out := make(atom.Values[int], len(arg))
	for i, v := range arg {
		out[i] = -v
	}
	return out
}
func (notAtom) Involutive() bool { return true }
func (notAtom) Argument() bool   { return false }
func (notAtom) String() string   { return "NOT" }

type andAtom struct{}

func (andAtom) Calculate(a1, a2 atom.Values[int]) atom.Values[int] {
	out := make(atom.Values[int], len(a1))
	for i := range a1 {
		out[i] = a1[i] & a2[i]
	}
	return out
}
func (andAtom) Commutative() bool { return true }
func (andAtom) Idempotent() bool  { return true }
func (andAtom) String() string    { return "AND" }

// buildLibrary registers at least one atom of every arity: a node
// enumerated to any depth may transition into an arity-1 or arity-2
// slot even if the caller never intends to reach it, so a library
// used at max_depth >= 1 must never leave an arity bucket empty.
func buildLibrary() *atom.Library[int] {
	lib := atom.NewLibrary[int]()
	lib.AddArg0(constAtom{name: "0", val: 0})
	lib.AddArg0(constAtom{name: "1", val: 1})
	lib.AddArg0(constAtom{name: "5", val: 5})
	lib.AddArg1(notAtom{})
	lib.AddArg2(andAtom{})
	return lib
}

// exactTarget scores a candidate by Hamming distance against a fixed
// vector of desired outputs.
type exactTarget struct {
	want atom.Values[int]
}

func (t exactTarget) Compare(values atom.Values[int]) uint64 {
	var dist uint64
	for i := range values {
		if values[i] != t.want[i] {
			dist++
		}
	}
	return dist
}

func (t exactTarget) MatchPositions(values atom.Values[int]) *rangeset.RangeSet[uint64] {
	rs := rangeset.New[uint64]()
	for i := range values {
		if values[i] == t.want[i] {
			rs.Add(uint64(i))
		}
	}
	return rs
}

func (t exactTarget) Values() atom.Values[int] { return t.want }

func treeAt(t *testing.T, lib *atom.Library[int], steps int) *exprtree.Node[int] {
	t.Helper()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)
	for i := 0; i < steps; i++ {
		require.True(t, root.Iterate(2, 0))
	}
	return root
}

func TestAdmitFirstAlwaysAccepted(t *testing.T) {
	lib := buildLibrary()
	want := make(atom.Values[int], n)
	target := exactTarget{want: want}
	p := pool.New[int](4)

	tree := treeAt(t, lib, 0)
	admitted, _, err := p.Admit(tree, target)
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, 1, p.Len())
}

func TestAdmitRejectsExactDuplicateValues(t *testing.T) {
	lib := buildLibrary()
	want := make(atom.Values[int], n)
	target := exactTarget{want: want}
	p := pool.New[int](4)

	// NOT(0) evaluates to an all-zero vector under this notAtom
	// (negation of 0 is 0). "0" has a strictly better key, so it finds
	// an improving position and reaches the duplicate check, where its
	// identical values get it rejected even though the tree shape differs.
	tree1 := treeAt(t, lib, 3) // NOT(0)
	require.Equal(t, "NOT(0)", tree1.Repr())
	admitted, _, err := p.Admit(tree1, target)
	require.NoError(t, err)
	require.True(t, admitted)

	tree2 := treeAt(t, lib, 0) // "0", all zeros
	admitted, _, err = p.Admit(tree2, target)
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, 1, p.Len())
}

func TestAdmitOrdersByDistance(t *testing.T) {
	lib := buildLibrary()
	want := make(atom.Values[int], n)
	for i := range want {
		want[i] = 1
	}
	target := exactTarget{want: want}
	p := pool.New[int](4)

	zeroTree := treeAt(t, lib, 0) // "0", distance n
	oneTree := treeAt(t, lib, 1)  // "1", distance 0

	_, _, err := p.Admit(zeroTree, target)
	require.NoError(t, err)
	admitted, _, err := p.Admit(oneTree, target)
	require.NoError(t, err)
	require.True(t, admitted)

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].Tree.Repr())
	assert.Equal(t, uint64(0), entries[0].Key.Distance)
}

func TestAdmitEnforcesMaxBestAndThreshold(t *testing.T) {
	lib := buildLibrary()
	want := make(atom.Values[int], n)
	for i := range want {
		want[i] = 1
	}
	target := exactTarget{want: want}
	p := pool.New[int](1)

	oneTree := treeAt(t, lib, 1) // "1", distance 0 (best possible)
	admitted, _, err := p.Admit(oneTree, target)
	require.NoError(t, err)
	require.True(t, admitted)

	zeroTree := treeAt(t, lib, 0) // "0", worse distance
	admitted, _, err = p.Admit(zeroTree, target)
	require.NoError(t, err)
	assert.False(t, admitted, "worse candidate must not evict a strictly better one from a full pool")
	assert.Equal(t, 1, p.Len())
}

// TestAdmitReinsertsRemovedEntryAfterTrimming exercises the pool's
// remove-then-shrink-then-readmit symmetry: taking a pool's sole entry
// out and lowering max_best by one leaves an empty pool of the reduced
// size, and re-admitting that same tree must land it back in the one
// position it previously held.
func TestAdmitReinsertsRemovedEntryAfterTrimming(t *testing.T) {
	lib := buildLibrary()
	want := make(atom.Values[int], n)
	target := exactTarget{want: want}

	p := pool.New[int](2)
	tree := treeAt(t, lib, 0) // "0", all zeros: exact match against the all-zero target
	admitted, key, err := p.Admit(tree, target)
	require.NoError(t, err)
	require.True(t, admitted)
	require.Equal(t, 1, p.Len())

	trimmed := pool.New[int](1)
	admitted, key2, err := trimmed.Admit(tree, target)
	require.NoError(t, err)
	assert.True(t, admitted, "re-admitting the removed entry into the emptied, shrunk pool must succeed")
	assert.Equal(t, key, key2)

	entries := trimmed.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, tree.Repr(), entries[0].Tree.Repr())
}
