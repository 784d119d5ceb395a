package exprtree_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/hupe1980/fsynth/atom"
	"github.com/hupe1980/fsynth/exprtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const n = 256

type xAtom struct{ values atom.Values[int] }

func (a xAtom) Calculate() atom.Values[int] { return a.values }
func (a xAtom) Constant() bool              { return false }
func (a xAtom) String() string              { return "X" }

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
		out[i] = ^v
	}
	return out
}
func (notAtom) Involutive() bool { return true }
func (notAtom) Argument() bool   { return false }
func (notAtom) String() string   { return "NOT" }

type sumAtom struct{}

func (sumAtom) Calculate(a1, a2 atom.Values[int]) atom.Values[int] {
	out := make(atom.Values[int], len(a1))
	for i := range a1 {
		out[i] = a1[i] + a2[i]
	}
	return out
}
func (sumAtom) Commutative() bool { return true }
func (sumAtom) Idempotent() bool  { return false }
func (sumAtom) String() string    { return "SUM" }

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

func buildLibrary() *atom.Library[int] {
	lib := atom.NewLibrary[int]()
	x := make(atom.Values[int], n)
	for i := range x {
		x[i] = i
	}
	lib.AddArg0(xAtom{values: x})
	lib.AddArg0(constAtom{name: "1", val: 1})
	lib.AddArg0(constAtom{name: "2", val: 2})
	lib.AddArg0(constAtom{name: "3", val: 3})
	lib.AddArg1(notAtom{})
	lib.AddArg2(sumAtom{})
	lib.AddArg2(andAtom{})
	return lib
}

func TestInitialState(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)
	assert.Equal(t, "X", root.Repr())
	assert.Equal(t, int64(0), root.SerialNumber().Int64())
}

func TestIterateSkipSymmetricFirstEight(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)

	want := []string{"X", "1", "2", "3", "NOT(X)", "NOT(1)", "NOT(2)", "NOT(3)"}
	assert.Equal(t, want[0], root.Repr())
	for i := 1; i < len(want); i++ {
		require.True(t, root.Iterate(2, 0))
		assert.Equal(t, want[i], root.Repr())
	}
}

func TestIterateSumAllowsEqualChildren(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)

	// Advance through the 8 leaf/unary entries, stopping at NOT(3); the
	// next Iterate yields the first SUM tree.
	for i := 0; i < 7; i++ {
		require.True(t, root.Iterate(2, 0))
	}

	want := []string{
		"SUM(X;X)", "SUM(X;1)", "SUM(1;1)", "SUM(X;2)", "SUM(1;2)", "SUM(2;2)",
		"SUM(X;3)", "SUM(1;3)", "SUM(2;3)", "SUM(3;3)",
	}
	for _, w := range want {
		require.True(t, root.Iterate(2, 0))
		assert.Equal(t, w, root.Repr())
	}
}

func TestIterateAndExcludesEqualChildren(t *testing.T) {
	lib := atom.NewLibrary[int]()
	x := make(atom.Values[int], n)
	for i := range x {
		x[i] = i
	}
	lib.AddArg0(xAtom{values: x})
	lib.AddArg0(constAtom{name: "1", val: 1})
	lib.AddArg0(constAtom{name: "2", val: 2})
	lib.AddArg0(constAtom{name: "3", val: 3})
	lib.AddArg1(notAtom{})
	lib.AddArg2(andAtom{})

	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)

	var andReprs []string
	for i := 0; i < 300; i++ {
		repr := root.Repr()
		if strings.HasPrefix(repr, "AND(") {
			andReprs = append(andReprs, repr)
		}
		if !root.Iterate(2, 0) {
			break
		}
	}

	require.NotEmpty(t, andReprs, "expected at least one AND(...) tree within the search budget")
	for _, repr := range andReprs {
		inner := strings.TrimSuffix(strings.TrimPrefix(repr, "AND("), ")")
		parts := strings.SplitN(inner, ";", 2)
		require.Len(t, parts, 2)
		assert.NotEqual(t, parts[0], parts[1], "AND must never pair a subtree with itself: %s", repr)
	}
	assert.Contains(t, andReprs, "AND(X;1)")
}

func TestSerialNumberNoDuplicates(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		sn := root.SerialNumber().String()
		assert.False(t, seen[sn], "duplicate serial number %s at repr %s", sn, root.Repr())
		seen[sn] = true
		if !root.Iterate(3, 0) {
			break
		}
	}
}

func TestSerialNumberBijective(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)

	for i := 0; i < 500; i++ {
		wantRepr := root.Repr()
		sn := root.SerialNumber()

		reconstructed := exprtree.New(lib, false, true)
		require.NoError(t, reconstructed.FromSerialNumber(sn), "reconstructing sn %s (%s)", sn, wantRepr)
		assert.Equal(t, wantRepr, reconstructed.Repr(), "sn %s reconstructed to a different tree", sn)
		assert.Equal(t, sn.String(), reconstructed.SerialNumber().String())

		if !root.Iterate(3, 0) {
			break
		}
	}
}

func TestFromSerialNumberRejectsNegative(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(1, 0)
	before := root.Repr()

	err := root.FromSerialNumber(big.NewInt(-1))
	require.Error(t, err)
	assert.Equal(t, before, root.Repr())
}

func TestSerialNumberMonotonic(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, false)
	root.InitDepth(0, 0)

	prevSN := root.SerialNumber()
	for i := 0; i < 300; i++ {
		if !root.Iterate(2, 0) {
			break
		}
		sn := root.SerialNumber()
		assert.Equal(t, 1, sn.Cmp(prevSN), "serial numbers must strictly increase: %s then %s", prevSN, sn)
		prevSN = sn
	}
}

func TestJSONRoundTrip(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)
	for i := 0; i < 10; i++ {
		require.True(t, root.Iterate(2, 0))
	}

	data, err := root.MarshalJSON()
	require.NoError(t, err)

	restored := exprtree.New(lib, false, true)
	require.NoError(t, restored.UnmarshalJSON(data))
	assert.Equal(t, root.Repr(), restored.Repr())
	assert.Equal(t, root.SerialNumber().String(), restored.SerialNumber().String())
}

func TestFromJSONInvalidLeavesReceiverUnchanged(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(1, 0)
	before := root.Repr()

	err := root.UnmarshalJSON([]byte(`{"arity":1,"num":0}`)) // missing arg1
	require.Error(t, err)
	assert.Equal(t, before, root.Repr())
}

func TestConstantDetection(t *testing.T) {
	lib := buildLibrary()
	root := exprtree.New(lib, false, true)
	root.InitDepth(0, 0)
	require.True(t, root.Iterate(2, 0)) // "1"
	assert.True(t, root.Constant())
	assert.Equal(t, "1", root.Repr())
}
