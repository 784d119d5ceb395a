package search

// Settings configures the resource limits and behavior of a Task.
type Settings struct {
	// MaxBest bounds the number of candidates the pool retains.
	MaxBest int
	// MaxDepth bounds the height of enumerated expression trees.
	MaxDepth int
	// SkipConstant, when true, prunes trees whose calculated output is
	// constant across every input, since a constant tree can never
	// beat a non-constant one that also matches the target exactly.
	SkipConstant bool
	// SkipSymmetric, when true, keeps only one representative of each
	// commutative-operator argument ordering.
	SkipSymmetric bool
}

// Equal reports whether s and other configure the same search space,
// mirroring the original engine's Settings equality (save_file is
// intentionally excluded there; here persistence lives outside Task
// entirely, in the statestore package).
func (s Settings) Equal(other Settings) bool {
	return s == other
}
