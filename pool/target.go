// Package pool ranks candidate expression trees by suitability against
// a target and retains a bounded, deduplicated set of the best ones.
package pool

import (
	"github.com/hupe1980/fsynth/atom"
	"github.com/hupe1980/fsynth/rangeset"
)

// Target is the contract a candidate tree's output is scored against.
// Compare returns a distance metric where 0 means a perfect match and
// larger values mean worse. MatchPositions reports which output
// indices agree with the target; it is not part of the suitability
// key, and is used for duplicate suppression by coincidence pattern.
type Target[V any] interface {
	Compare(values atom.Values[V]) uint64
	MatchPositions(values atom.Values[V]) *rangeset.RangeSet[uint64]
	Values() atom.Values[V]
}
