package pool

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/fsynth/atom"
	"github.com/hupe1980/fsynth/exprtree"
	"github.com/hupe1980/fsynth/rangeset"
)

// Entry is one retained candidate: a snapshot of the tree that
// produced it, its suitability score, and the outputs that score was
// computed from.
type Entry[V comparable] struct {
	Tree    *exprtree.Node[V]
	Key     Key
	Values  atom.Values[V]
	Matches *rangeset.RangeSet[uint64]
}

// Pool retains up to maxBest candidate trees, ranked by Key,
// deduplicated by output values and by target match pattern.
//
// A Pool is safe for concurrent use.
type Pool[V comparable] struct {
	mu           sync.Mutex
	maxBest      int
	entries      []*Entry[V]
	threshold    Key
	hasThreshold bool

	// seenValues and seenMatches are fast, approximate pre-checks: a
	// miss here proves no duplicate exists and lets Admit skip the
	// O(len(entries)) exact scan. A hit falls back to the exact scan,
	// since the hash is truncated to 32 bits and collisions are
	// expected. They are never used to prove a duplicate exists, only
	// to prove one doesn't.
	seenValues  *roaring.Bitmap
	seenMatches *roaring.Bitmap
}

// New creates an empty pool that retains at most maxBest entries.
func New[V comparable](maxBest int) *Pool[V] {
	return &Pool[V]{
		maxBest:     maxBest,
		seenValues:  roaring.New(),
		seenMatches: roaring.New(),
	}
}

// Len returns the number of entries currently retained.
func (p *Pool[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Entries returns a snapshot of the retained entries in rank order
// (best first).
func (p *Pool[V]) Entries() []*Entry[V] {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Entry[V], len(p.entries))
	copy(out, p.entries)
	return out
}

// Restore replaces the pool's contents with trees, scored against
// target, in the given order. Unlike Admit, Restore does not apply
// the ranked-insertion/duplicate-suppression rules: it trusts that
// trees is already sorted best-first, as produced by a prior call to
// Entries (for example when reloading a persisted snapshot written by
// Task.ToJSON). Entries beyond maxBest are dropped.
func (p *Pool[V]) Restore(trees []*exprtree.Node[V], target Target[V]) error {
	entries := make([]*Entry[V], 0, len(trees))
	for i, tree := range trees {
		entry, err := p.score(tree, target)
		if err != nil {
			return fmt.Errorf("pool: restoring entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	if len(entries) > p.maxBest {
		entries = entries[:p.maxBest]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = entries
	p.seenValues = roaring.New()
	p.seenMatches = roaring.New()
	for _, entry := range entries {
		p.index(entry)
	}
	p.refreshThreshold()
	return nil
}

// Admit scores tree against target and, if it is among the maxBest
// best distinct candidates seen so far, inserts a clone of tree into
// the pool at its ranked position. It reports whether tree was
// admitted, along with the suitability key it was scored with.
func (p *Pool[V]) Admit(tree *exprtree.Node[V], target Target[V]) (bool, Key, error) {
	entry, err := p.score(tree, target)
	if err != nil {
		return false, Key{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		p.entries = append(p.entries, entry)
		p.index(entry)
		p.refreshThreshold()
		return true, entry.Key, nil
	}

	if len(p.entries) >= p.maxBest && p.hasThreshold && keyCompare(entry.Key, p.threshold) > 0 {
		return false, entry.Key, nil
	}

	inserted := false
	for i, best := range p.entries {
		if keyCompare(entry.Key, best.Key) < 0 {
			if p.isDuplicate(entry) {
				break
			}
			p.entries = append(p.entries, nil)
			copy(p.entries[i+1:], p.entries[i:])
			p.entries[i] = entry
			p.index(entry)
			inserted = true
			break
		}
	}

	if len(p.entries) > p.maxBest {
		p.entries = p.entries[:p.maxBest]
	}
	p.refreshThreshold()

	return inserted, entry.Key, nil
}

// Threshold returns the suitability of the worst entry currently
// retained, and whether the pool is non-empty.
func (p *Pool[V]) Threshold() (Key, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threshold, p.hasThreshold
}

func (p *Pool[V]) refreshThreshold() {
	if len(p.entries) == 0 {
		p.hasThreshold = false
		return
	}
	p.threshold = p.entries[len(p.entries)-1].Key
	p.hasThreshold = true
}

// isDuplicate reports whether entry duplicates an already-retained
// entry, either by exact output values or by target match pattern.
func (p *Pool[V]) isDuplicate(entry *Entry[V]) bool {
	valuesHash := hashValues(entry.Values)
	matchesHash := hashString(entry.Matches.String())

	if !p.seenValues.Contains(valuesHash) && !p.seenMatches.Contains(matchesHash) {
		return false
	}

	for _, best := range p.entries {
		if valuesEqual(best.Values, entry.Values) {
			return true
		}
		if best.Matches.Equal(entry.Matches) {
			return true
		}
	}
	return false
}

func (p *Pool[V]) index(entry *Entry[V]) {
	p.seenValues.Add(hashValues(entry.Values))
	p.seenMatches.Add(hashString(entry.Matches.String()))
}

func (p *Pool[V]) score(tree *exprtree.Node[V], target Target[V]) (*Entry[V], error) {
	values, err := tree.Calculate(false)
	if err != nil {
		return nil, fmt.Errorf("pool: scoring candidate: %w", err)
	}

	key := Key{
		Distance:    target.Compare(values),
		MaxDepth:    uint64(tree.CurrentMaxLevel()),
		NodesTotal:  uint64(tree.FunctionsCount()),
		NodesUnique: uint64(tree.FunctionsUnique()),
	}

	return &Entry[V]{
		Tree:    tree.Clone(),
		Key:     key,
		Values:  values,
		Matches: target.MatchPositions(values),
	}, nil
}

func keyCompare(a, b Key) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

func valuesEqual[V comparable](a, b atom.Values[V]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hashValues[V comparable](values atom.Values[V]) uint32 {
	h := fnv.New64a()
	for _, v := range values {
		fmt.Fprintf(h, "%v,", v)
	}
	return uint32(h.Sum64())
}

func hashString(s string) uint32 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return uint32(h.Sum64())
}
