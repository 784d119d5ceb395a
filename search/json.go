package search

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/fsynth/codec"
	"github.com/hupe1980/fsynth/exprtree"
	"github.com/hupe1980/fsynth/pool"
)

// ErrInvalidJSON is returned by FromJSON when the input is malformed,
// missing a required field, or structurally inconsistent.
var ErrInvalidJSON = errors.New("search: invalid task JSON")

type wireSettings struct {
	MaxBest  uint64 `json:"max_best"`
	MaxDepth uint64 `json:"max_depth"`
}

type wireThreshold struct {
	Distance        uint64 `json:"distance"`
	MaxLevel        uint64 `json:"max_level"`
	FunctionsCount  uint64 `json:"functions_count"`
	FunctionsUnique uint64 `json:"functions_unique"`
}

type wireTask struct {
	Settings      wireSettings      `json:"settings"`
	Count         uint64            `json:"count"`
	Done          bool              `json:"done"`
	SuitThreshold wireThreshold     `json:"suit_threshold"`
	CurrentFn     json.RawMessage   `json:"current_fn"`
	Best          []json.RawMessage `json:"best"`
}

// ToJSON serializes the task's full state: settings, progress
// counters, the current enumeration cursor, and every retained best
// candidate.
func (t *Task[V]) ToJSON() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	currentFn, err := t.fn.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("search: marshaling current function: %w", err)
	}

	threshold, _ := t.pool.Threshold()

	entries := t.pool.Entries()
	best := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		raw, err := entry.Tree.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("search: marshaling best entry: %w", err)
		}
		best = append(best, raw)
	}

	wire := wireTask{
		Settings: wireSettings{
			MaxBest:  uint64(t.settings.MaxBest),
			MaxDepth: uint64(t.settings.MaxDepth),
		},
		Count: t.count,
		Done:  t.done.Load(),
		SuitThreshold: wireThreshold{
			Distance:        threshold.Distance,
			MaxLevel:        threshold.MaxDepth,
			FunctionsCount:  threshold.NodesTotal,
			FunctionsUnique: threshold.NodesUnique,
		},
		CurrentFn: currentFn,
		Best:      best,
	}

	return codec.Default.Marshal(wire)
}

// FromJSON restores a task's state from data previously produced by
// ToJSON, using t's existing atoms and target. On any error t is left
// entirely unchanged. On success the task's lifecycle state resets to
// Idle regardless of the persisted done value, though done itself is
// preserved and reported by Done().
func (t *Task[V]) FromJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := codec.Default.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	for _, field := range []string{"settings", "count", "done", "suit_threshold", "current_fn"} {
		if _, ok := raw[field]; !ok {
			return fmt.Errorf("%w: missing field %q", ErrInvalidJSON, field)
		}
	}

	var wire wireTask
	if err := codec.Default.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	fn := exprtree.New(t.atoms, t.settings.SkipConstant, t.settings.SkipSymmetric)
	if err := fn.UnmarshalJSON(wire.CurrentFn); err != nil {
		return fmt.Errorf("%w: current_fn: %v", ErrInvalidJSON, err)
	}

	bestTrees := make([]*exprtree.Node[V], 0, len(wire.Best))
	for i, rawNode := range wire.Best {
		node := exprtree.New(t.atoms, t.settings.SkipConstant, t.settings.SkipSymmetric)
		if err := node.UnmarshalJSON(rawNode); err != nil {
			return fmt.Errorf("%w: best[%d]: %v", ErrInvalidJSON, i, err)
		}
		bestTrees = append(bestTrees, node)
	}

	newPool := pool.New[V](int(wire.Settings.MaxBest))
	if err := newPool.Restore(bestTrees, t.target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings.MaxBest = int(wire.Settings.MaxBest)
	t.settings.MaxDepth = int(wire.Settings.MaxDepth)
	t.fn = fn
	t.pool = newPool
	t.count = wire.Count
	t.state = Idle
	t.done.Store(wire.Done)
	return nil
}
