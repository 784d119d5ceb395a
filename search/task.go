// Package search orchestrates canonical enumeration, target scoring,
// and ranked-pool admission into a single cooperatively-cancellable
// driver.
package search

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/fsynth"
	"github.com/hupe1980/fsynth/atom"
	"github.com/hupe1980/fsynth/exprtree"
	"github.com/hupe1980/fsynth/pool"
)

// Task drives a single search: it owns the live enumeration cursor,
// the ranked pool of best candidates found so far, and the
// goroutine/cancellation machinery needed to run the search in the
// background.
//
// A Task is safe for concurrent use; Step, Best, Status, and ToJSON
// may all be called while Run's background goroutine is active.
type Task[V comparable] struct {
	settings Settings
	atoms    *atom.Library[V]
	target   pool.Target[V]
	opts     options

	mu        sync.Mutex
	fn        *exprtree.Node[V]
	pool      *pool.Pool[V]
	count     uint64
	startedAt time.Time
	state     State

	done   atomic.Bool
	cancel context.CancelFunc
	wg     sync.WaitGroup

	saveSem *semaphore.Weighted
}

// New constructs a Task over atoms, scoring every candidate against
// target. atoms must contain at least one arity-0 atom, since no tree
// can otherwise ever terminate.
func New[V comparable](settings Settings, atoms *atom.Library[V], target pool.Target[V], optFns ...Option) (*Task[V], error) {
	if atoms.Len(0) == 0 {
		return nil, fsynth.ErrEmptyLibrary
	}

	fn := exprtree.New(atoms, settings.SkipConstant, settings.SkipSymmetric)
	fn.InitDepth(0, 0)

	o := applyOptions(optFns)

	return &Task[V]{
		settings: settings,
		atoms:    atoms,
		target:   target,
		opts:     o,
		fn:       fn,
		pool:     pool.New[V](settings.MaxBest),
		state:    Idle,
		saveSem:  semaphore.NewWeighted(o.maxConcurrentSaves),
	}, nil
}

// Step advances the enumerator by one canonical tree and scores it
// against the target, updating the ranked pool. It reports false once
// the canonical space for the configured depth is exhausted.
func (t *Task[V]) Step() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stepLocked()
}

func (t *Task[V]) stepLocked() (bool, error) {
	if !t.fn.Iterate(t.settings.MaxDepth, 0) {
		return false, nil
	}

	admitted, key, err := t.pool.Admit(t.fn, t.target)
	if err != nil {
		return true, fmt.Errorf("search: stepping: %w", err)
	}
	t.count++
	t.opts.logger.LogAdmission(context.Background(), t.fn.Repr(), admitted, key.Distance)
	return true, nil
}

// Run starts the search in a background goroutine. It returns
// fsynth.ErrAlreadyRunning if the task is already running.
func (t *Task[V]) Run(ctx context.Context) error {
	t.mu.Lock()
	if t.state == Running {
		t.mu.Unlock()
		return fsynth.ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.startedAt = time.Now()
	prevState := t.state
	t.state = Running
	t.mu.Unlock()

	t.opts.logger.LogStateTransition(ctx, prevState.String(), Running.String())

	t.wg.Add(1)
	go t.loop(runCtx)
	return nil
}

// Stop requests cancellation of a running search and waits for its
// background goroutine to exit. It returns fsynth.ErrNotRunning if
// the task is not currently running.
func (t *Task[V]) Stop() error {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return fsynth.ErrNotRunning
	}
	cancel := t.cancel
	t.mu.Unlock()

	cancel()
	t.wg.Wait()
	return nil
}

func (t *Task[V]) loop(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			t.mu.Lock()
			if t.state == Running {
				t.state = Cancelled
			}
			t.mu.Unlock()
			t.opts.logger.LogStateTransition(ctx, Running.String(), Cancelled.String())
			return
		default:
		}

		ok, err := t.Step()
		if err != nil {
			t.opts.logger.LogSnapshot(ctx, "step", err)
			continue
		}
		if !ok {
			t.done.Store(true)
			t.mu.Lock()
			t.state = Completed
			iterations := t.count
			t.mu.Unlock()
			t.opts.logger.LogEnumerationExhausted(ctx, iterations)
			return
		}

		t.maybeAutosave(ctx)
	}
}

func (t *Task[V]) maybeAutosave(ctx context.Context) {
	if t.opts.autosave == nil {
		return
	}

	t.mu.Lock()
	due := t.count%t.opts.autosaveEvery == 0
	t.mu.Unlock()
	if !due {
		return
	}

	if !t.opts.autosaveLimiter.Allow() {
		return
	}

	if !t.saveSem.TryAcquire(1) {
		return
	}

	snapshot, err := t.ToJSON()
	if err != nil {
		t.saveSem.Release(1)
		t.opts.logger.LogSnapshot(ctx, "autosave", err)
		return
	}

	go func() {
		defer t.saveSem.Release(1)
		t.opts.autosave(snapshot)
		t.opts.logger.LogSnapshot(ctx, "autosave", nil)
	}()
}

// Done reports whether the enumerator has exhausted the canonical
// space for the configured depth.
func (t *Task[V]) Done() bool {
	return t.done.Load()
}

// Best returns the current ranked, deduplicated candidates.
func (t *Task[V]) Best() []*pool.Entry[V] {
	return t.pool.Entries()
}

// Status returns a point-in-time progress snapshot.
func (t *Task[V]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	snum := t.fn.SerialNumber()
	maxSN := t.fn.MaxSerialNumber(t.settings.MaxDepth)
	donePercent := 0.0
	if maxSN.Sign() > 0 {
		snumF, _ := new(big.Float).SetInt(snum).Float64()
		maxSNF, _ := new(big.Float).SetInt(maxSN).Float64()
		donePercent = snumF * 100.0 / maxSNF
	}

	elapsed := time.Duration(0)
	var ips uint64
	var sps float64
	var remaining time.Duration
	if !t.startedAt.IsZero() {
		elapsed = time.Since(t.startedAt)
		if ms := elapsed.Milliseconds(); ms > 0 {
			ips = t.count * 1000 / uint64(ms)
		}
		if seconds := elapsed.Seconds(); seconds > 0 {
			snumF, _ := new(big.Float).SetInt(snum).Float64()
			sps = snumF / seconds
			if sps > 0 {
				remainingSN := new(big.Int).Sub(maxSN, snum)
				remainingF, _ := new(big.Float).SetInt(remainingSN).Float64()
				remaining = boundedDuration(remainingF / sps)
			}
		}
	}

	best := make([]BestFunc, 0, len(t.pool.Entries()))
	for _, entry := range t.pool.Entries() {
		best = append(best, BestFunc{
			Function:       entry.Tree.Repr(),
			Suit:           entry.Key,
			MatchPositions: entry.Matches.String(),
		})
	}

	return Status{
		State:             t.state,
		SerialNumber:      snum.String(),
		MaxSerialNumber:   maxSN.String(),
		DonePercent:       donePercent,
		Elapsed:           elapsed,
		RemainingEstimate: remaining,
		IterationsCount:   t.count,
		IterationsPerSec:  ips,
		SerialsPerSec:     sps,
		CurrentFunction:   t.fn.Repr(),
		BestFunctions:     best,
	}
}

// boundedDuration converts an estimated duration in seconds to a
// time.Duration, clamping to the representable range instead of
// overflowing when the remaining serial-number gap is enormous
// relative to the observed advancement rate.
func boundedDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0
	}
	if seconds > float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}
