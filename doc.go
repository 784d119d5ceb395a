// Package fsynth provides brute-force symbolic function synthesis over
// a user-supplied library of typed atomic operations.
//
// fsynth enumerates every canonical expression tree up to a given
// depth, evaluates each one against a target function, and keeps a
// ranked, deduplicated pool of the best approximations found. Trees
// are numbered bijectively so a search can be paused, persisted to
// JSON, and resumed exactly where it left off.
//
// # Quick start
//
//	lib := atom.NewLibrary[int]()
//	lib.AddArg0(myXAtom)
//	lib.AddArg1(myNotAtom)
//	lib.AddArg2(mySumAtom)
//
//	task, err := search.New(search.Settings{MaxDepth: 3, MaxBest: 32}, lib, myTarget)
//	if err != nil {
//		return err
//	}
//	task.Run(ctx)
//	defer task.Stop()
//
//	best := task.Best()
//
// # Components
//
//   - atom: typed arity-0/1/2 atomic operations and the Library that
//     holds them.
//   - rangeset: merged closed-interval sets, used to record where a
//     candidate's output agrees with the target.
//   - exprtree: canonical expression trees, bijective serial
//     numbering, and the constant/symmetry-pruned enumerator.
//   - pool: a bounded, ranked, deduplicated set of best candidates.
//   - search: the orchestrator tying enumeration, scoring, and
//     cooperative cancellation together.
//   - statestore: optional, pluggable persistence for a Task's JSON
//     snapshot.
package fsynth
