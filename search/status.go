package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/fsynth/pool"
)

// BestFunc describes one entry of a Status snapshot's ranked list.
type BestFunc struct {
	Function       string
	Suit           pool.Key
	MatchPositions string
}

// Status is a point-in-time snapshot of a Task's progress, suitable
// for periodic reporting to an operator.
type Status struct {
	State             State
	SerialNumber      string
	MaxSerialNumber   string
	DonePercent       float64
	Elapsed           time.Duration
	RemainingEstimate time.Duration
	IterationsCount   uint64
	IterationsPerSec  uint64
	SerialsPerSec     float64
	CurrentFunction   string
	BestFunctions     []BestFunc
}

// String renders the status as a fixed-width table, mirroring the
// original engine's plain-text progress report.
func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state %s; iteration %d; func sn %s from max %s; progress %.2f%%; speed %d ips (%.1f sn/s); elapsed %s; eta %s; function %s\n",
		s.State, s.IterationsCount, s.SerialNumber, s.MaxSerialNumber, s.DonePercent, s.IterationsPerSec, s.SerialsPerSec, s.Elapsed, s.RemainingEstimate, s.CurrentFunction)
	fmt.Fprintf(&b, "|  dist  | lvl | fnc | fnu | %-48s| coincidences\n", "function")
	for _, best := range s.BestFunctions {
		fmt.Fprintf(&b, "| %6d | %3d | %3d | %3d | %-48s| %s\n",
			best.Suit.Distance, best.Suit.MaxDepth, best.Suit.NodesTotal, best.Suit.NodesUnique,
			best.Function, best.MatchPositions)
	}
	return b.String()
}
