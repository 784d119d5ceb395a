package search

import (
	"golang.org/x/time/rate"

	"github.com/hupe1980/fsynth"
)

// AutosaveFunc receives a Task's JSON snapshot periodically while a
// search is running. It is invoked from the background search
// goroutine, never from Step, so callers that only ever call Step
// directly never trigger autosave I/O.
type AutosaveFunc func(snapshot []byte)

type options struct {
	logger             *fsynth.Logger
	autosave           AutosaveFunc
	autosaveEvery      uint64
	autosaveLimiter    *rate.Limiter
	maxConcurrentSaves int64
}

// Option configures a Task at construction time.
type Option func(*options)

// WithLogger configures structured logging for the task's lifecycle
// and enumeration events. Pass nil to disable logging.
func WithLogger(logger *fsynth.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = fsynth.NoopLogger()
		}
		o.logger = logger
	}
}

// WithAutosave registers fn to be called with a JSON snapshot every
// interval iterations while the task runs in the background, subject
// to the autosave rate limit configured by WithAutosaveRate.
func WithAutosave(fn AutosaveFunc, everyIterations uint64) Option {
	return func(o *options) {
		o.autosave = fn
		if everyIterations == 0 {
			everyIterations = 1
		}
		o.autosaveEvery = everyIterations
	}
}

// WithAutosaveRate bounds how often the autosave callback may fire,
// protecting a slow save backend from a fast enumeration. Defaults to
// one save per second with a burst of one.
func WithAutosaveRate(r rate.Limit, burst int) Option {
	return func(o *options) {
		o.autosaveLimiter = rate.NewLimiter(r, burst)
	}
}

// WithMaxConcurrentSaves bounds how many autosave callbacks may be
// in flight at once, so a foreground Status/Best/Step call is never
// blocked behind a slow save.
func WithMaxConcurrentSaves(n int64) Option {
	return func(o *options) {
		o.maxConcurrentSaves = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:             fsynth.NoopLogger(),
		autosaveLimiter:    rate.NewLimiter(rate.Limit(1), 1),
		maxConcurrentSaves: 1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
