package fsynth

import "errors"

var (
	// ErrAlreadyRunning is returned by Run when the driver is already
	// in the Running state.
	ErrAlreadyRunning = errors.New("fsynth: search already running")

	// ErrNotRunning is returned by Stop when the driver is not currently
	// in the Running state.
	ErrNotRunning = errors.New("fsynth: search not running")

	// ErrEmptyLibrary is returned when a search is started with an atom
	// library that has no arity-0 atoms (no tree can ever terminate).
	ErrEmptyLibrary = errors.New("fsynth: atom library has no arity-0 atoms")
)
