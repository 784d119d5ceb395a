package atom

import "errors"

var (
	// ErrOutOfRange is returned by Library.Get when num is outside the
	// bounds of the arity's atom slice.
	ErrOutOfRange = errors.New("atom: index out of range")

	// ErrInvalidArity is returned by Library.Get for an arity other
	// than 0, 1, or 2.
	ErrInvalidArity = errors.New("atom: invalid arity")
)
