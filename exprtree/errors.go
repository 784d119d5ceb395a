package exprtree

import "errors"

var (
	// ErrInvalidJSON is returned by Node.UnmarshalJSON when the input is
	// malformed or structurally inconsistent (an arity or atom index
	// outside the library, or a missing child for a node whose arity
	// requires one). A missing arity or num field is not detected: it
	// decodes as 0.
	ErrInvalidJSON = errors.New("exprtree: invalid node JSON")
)
