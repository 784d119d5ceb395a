// Package statestore provides optional, pluggable persistence for a
// search.Task's JSON snapshot. It is a one-way dependency from driver
// code outward: nothing in atom, rangeset, exprtree, pool, or search
// imports statestore.
package statestore

import "context"

// Store loads and saves opaque snapshot bytes under a string key.
// Implementations are responsible for their own durability and
// integrity guarantees.
type Store interface {
	Save(ctx context.Context, key string, snapshot []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}
