// Package kvstore provides namespaced key-value storage for client-side
// state: the anonymous cart, the session token, and anything else the
// storefront keeps between runs. The file store is the default; a redis
// store exists for shared-terminal deployments where several storefront
// processes serve the same visitor.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when the requested key has no value.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is a minimal key-value interface. Values are opaque byte slices;
// callers handle their own serialization. Keys must be namespaced by the
// caller (e.g. "miria:cart") to avoid collisions with other client state.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
