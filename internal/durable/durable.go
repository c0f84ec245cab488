// Package durable defines the key-value persistence surface the cart store
// writes through, plus a change feed that carries only externally-originated
// writes: a context never sees its own Set or Remove echoed back.
package durable

import "context"

// Event is one externally-originated change to a watched key.
type Event struct {
	Key     string
	Value   string
	Removed bool
}

// Store is one execution context's handle on the shared store. Two handles
// opened against the same backing store see each other's writes through
// Watch; last writer wins at whole-value granularity.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error

	// Watch delivers changes made by other contexts until ctx is cancelled
	// or the store is closed. The returned channel is closed afterwards.
	Watch(ctx context.Context, key string) (<-chan Event, error)

	Close() error
}
