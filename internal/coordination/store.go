// Package coordination provides a thin contract over an external TTL key/value
// store used for leader election, commit-index persistence, and producer
// idempotence locks.
package coordination

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("coordination: key not found")

// Store is the narrow contract the broker needs from the coordination service.
// It is implemented by RedisStore in this package; tests substitute a fake or
// a miniredis-backed RedisStore.
type Store interface {
	// Get returns the current value of key, or ErrNotFound if absent.
	Get(ctx context.Context, key string) (string, error)

	// SetIfAbsent sets key to value with the given ttl only if key does not
	// already exist. Returns true if the set happened.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// SetIfPresent sets key to value with the given ttl only if key already
	// exists. Returns true if the set happened.
	SetIfPresent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Set unconditionally sets key to value with the given ttl. A ttl of zero
	// means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr atomically increments key (treating an absent key as 0) and
	// returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies connectivity to the coordination store.
	Ping(ctx context.Context) error
}
