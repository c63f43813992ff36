package shared

import (
	"context"
	"time"
)

// RunGuard deduplicates concurrent or repeated submissions of the same
// long-running operation, keyed by an operation-specific string.
// It is an early-rejection convenience only; callers must not rely on it
// for correctness.
type RunGuard interface {
	// TryAcquire marks the key as in-flight with a TTL.
	// Returns true if the key was newly acquired, false if a run with the
	// same key is already in flight.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release clears the key so the operation can be submitted again.
	Release(ctx context.Context, key string) error

	// Close closes the guard and releases resources
	Close() error
}
