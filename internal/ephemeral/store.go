// Package ephemeral provides short-lived keyed state for the authentication
// flow: one-time codes, anti-replay state tokens and revocation markers.
//
// Values are strings with a mandatory TTL. Backends are an in-process map
// (Memory) and Redis (Redis); Resilient layers them as an ordered list with
// primary/fallback failover. Failover is best effort: backends are not kept
// in sync while the primary is healthy.
package ephemeral

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL is returned by Put for a non-positive TTL.
var ErrInvalidTTL = errors.New("ephemeral: ttl must be positive")

// Store is a TTL-keyed string store.
type Store interface {
	// Put stores value under key until ttl elapses.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and true, or false when the key is absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Purger removes a key from every place it may be held. Stores that
// layer several backends implement it so consumed single-use values cannot
// resurface from a fallback.
type Purger interface {
	Purge(ctx context.Context, key string) error
}

// consume removes a single-use key, purging every backend when store
// supports it.
func consume(ctx context.Context, store Store, key string) error {
	if p, ok := store.(Purger); ok {
		return p.Purge(ctx, key)
	}
	return store.Delete(ctx, key)
}
