// Package cache provides byte-level caches for computed chart layouts.
//
// Laying out a large chart with Graphviz is the most expensive step of a
// render, and the result depends only on the layout graph (node sizes, edges
// and spacing). The layout package hashes that graph and stores the computed
// positions here, so repeated renders of an unchanged chart skip the engine.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// # Keys
//
// Keys are produced by a [Keyer]. [ScopedKeyer] prefixes every key so
// several engines can share one backend without colliding.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
