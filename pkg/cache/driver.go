// Package cache provides the fast-cache tier for the amber engine.
//
// Cache drivers hold recently touched context records and bridge records
// keyed by ID with a fixed TTL. The cache is never authoritative: every
// entry can be rebuilt from the durable store, so cache failures only cost
// latency.
//
// Drivers are pluggable via configuration:
//
//	[cache]
//	provider = "local"
package cache

import (
	"context"
	"time"

	"github.com/amberhq/amber/pkg/record"
)

// DefaultTTL is the cache entry lifetime used when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Driver is the fast-cache contract. Set is an idempotent, TTL-refreshing
// write; Get returns ErrNotFound for both missing and expired entries.
type Driver interface {
	// Get returns the cached record for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*record.ContextRecord, error)

	// Set stores a record under id with the given TTL. A zero TTL uses
	// DefaultTTL. Setting an existing id refreshes its TTL.
	Set(ctx context.Context, id string, rec *record.ContextRecord, ttl time.Duration) error

	// Delete removes the entry for id. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error

	// GetBridge returns the cached bridge for id, or ErrNotFound.
	GetBridge(ctx context.Context, id string) (*record.BridgeRecord, error)

	// SetBridge stores a bridge under id with the given TTL, with the same
	// TTL semantics as Set. Bridge and record IDs occupy separate
	// keyspaces.
	SetBridge(ctx context.Context, id string, bridge *record.BridgeRecord, ttl time.Duration) error

	// Close releases driver resources.
	Close() error
}
