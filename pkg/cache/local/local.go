// Package local provides an in-process implementation of the cache.Driver
// interface. Entries live in a mutex-guarded map with per-entry expiry;
// expired entries are dropped lazily on read and swept opportunistically on
// write. This is the default cache tier — a remote cache can replace it
// behind the same interface without touching callers.
package local

import (
	"context"
	"sync"
	"time"

	"github.com/amberhq/amber/pkg/cache"
	"github.com/amberhq/amber/pkg/record"
)

// sweepEvery bounds how often a Set triggers a full expiry sweep.
const sweepEvery = 256

type entry struct {
	rec       *record.ContextRecord
	expiresAt time.Time
}

type bridgeEntry struct {
	bridge    *record.BridgeRecord
	expiresAt time.Time
}

// Driver implements cache.Driver using in-process data structures.
type Driver struct {
	mu      sync.RWMutex
	entries map[string]entry
	bridges map[string]bridgeEntry
	writes  int

	// now is swappable for tests.
	now func() time.Time
}

// NewDriver creates a local in-process cache driver.
func NewDriver() *Driver {
	return &Driver{
		entries: make(map[string]entry),
		bridges: make(map[string]bridgeEntry),
		now:     time.Now,
	}
}

// Get returns the cached record for id. Expired entries are removed and
// reported as misses.
func (d *Driver) Get(_ context.Context, id string) (*record.ContextRecord, error) {
	d.mu.RLock()
	e, ok := d.entries[id]
	d.mu.RUnlock()

	if !ok {
		return nil, cache.ErrNotFound
	}

	if d.now().After(e.expiresAt) {
		d.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := d.entries[id]; ok && d.now().After(cur.expiresAt) {
			delete(d.entries, id)
		}
		d.mu.Unlock()
		return nil, cache.ErrNotFound
	}

	// Return a deep copy so callers cannot mutate cached state through
	// shared slice backing.
	return e.rec.Clone(), nil
}

// Set stores a record under id, refreshing the TTL if the id exists.
func (d *Driver) Set(_ context.Context, id string, rec *record.ContextRecord, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	stored := rec.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[id] = entry{
		rec:       stored,
		expiresAt: d.now().Add(ttl),
	}

	d.writes++
	if d.writes%sweepEvery == 0 {
		d.sweepLocked()
	}

	return nil
}

// GetBridge returns the cached bridge for id. Expired entries are removed
// and reported as misses.
func (d *Driver) GetBridge(_ context.Context, id string) (*record.BridgeRecord, error) {
	d.mu.RLock()
	e, ok := d.bridges[id]
	d.mu.RUnlock()

	if !ok {
		return nil, cache.ErrNotFound
	}

	if d.now().After(e.expiresAt) {
		d.mu.Lock()
		if cur, ok := d.bridges[id]; ok && d.now().After(cur.expiresAt) {
			delete(d.bridges, id)
		}
		d.mu.Unlock()
		return nil, cache.ErrNotFound
	}

	return e.bridge.Clone(), nil
}

// SetBridge stores a bridge under id, refreshing the TTL if the id exists.
func (d *Driver) SetBridge(_ context.Context, id string, bridge *record.BridgeRecord, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	stored := bridge.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.bridges[id] = bridgeEntry{
		bridge:    stored,
		expiresAt: d.now().Add(ttl),
	}

	d.writes++
	if d.writes%sweepEvery == 0 {
		d.sweepLocked()
	}

	return nil
}

// Delete removes the entry for id.
func (d *Driver) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.entries, id)

	return nil
}

// Close drops all entries.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = make(map[string]entry)
	d.bridges = make(map[string]bridgeEntry)

	return nil
}

// Len returns the number of live entries. Used by tests.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.entries) + len(d.bridges)
}

func (d *Driver) sweepLocked() {
	now := d.now()
	for id, e := range d.entries {
		if now.After(e.expiresAt) {
			delete(d.entries, id)
		}
	}
	for id, e := range d.bridges {
		if now.After(e.expiresAt) {
			delete(d.bridges, id)
		}
	}
}

var _ cache.Driver = (*Driver)(nil)
