// Package storage defines the durable structured store tier. The durable
// store is the authoritative system of record: the cache and semantic index
// can always be rebuilt from it. Every record write covers the main row and
// all derived rows (speakers, tags, markers, related patterns, chronology)
// in a single transaction so a crash mid-write never leaves a record
// half-visible.
package storage

import (
	"context"

	"github.com/amberhq/amber/pkg/record"
)

// Driver is the durable-store contract.
type Driver interface {
	// PutRecord writes a record and all of its derived rows in one
	// transaction. Writing an existing id replaces the previous row set,
	// leaving exactly one coherent copy.
	PutRecord(ctx context.Context, rec *record.ContextRecord) error

	// GetRecord reconstructs a record by re-joining its derived rows.
	// Returns ErrNotFound if the id has no main row.
	GetRecord(ctx context.Context, id string) (*record.ContextRecord, error)

	// DeleteRecord removes the derived rows then the main row.
	// Deleting a missing id is a no-op.
	DeleteRecord(ctx context.Context, id string) error

	// SearchText is the degraded-mode fallback when the semantic index is
	// unavailable: a substring match against full context, match text, and
	// extended context, ordered by recency, optionally tag-filtered.
	SearchText(ctx context.Context, query string, limit int, tags []string) ([]*record.ContextRecord, error)

	// PutSession inserts or updates a session row.
	PutSession(ctx context.Context, sess *record.SessionRecord) error

	// GetSession returns a session by id, or ErrNotFound.
	GetSession(ctx context.Context, id string) (*record.SessionRecord, error)

	// PutMessage inserts a message and its context-record links.
	PutMessage(ctx context.Context, msg *record.Message) error

	// SessionMessages returns a session's messages in creation order.
	SessionMessages(ctx context.Context, sessionID string) ([]record.Message, error)

	// SessionRecordIDs returns the context record ids associated with a
	// session: ids linked through the session's messages unioned with ids
	// whose source descriptor names the session.
	SessionRecordIDs(ctx context.Context, sessionID string) ([]string, error)

	// PutBridge persists a bridge record.
	PutBridge(ctx context.Context, bridge *record.BridgeRecord) error

	// GetBridge returns a bridge by id, or ErrNotFound.
	GetBridge(ctx context.Context, id string) (*record.BridgeRecord, error)

	// BridgesInto returns every bridge whose to-session is sessionID.
	BridgesInto(ctx context.Context, sessionID string) ([]*record.BridgeRecord, error)

	// Stats reports row counts for the durable tier.
	Stats(ctx context.Context) (Stats, error)

	// Close closes the store and releases any resources.
	Close() error
}

// Stats summarizes the contents of the durable store.
type Stats struct {
	Records  int `json:"records"`
	Sessions int `json:"sessions"`
	Bridges  int `json:"bridges"`
}
