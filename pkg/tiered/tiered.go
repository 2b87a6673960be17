// Package tiered implements the layered storage orchestrator. A Store fans
// writes out to the fast cache, the durable structured store, and the
// semantic index, and reads back through a latency-ordered fallback chain
// with cache backfill.
//
// Consistency across tiers is eventual, with the durable store
// authoritative. A record may transiently exist in some tiers and not
// others after a degraded write; reads succeed via whichever tier is
// populated. Callers must not assume a record is retrievable before Store
// returns. The guiding policy is to never lose already-captured context:
// a failing tier degrades the operation, it never aborts it.
package tiered

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/cache"
	"github.com/amberhq/amber/pkg/embeddings"
	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/storage"
	"github.com/amberhq/amber/pkg/vector"
)

// Config holds the constructed tier handles. Handles are created once at
// process start and passed in; the orchestrator takes ownership and closes
// them in Close.
type Config struct {
	// Cache is the fast-cache tier. Optional; nil disables caching.
	Cache cache.Driver

	// Storage is the durable store tier. Required.
	Storage storage.Driver

	// Vector is the semantic index tier. Optional; nil disables semantic
	// search (text search falls back to the durable store).
	Vector vector.Driver

	// Embedder generates embeddings for records and queries. Required if
	// Vector is set.
	Embedder embeddings.Embedder

	// TTL is the cache entry lifetime. Zero uses cache.DefaultTTL.
	TTL time.Duration

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Store orchestrates the three storage tiers behind one
// store/retrieve/search/delete contract.
type Store struct {
	cache    cache.Driver
	storage  storage.Driver
	vector   vector.Driver
	embedder embeddings.Embedder
	ttl      time.Duration
	logger   *zap.Logger
}

// NewStore creates a tiered store orchestrator.
func NewStore(c *Config) (*Store, error) {
	if c.Storage == nil {
		return nil, errors.New("tiered: storage driver is required")
	}

	if c.Vector != nil && c.Embedder == nil {
		return nil, errors.New("tiered: embedder is required when a vector driver is configured")
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	return &Store{
		cache:    c.Cache,
		storage:  c.Storage,
		vector:   c.Vector,
		embedder: c.Embedder,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// Store writes a record to every configured tier: cache with TTL, durable
// store in one transaction, then the semantic index. A semantic-index
// failure is swallowed after logging; cache and durable-store failures are
// logged without aborting the other writes. Store only returns an error
// when no tier persisted the record at all.
func (s *Store) Store(ctx context.Context, rec *record.ContextRecord) error {
	if rec == nil {
		return errors.New("tiered: cannot store nil record")
	}

	var cached, stored bool

	if s.cache != nil {
		if err := s.cache.Set(ctx, rec.ID, rec, s.ttl); err != nil {
			s.logger.Warn("cache tier write failed",
				zap.String("id", rec.ID),
				zap.Error(err),
			)
		} else {
			cached = true
		}
	}

	if err := s.storage.PutRecord(ctx, rec); err != nil {
		s.logger.Error("durable tier write failed",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	} else {
		stored = true
	}

	s.index(ctx, rec)

	if !cached && !stored {
		return errors.New("tiered: all tiers rejected record " + rec.ID)
	}

	return nil
}

// index embeds the record's full context and upserts it into the semantic
// index. Failures are logged and swallowed.
func (s *Store) index(ctx context.Context, rec *record.ContextRecord) {
	if s.vector == nil {
		return
	}

	embedding, err := s.embedder.Embed(ctx, rec.FullContext)
	if err != nil {
		s.logger.Warn("embedding failed, record not indexed",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
		return
	}

	doc := vector.Document{
		ID:   rec.ID,
		Tags: rec.DomainTags,
		Metadata: map[string]string{
			"pattern_type":   rec.PatternType,
			"source_file":    rec.Source.File,
			"source_session": rec.Source.SessionID,
		},
		Embedding: embedding,
	}

	if err := s.vector.Add(ctx, []vector.Document{doc}); err != nil {
		s.logger.Warn("semantic index write failed",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	}
}

// Retrieve reads a record through the fallback chain: cache first, then the
// durable store with cache backfill. A miss in every tier returns
// (nil, nil) — not found is not an error.
func (s *Store) Retrieve(ctx context.Context, id string) (*record.ContextRecord, error) {
	if s.cache != nil {
		rec, err := s.cache.Get(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("cache tier read failed",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}

	rec, err := s.storage.GetRecord(ctx, id)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, rec, s.ttl); err != nil {
			s.logger.Warn("cache backfill failed",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}

	return rec, nil
}

// Search embeds the query and asks the semantic index for nearest
// neighbors, hydrating each hit through Retrieve. When the index or the
// embedder is unavailable, it degrades to a substring match against the
// durable store ordered by recency.
func (s *Store) Search(ctx context.Context, query string, limit int, tags []string) ([]*record.ContextRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	if s.vector != nil {
		records, err := s.semanticSearch(ctx, query, limit, tags)
		if err == nil {
			return records, nil
		}
		s.logger.Warn("semantic search degraded to durable-store text match",
			zap.String("query", query),
			zap.Error(err),
		)
	}

	return s.storage.SearchText(ctx, query, limit, tags)
}

func (s *Store) semanticSearch(ctx context.Context, query string, limit int, tags []string) ([]*record.ContextRecord, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.vector.Query(ctx, embedding, limit, tags)
	if err != nil {
		return nil, err
	}

	records := make([]*record.ContextRecord, 0, len(hits))
	for _, hit := range hits {
		rec, err := s.Retrieve(ctx, hit.ID)
		if err != nil {
			s.logger.Warn("hydrating search hit failed",
				zap.String("id", hit.ID),
				zap.Error(err),
			)
			continue
		}
		if rec == nil {
			// Indexed but gone from the durable store; skip.
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// Delete removes a record from every tier: derived rows and main row from
// the durable store, the cache entry, and (best-effort) the semantic index
// entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteRecord(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			s.logger.Warn("cache delete failed",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}

	if s.vector != nil {
		if err := s.vector.Delete(ctx, []string{id}); err != nil {
			s.logger.Warn("semantic index delete failed",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}

	return nil
}

// SessionRecordIDs returns the context record ids reachable from a session
// in the durable store.
func (s *Store) SessionRecordIDs(ctx context.Context, sessionID string) ([]string, error) {
	return s.storage.SessionRecordIDs(ctx, sessionID)
}

// StoreBridge persists a bridge to the durable store and the cache. The
// durable write is authoritative and its failure fails the call; a failing
// cache write only costs the next read a durable round trip.
func (s *Store) StoreBridge(ctx context.Context, bridge *record.BridgeRecord) error {
	if bridge == nil || bridge.ID == "" {
		return errors.New("tiered: bridge must be non-nil with an id")
	}

	if err := s.storage.PutBridge(ctx, bridge); err != nil {
		return fmt.Errorf("storing bridge in durable store: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetBridge(ctx, bridge.ID, bridge, s.ttl); err != nil {
			s.logger.Warn("cache tier bridge write failed",
				zap.String("bridge_id", bridge.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// GetBridge reads a bridge cache-aside: a cache hit wins, a miss falls
// through to the durable store and backfills the cache. A bridge absent
// from every tier surfaces as storage.ErrNotFound.
func (s *Store) GetBridge(ctx context.Context, id string) (*record.BridgeRecord, error) {
	if s.cache != nil {
		bridge, err := s.cache.GetBridge(ctx, id)
		if err == nil {
			return bridge, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("cache tier bridge read failed",
				zap.String("bridge_id", id),
				zap.Error(err),
			)
		}
	}

	bridge, err := s.storage.GetBridge(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBridge(ctx, id, bridge, s.ttl); err != nil {
			s.logger.Warn("cache bridge backfill failed",
				zap.String("bridge_id", id),
				zap.Error(err),
			)
		}
	}

	return bridge, nil
}

// Stats reports row counts from the durable tier.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	return s.storage.Stats(ctx)
}

// Storage exposes the durable tier for callers that persist non-record
// rows (sessions, messages, bridges).
func (s *Store) Storage() storage.Driver {
	return s.storage
}

// Close closes every tier. Errors are collected rather than short-circuited
// so a failing cache never leaves the database connection open.
func (s *Store) Close() error {
	var errs []error

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing cache: %w", err))
		}
	}

	if s.vector != nil {
		if err := s.vector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing semantic index: %w", err))
		}
	}

	if err := s.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing durable store: %w", err))
	}

	return errors.Join(errs...)
}
