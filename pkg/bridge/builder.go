// Package bridge builds cross-session bridge records. A bridge snapshots
// the context reachable from one session so a later session can start with
// it: the direct record ids, one hop of previously bridged-in ids, and the
// session's full message history. Bridging is best-effort continuity — a
// session with nothing to carry still gets a bridge, just an empty one.
package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/eventstream"
	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/tiered"
)

// Builder aggregates session context into bridge records.
type Builder struct {
	store     *tiered.Store
	publisher eventstream.Publisher
	logger    *zap.Logger
}

// NewBuilder creates a bridge builder. The publisher may be nil to disable
// event emission.
func NewBuilder(store *tiered.Store, publisher eventstream.Publisher, logger *zap.Logger) *Builder {
	return &Builder{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Bridge aggregates the context reachable from fromSessionID and persists
// a BridgeRecord linking it to toSessionID. Ids that fail to hydrate are
// skipped; sessions with no resolvable context still produce a bridge with
// an empty summary.
//
// The aggregation reads a snapshot: context added to the source session
// after the bridge is built is not included, and no locking is taken
// against concurrent writes.
func (b *Builder) Bridge(ctx context.Context, fromSessionID, toSessionID string) (*record.BridgeRecord, error) {
	ids := b.collectIDs(ctx, fromSessionID)

	var hydrated []*record.ContextRecord
	for _, id := range ids {
		rec, err := b.store.Retrieve(ctx, id)
		if err != nil {
			b.logger.Warn("skipping unresolvable context id",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		if rec == nil {
			b.logger.Debug("context id has no record in any tier",
				zap.String("id", id),
			)
			continue
		}
		hydrated = append(hydrated, rec)
	}

	messages, err := b.store.Storage().SessionMessages(ctx, fromSessionID)
	if err != nil {
		b.logger.Warn("reading session messages failed, bridging without history",
			zap.String("session_id", fromSessionID),
			zap.Error(err),
		)
		messages = nil
	}

	bridgeRec := record.NewBridgeRecord(fromSessionID, toSessionID)
	bridgeRec.Messages = messages
	bridgeRec.ContextIDs = ids
	bridgeRec.Summary = summarize(messages, hydrated)

	if err := b.store.StoreBridge(ctx, bridgeRec); err != nil {
		return nil, err
	}

	b.logger.Info("bridge created",
		zap.String("bridge_id", bridgeRec.ID),
		zap.String("from", fromSessionID),
		zap.String("to", toSessionID),
		zap.Int("context_ids", len(ids)),
	)

	if b.publisher != nil {
		event := eventstream.NewBridgeCreatedEvent(bridgeRec)
		if err := b.publisher.PublishBridge(ctx, event); err != nil {
			b.logger.Warn("publishing bridge event failed",
				zap.String("bridge_id", bridgeRec.ID),
				zap.Error(err),
			)
		}
	}

	return bridgeRec, nil
}

// collectIDs unions the session's direct record ids with ids carried by
// bridges into the session. Chaining is deliberately one hop: ids that
// arrived over a bridge are carried forward, but the walk does not recurse
// through older bridges.
func (b *Builder) collectIDs(ctx context.Context, sessionID string) []string {
	seen := make(map[string]struct{})
	var ids []string

	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	direct, err := b.store.SessionRecordIDs(ctx, sessionID)
	if err != nil {
		b.logger.Warn("reading session record ids failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	for _, id := range direct {
		add(id)
	}

	inbound, err := b.store.Storage().BridgesInto(ctx, sessionID)
	if err != nil {
		b.logger.Warn("reading inbound bridges failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	for _, br := range inbound {
		for _, id := range br.ContextIDs {
			add(id)
		}
	}

	return ids
}
