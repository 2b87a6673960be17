package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/amberhq/amber/pkg/record"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeContextCaptured is emitted after a context record is
	// persisted across the storage tiers.
	EventTypeContextCaptured = "amber.context.captured"

	// EventTypeBridgeCreated is emitted after a session bridge is
	// persisted.
	EventTypeBridgeCreated = "amber.bridge.created"
)

// ContextCapturedEvent is a transport-neutral event payload for a captured
// context record.
type ContextCapturedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	RecordID      string   `json:"record_id"`
	PatternType   string   `json:"pattern_type"`
	SourceFile    string   `json:"source_file,omitempty"`
	SourceSession string   `json:"source_session,omitempty"`
	DomainTags    []string `json:"domain_tags,omitempty"`
}

// BridgeCreatedEvent is a transport-neutral event payload for a created
// session bridge.
type BridgeCreatedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	BridgeID      string `json:"bridge_id"`
	FromSessionID string `json:"from_session_id"`
	ToSessionID   string `json:"to_session_id"`
	ContextCount  int    `json:"context_count"`
	MessageCount  int    `json:"message_count"`
}

// NewContextCapturedEvent builds the event for a persisted record.
func NewContextCapturedEvent(rec *record.ContextRecord) *ContextCapturedEvent {
	return &ContextCapturedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeContextCaptured,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		RecordID:      rec.ID,
		PatternType:   rec.PatternType,
		SourceFile:    rec.Source.File,
		SourceSession: rec.Source.SessionID,
		DomainTags:    rec.DomainTags,
	}
}

// NewBridgeCreatedEvent builds the event for a persisted bridge.
func NewBridgeCreatedEvent(bridge *record.BridgeRecord) *BridgeCreatedEvent {
	return &BridgeCreatedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeBridgeCreated,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		BridgeID:      bridge.ID,
		FromSessionID: bridge.FromSessionID,
		ToSessionID:   bridge.ToSessionID,
		ContextCount:  len(bridge.ContextIDs),
		MessageCount:  len(bridge.Messages),
	}
}
