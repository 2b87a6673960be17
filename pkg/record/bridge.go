package record

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// BridgeRecord links two sessions for continuity. It carries the full,
// untruncated message payload of the source session plus the de-duplicated
// set of context ids transported across the bridge. Bridges are created
// once and read-only afterward; a session may have any number of inbound
// and outbound bridges.
type BridgeRecord struct {
	ID            string `json:"id"`
	FromSessionID string `json:"from_session_id"`
	ToSessionID   string `json:"to_session_id"`

	// Summary is advisory text describing what the bridge carries. The
	// authoritative payload is Messages + ContextIDs, never the summary.
	Summary string `json:"summary"`

	// Messages is the full message history of the source session at the
	// time the bridge was built. Never truncated.
	Messages []Message `json:"messages,omitempty"`

	// ContextIDs is the de-duplicated set of context record ids carried
	// across this bridge.
	ContextIDs []string `json:"context_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy sharing no slice backing with the original.
func (b *BridgeRecord) Clone() *BridgeRecord {
	out := *b
	out.ContextIDs = slices.Clone(b.ContextIDs)
	if b.Messages != nil {
		out.Messages = make([]Message, len(b.Messages))
		for i, msg := range b.Messages {
			msg.ContextIDs = slices.Clone(msg.ContextIDs)
			out.Messages[i] = msg
		}
	}
	return &out
}

// NewBridgeRecord mints a bridge with a fresh UUID.
func NewBridgeRecord(fromSessionID, toSessionID string) *BridgeRecord {
	return &BridgeRecord{
		ID:            uuid.NewString(),
		FromSessionID: fromSessionID,
		ToSessionID:   toSessionID,
		CreatedAt:     time.Now().UTC(),
	}
}
