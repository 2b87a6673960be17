package record

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies how a session was produced.
type SourceKind string

const (
	SourceInteractive SourceKind = "interactive"
	SourceCLI         SourceKind = "cli"
	SourceChat        SourceKind = "chat"
)

// SessionRecord represents one capture session. Context records associate
// with a session either through messages or through their source descriptor.
type SessionRecord struct {
	ID        string     `json:"id"`
	Kind      SourceKind `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// NewSessionRecord mints a session with a fresh UUID.
func NewSessionRecord(kind SourceKind) *SessionRecord {
	return &SessionRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// Message is a single message belonging to a session. A message may link
// to the context records that were captured from it.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// ContextIDs are the context records captured from this message.
	ContextIDs []string `json:"context_ids,omitempty"`
}

// NewMessage mints a message with a fresh UUID.
func NewMessage(sessionID, role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
