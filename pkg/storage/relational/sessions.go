package relational

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/storage"
)

// PutSession inserts or updates a session row.
func (d *Driver) PutSession(ctx context.Context, sess *record.SessionRecord) error {
	if sess == nil {
		return fmt.Errorf("cannot store nil session")
	}

	var endedAt any
	if sess.EndedAt != nil {
		endedAt = formatTime(*sess.EndedAt)
	}

	_, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO sessions (id, kind, created_at, ended_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			ended_at = excluded.ended_at`),
		sess.ID, string(sess.Kind), formatTime(sess.CreatedAt), endedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", sess.ID, err)
	}

	return nil
}

// GetSession returns a session by id.
func (d *Driver) GetSession(ctx context.Context, id string) (*record.SessionRecord, error) {
	row := d.db.QueryRowContext(ctx,
		d.rebind(`SELECT id, kind, created_at, ended_at FROM sessions WHERE id = ?`), id)

	var sess record.SessionRecord
	var kind, createdAt string
	var endedAt sql.NullString

	err := row.Scan(&sess.ID, &kind, &createdAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	sess.Kind = record.SourceKind(kind)
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if endedAt.Valid {
		t, err := parseTime(endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing ended_at: %w", err)
		}
		sess.EndedAt = &t
	}

	return &sess, nil
}

// PutMessage inserts a message together with its context-record links in
// one transaction.
func (d *Driver) PutMessage(ctx context.Context, msg *record.Message) error {
	if msg == nil {
		return fmt.Errorf("cannot store nil message")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, d.rebind(`
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			role = excluded.role,
			content = excluded.content`),
		msg.ID, msg.SessionID, msg.Role, msg.Content, formatTime(msg.CreatedAt),
	); err != nil {
		return fmt.Errorf("upserting message %s: %w", msg.ID, err)
	}

	for _, recordID := range msg.ContextIDs {
		if _, err := tx.ExecContext(ctx, d.rebind(`
			INSERT INTO message_contexts (message_id, record_id)
			VALUES (?, ?)
			ON CONFLICT (message_id, record_id) DO NOTHING`),
			msg.ID, recordID,
		); err != nil {
			return fmt.Errorf("linking message %s to record %s: %w", msg.ID, recordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing message %s: %w", msg.ID, err)
	}

	return nil
}

// SessionMessages returns a session's messages ordered by creation time.
func (d *Driver) SessionMessages(ctx context.Context, sessionID string) ([]record.Message, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}

	var msgs []record.Message
	for rows.Next() {
		var m record.Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}
		msgs = append(msgs, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	for i := range msgs {
		ids, err := d.messageContextIDs(ctx, msgs[i].ID)
		if err != nil {
			return nil, err
		}
		msgs[i].ContextIDs = ids
	}

	return msgs, nil
}

func (d *Driver) messageContextIDs(ctx context.Context, messageID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		d.rebind(`SELECT record_id FROM message_contexts WHERE message_id = ?`), messageID)
	if err != nil {
		return nil, fmt.Errorf("querying message contexts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning message context id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SessionRecordIDs unions ids linked through the session's messages with
// ids whose source descriptor names the session.
func (d *Driver) SessionRecordIDs(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT DISTINCT mc.record_id
		FROM message_contexts mc
		INNER JOIN messages m ON m.id = mc.message_id
		WHERE m.session_id = ?
		UNION
		SELECT id FROM context_records WHERE source_session = ?`),
		sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session record ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session record id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// PutBridge persists a bridge record. The message payload and carried ids
// are stored as JSON document columns.
func (d *Driver) PutBridge(ctx context.Context, bridge *record.BridgeRecord) error {
	if bridge == nil {
		return fmt.Errorf("cannot store nil bridge")
	}

	payload, err := json.Marshal(bridge.Messages)
	if err != nil {
		return fmt.Errorf("marshaling bridge payload: %w", err)
	}

	contextIDs, err := json.Marshal(bridge.ContextIDs)
	if err != nil {
		return fmt.Errorf("marshaling bridge context ids: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO bridges (id, from_session_id, to_session_id, summary, payload, context_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		bridge.ID, bridge.FromSessionID, bridge.ToSessionID, bridge.Summary,
		string(payload), string(contextIDs), formatTime(bridge.CreatedAt),
	); err != nil {
		return fmt.Errorf("inserting bridge %s: %w", bridge.ID, err)
	}

	return nil
}

// GetBridge returns a bridge by id.
func (d *Driver) GetBridge(ctx context.Context, id string) (*record.BridgeRecord, error) {
	row := d.db.QueryRowContext(ctx, d.rebind(`
		SELECT id, from_session_id, to_session_id, summary, payload, context_ids, created_at
		FROM bridges WHERE id = ?`), id)

	bridge, err := scanBridge(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, err
	}

	return bridge, nil
}

// BridgesInto returns every bridge whose to-session is sessionID.
func (d *Driver) BridgesInto(ctx context.Context, sessionID string) ([]*record.BridgeRecord, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT id, from_session_id, to_session_id, summary, payload, context_ids, created_at
		FROM bridges WHERE to_session_id = ? ORDER BY created_at`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying inbound bridges: %w", err)
	}
	defer rows.Close()

	var bridges []*record.BridgeRecord
	for rows.Next() {
		bridge, err := scanBridge(rows)
		if err != nil {
			return nil, err
		}
		bridges = append(bridges, bridge)
	}

	return bridges, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBridge(row scanner) (*record.BridgeRecord, error) {
	var bridge record.BridgeRecord
	var payload, contextIDs, createdAt string

	err := row.Scan(&bridge.ID, &bridge.FromSessionID, &bridge.ToSessionID,
		&bridge.Summary, &payload, &contextIDs, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning bridge: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &bridge.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling bridge payload: %w", err)
	}
	if err := json.Unmarshal([]byte(contextIDs), &bridge.ContextIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling bridge context ids: %w", err)
	}
	if bridge.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing bridge created_at: %w", err)
	}

	return &bridge, nil
}
