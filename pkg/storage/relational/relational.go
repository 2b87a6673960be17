// Package relational implements storage.Driver over database/sql with a
// relational layout: a main record table plus one-to-many speaker, tag,
// marker, related-pattern, and chronology tables keyed by record id, and
// session, message, and bridge tables. The SQLite and Postgres drivers are
// thin wrappers that open a connection and hand it to this driver with the
// matching dialect.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/amberhq/amber/pkg/storage"
)

// Dialect selects placeholder style for the underlying database.
type Dialect string

const (
	// DialectSQLite uses ? placeholders.
	DialectSQLite Dialect = "sqlite"

	// DialectPostgres uses $n placeholders.
	DialectPostgres Dialect = "postgres"
)

// Driver implements storage.Driver over a *sql.DB.
type Driver struct {
	db      *sql.DB
	dialect Dialect
}

// NewDriver wraps an open database handle. The caller keeps ownership of
// nothing: Close closes the handle.
func NewDriver(db *sql.DB, dialect Dialect) (*Driver, error) {
	d := &Driver{db: db, dialect: dialect}

	if err := d.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
// Timestamps are stored as RFC 3339 text so recency ordering works
// identically across dialects.
func (d *Driver) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS context_records (
			id TEXT PRIMARY KEY,
			pattern_type TEXT NOT NULL,
			match_text TEXT NOT NULL,
			full_context TEXT NOT NULL,
			extended_context TEXT NOT NULL DEFAULT '',
			source_file TEXT NOT NULL DEFAULT '',
			source_session TEXT NOT NULL DEFAULT '',
			source_date TEXT,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS speaker_segments (
			record_id TEXT NOT NULL REFERENCES context_records(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			speaker TEXT NOT NULL,
			text TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS domain_tags (
			record_id TEXT NOT NULL REFERENCES context_records(id) ON DELETE CASCADE,
			tag TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS emotional_markers (
			record_id TEXT NOT NULL REFERENCES context_records(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			marker_type TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS related_patterns (
			record_id TEXT NOT NULL REFERENCES context_records(id) ON DELETE CASCADE,
			related_id TEXT NOT NULL,
			relation TEXT NOT NULL,
			strength REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chronology (
			record_id TEXT NOT NULL REFERENCES context_records(id) ON DELETE CASCADE,
			occurred_at TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at TEXT NOT NULL,
			ended_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS message_contexts (
			message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
			record_id TEXT NOT NULL,
			PRIMARY KEY (message_id, record_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bridges (
			id TEXT PRIMARY KEY,
			from_session_id TEXT NOT NULL,
			to_session_id TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '[]',
			context_ids TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source_session ON context_records(source_session)`,
		`CREATE INDEX IF NOT EXISTS idx_records_extracted_at ON context_records(extracted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bridges_to_session ON bridges(to_session_id)`,
	}

	for _, stmt := range schema {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	return nil
}

// rebind converts ? placeholders to the dialect's style.
func (d *Driver) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Stats counts the rows in the main tables.
func (d *Driver) Stats(ctx context.Context) (storage.Stats, error) {
	var stats storage.Stats

	counts := []struct {
		table string
		dst   *int
	}{
		{"context_records", &stats.Records},
		{"sessions", &stats.Sessions},
		{"bridges", &stats.Bridges},
	}

	for _, c := range counts {
		row := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table)
		if err := row.Scan(c.dst); err != nil {
			return storage.Stats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	return stats, nil
}

// Close closes the underlying database handle.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ storage.Driver = (*Driver)(nil)
