package relational

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/storage"
)

// PutRecord writes the main row and all derived rows in one transaction.
// Derived rows for an existing id are replaced wholesale, so re-storing the
// same id leaves exactly one coherent row set.
func (d *Driver) PutRecord(ctx context.Context, rec *record.ContextRecord) error {
	if rec == nil {
		return fmt.Errorf("cannot store nil record")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var sourceDate any
	if !rec.Source.Date.IsZero() {
		sourceDate = formatTime(rec.Source.Date)
	}

	if _, err := tx.ExecContext(ctx, d.rebind(`
		INSERT INTO context_records
			(id, pattern_type, match_text, full_context, extended_context,
			 source_file, source_session, source_date, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			pattern_type = excluded.pattern_type,
			match_text = excluded.match_text,
			full_context = excluded.full_context,
			extended_context = excluded.extended_context,
			source_file = excluded.source_file,
			source_session = excluded.source_session,
			source_date = excluded.source_date,
			extracted_at = excluded.extracted_at`),
		rec.ID, rec.PatternType, rec.MatchText, rec.FullContext, rec.ExtendedContext,
		rec.Source.File, rec.Source.SessionID, sourceDate, formatTime(rec.ExtractedAt),
	); err != nil {
		return fmt.Errorf("upserting record %s: %w", rec.ID, err)
	}

	for _, table := range []string{"speaker_segments", "domain_tags", "emotional_markers", "related_patterns", "chronology"} {
		if _, err := tx.ExecContext(ctx,
			d.rebind("DELETE FROM "+table+" WHERE record_id = ?"), rec.ID,
		); err != nil {
			return fmt.Errorf("clearing %s for %s: %w", table, rec.ID, err)
		}
	}

	for i, s := range rec.Speakers {
		if _, err := tx.ExecContext(ctx, d.rebind(`
			INSERT INTO speaker_segments (record_id, position, speaker, text, start_offset, end_offset)
			VALUES (?, ?, ?, ?, ?, ?)`),
			rec.ID, i, s.Speaker, s.Text, s.Start, s.End,
		); err != nil {
			return fmt.Errorf("inserting speaker segment: %w", err)
		}
	}

	for _, tag := range rec.DomainTags {
		if _, err := tx.ExecContext(ctx,
			d.rebind(`INSERT INTO domain_tags (record_id, tag) VALUES (?, ?)`),
			rec.ID, tag,
		); err != nil {
			return fmt.Errorf("inserting domain tag: %w", err)
		}
	}

	for i, m := range rec.Markers {
		if _, err := tx.ExecContext(ctx, d.rebind(`
			INSERT INTO emotional_markers (record_id, position, marker_type, start_offset, end_offset, description)
			VALUES (?, ?, ?, ?, ?, ?)`),
			rec.ID, i, string(m.Type), m.Start, m.End, m.Description,
		); err != nil {
			return fmt.Errorf("inserting emotional marker: %w", err)
		}
	}

	for _, rp := range rec.RelatedPatterns {
		if _, err := tx.ExecContext(ctx, d.rebind(`
			INSERT INTO related_patterns (record_id, related_id, relation, strength)
			VALUES (?, ?, ?, ?)`),
			rec.ID, rp.ID, rp.Relation, rp.Strength,
		); err != nil {
			return fmt.Errorf("inserting related pattern: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, d.rebind(`
		INSERT INTO chronology (record_id, occurred_at, session_id)
		VALUES (?, ?, ?)`),
		rec.ID, formatTime(rec.ExtractedAt), rec.Source.SessionID,
	); err != nil {
		return fmt.Errorf("inserting chronology row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record %s: %w", rec.ID, err)
	}

	return nil
}

// GetRecord reconstructs a record by re-joining its derived rows.
func (d *Driver) GetRecord(ctx context.Context, id string) (*record.ContextRecord, error) {
	row := d.db.QueryRowContext(ctx, d.rebind(`
		SELECT id, pattern_type, match_text, full_context, extended_context,
		       source_file, source_session, source_date, extracted_at
		FROM context_records WHERE id = ?`), id)

	var rec record.ContextRecord
	var sourceDate sql.NullString
	var extractedAt string

	err := row.Scan(&rec.ID, &rec.PatternType, &rec.MatchText, &rec.FullContext,
		&rec.ExtendedContext, &rec.Source.File, &rec.Source.SessionID,
		&sourceDate, &extractedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if rec.ExtractedAt, err = parseTime(extractedAt); err != nil {
		return nil, fmt.Errorf("parsing extracted_at: %w", err)
	}

	if sourceDate.Valid {
		if rec.Source.Date, err = parseTime(sourceDate.String); err != nil {
			return nil, fmt.Errorf("parsing source_date: %w", err)
		}
	}

	if rec.Speakers, err = d.speakers(ctx, id); err != nil {
		return nil, err
	}
	if rec.DomainTags, err = d.tags(ctx, id); err != nil {
		return nil, err
	}
	if rec.Markers, err = d.markers(ctx, id); err != nil {
		return nil, err
	}
	if rec.RelatedPatterns, err = d.related(ctx, id); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (d *Driver) speakers(ctx context.Context, id string) ([]record.SpeakerSegment, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT speaker, text, start_offset, end_offset
		FROM speaker_segments WHERE record_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("querying speakers: %w", err)
	}
	defer rows.Close()

	var out []record.SpeakerSegment
	for rows.Next() {
		var s record.SpeakerSegment
		if err := rows.Scan(&s.Speaker, &s.Text, &s.Start, &s.End); err != nil {
			return nil, fmt.Errorf("scanning speaker: %w", err)
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func (d *Driver) tags(ctx context.Context, id string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		d.rebind(`SELECT tag FROM domain_tags WHERE record_id = ? ORDER BY tag`), id)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		out = append(out, tag)
	}

	return out, rows.Err()
}

func (d *Driver) markers(ctx context.Context, id string) ([]record.EmotionalMarker, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT marker_type, start_offset, end_offset, description
		FROM emotional_markers WHERE record_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}
	defer rows.Close()

	var out []record.EmotionalMarker
	for rows.Next() {
		var m record.EmotionalMarker
		var markerType string
		if err := rows.Scan(&markerType, &m.Start, &m.End, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		m.Type = record.MarkerType(markerType)
		out = append(out, m)
	}

	return out, rows.Err()
}

func (d *Driver) related(ctx context.Context, id string) ([]record.RelatedPattern, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT related_id, relation, strength
		FROM related_patterns WHERE record_id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("querying related patterns: %w", err)
	}
	defer rows.Close()

	var out []record.RelatedPattern
	for rows.Next() {
		var rp record.RelatedPattern
		if err := rows.Scan(&rp.ID, &rp.Relation, &rp.Strength); err != nil {
			return nil, fmt.Errorf("scanning related pattern: %w", err)
		}
		out = append(out, rp)
	}

	return out, rows.Err()
}

// DeleteRecord removes the derived rows then the main row. A missing id is
// a no-op.
func (d *Driver) DeleteRecord(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"speaker_segments", "domain_tags", "emotional_markers", "related_patterns", "chronology"} {
		if _, err := tx.ExecContext(ctx,
			d.rebind("DELETE FROM "+table+" WHERE record_id = ?"), id,
		); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		d.rebind(`DELETE FROM context_records WHERE id = ?`), id,
	); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of %s: %w", id, err)
	}

	return nil
}

// SearchText runs the LIKE fallback over full context, match text, and
// extended context, newest first.
func (d *Driver) SearchText(ctx context.Context, query string, limit int, tags []string) ([]*record.ContextRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + query + "%"
	args := []any{pattern, pattern, pattern}

	q := `
		SELECT id FROM context_records
		WHERE (full_context LIKE ? OR match_text LIKE ? OR extended_context LIKE ?)`

	if len(tags) > 0 {
		placeholders := make([]string, len(tags))
		for i, tag := range tags {
			placeholders[i] = "?"
			args = append(args, tag)
		}
		q += ` AND id IN (SELECT record_id FROM domain_tags WHERE tag IN (` +
			joinPlaceholders(placeholders) + `))`
	}

	q += ` ORDER BY extracted_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, d.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search hits: %w", err)
	}

	out := make([]*record.ContextRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := d.GetRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, nil
}

func joinPlaceholders(ps []string) string {
	out := ""
	for i, p := range ps {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
