package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event SessionEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, session_id, timestamp, clock_ms, event_type, message_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.Timestamp, event.ClockMs,
		event.EventType, event.MessageID, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]SessionEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var e SessionEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.SessionID, &e.Timestamp, &e.ClockMs,
			&e.EventType, &e.MessageID, &payloadStr,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetBySessionID(ctx context.Context, sessionID string) ([]SessionEvent, error) {
	query := `SELECT id, session_id, timestamp, clock_ms, event_type, message_id, payload FROM events WHERE session_id = ? ORDER BY clock_ms ASC, timestamp ASC`
	return r.getMany(ctx, query, sessionID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID string, eventType string) ([]SessionEvent, error) {
	query := `SELECT id, session_id, timestamp, clock_ms, event_type, message_id, payload FROM events WHERE session_id = ? AND event_type = ? ORDER BY clock_ms ASC, timestamp ASC`
	return r.getMany(ctx, query, sessionID, eventType)
}

// ---------------------------------------------------------
// SQLiteSessionRepository
// ---------------------------------------------------------

type SQLiteSessionRepository struct {
	db *sql.DB
}

func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

func (r *SQLiteSessionRepository) Upsert(ctx context.Context, summary SessionSummary) error {
	query := `
		INSERT INTO sessions (session_id, started_at, ended_at, duration_ms, score, focus, processed, mistakes, grade)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			ended_at=excluded.ended_at,
			duration_ms=excluded.duration_ms,
			score=excluded.score,
			focus=excluded.focus,
			processed=excluded.processed,
			mistakes=excluded.mistakes,
			grade=excluded.grade
	`
	_, err := r.db.ExecContext(ctx, query,
		summary.SessionID, summary.StartedAt, summary.EndedAt, summary.DurationMs,
		summary.Score, summary.Focus, summary.Processed, summary.Mistakes, summary.Grade,
	)
	return err
}

func (r *SQLiteSessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*SessionSummary, error) {
	query := `SELECT session_id, started_at, ended_at, duration_ms, score, focus, processed, mistakes, grade FROM sessions WHERE session_id = ?`
	var s SessionSummary
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &s.StartedAt, &s.EndedAt, &s.DurationMs,
		&s.Score, &s.Focus, &s.Processed, &s.Mistakes, &s.Grade,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteSessionRepository) Recent(ctx context.Context, limit int) ([]SessionSummary, error) {
	query := `SELECT session_id, started_at, ended_at, duration_ms, score, focus, processed, mistakes, grade FROM sessions ORDER BY ended_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(
			&s.SessionID, &s.StartedAt, &s.EndedAt, &s.DurationMs,
			&s.Score, &s.Focus, &s.Processed, &s.Mistakes, &s.Grade,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
