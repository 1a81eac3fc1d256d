// Package storage provides the persistence layer for the simulation server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// SessionEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type SessionEvent struct {
	ID        string                 `json:"id" db:"id"`
	SessionID string                 `json:"session_id" db:"session_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	ClockMs   int64                  `json:"clock_ms" db:"clock_ms"`
	EventType string                 `json:"event_type" db:"event_type"`
	MessageID int                    `json:"message_id" db:"message_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event SessionEvent) error

	// GetBySessionID retrieves all events for one session (for recap).
	GetBySessionID(ctx context.Context, sessionID string) ([]SessionEvent, error)

	// GetByEventType retrieves a session's events of one type.
	GetByEventType(ctx context.Context, sessionID string, eventType string) ([]SessionEvent, error)
}

// SessionSummary is one completed (or aborted) session row for the scoreboard.
type SessionSummary struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
	EndedAt     time.Time `json:"ended_at" db:"ended_at"`
	DurationMs  int64     `json:"duration_ms" db:"duration_ms"`
	Score       int       `json:"score" db:"score"`
	Focus       float64   `json:"focus" db:"focus"`
	Processed   int       `json:"processed" db:"processed"`
	Mistakes    int       `json:"mistakes" db:"mistakes"`
	Grade       string    `json:"grade" db:"grade"`
}

// SessionRepository defines the interface for session summaries.
type SessionRepository interface {
	// Upsert records or updates a session summary.
	Upsert(ctx context.Context, summary SessionSummary) error

	// GetBySessionID retrieves one summary, nil if unknown.
	GetBySessionID(ctx context.Context, sessionID string) (*SessionSummary, error)

	// Recent returns the latest summaries, newest first.
	Recent(ctx context.Context, limit int) ([]SessionSummary, error)
}
