// Package events provides the append-only log of simulation events.
// Subsystems append here; the WebSocket hub and the audit store read from it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a session event.
type EventType string

const (
	EventTypeSessionStarted   EventType = "SESSION_STARTED"
	EventTypeSessionEnded     EventType = "SESSION_ENDED"
	EventTypeMessageArrived   EventType = "MESSAGE_ARRIVED"
	EventTypeMessageRead      EventType = "MESSAGE_READ"
	EventTypeMessageMoved     EventType = "MESSAGE_MOVED"
	EventTypeMessageStarred   EventType = "MESSAGE_STARRED"
	EventTypeMessageDeleted   EventType = "MESSAGE_DELETED"
	EventTypeReplySent        EventType = "REPLY_SENT"
	EventTypeScoreChanged     EventType = "SCORE_CHANGED"
	EventTypeFocusPenalty     EventType = "FOCUS_PENALTY"
	EventTypeDrainStarted     EventType = "DRAIN_STARTED"
	EventTypeDrainTick        EventType = "DRAIN_TICK"
	EventTypeDrainStopped     EventType = "DRAIN_STOPPED"
	EventTypeAlertRaised      EventType = "ALERT_RAISED"
	EventTypeAlertAcked       EventType = "ALERT_ACKED"
	EventTypeAlertExpired     EventType = "ALERT_EXPIRED"
	EventTypeAgentMistake     EventType = "AGENT_MISTAKE"
	EventTypeAgentAction      EventType = "AGENT_ACTION"
	EventTypeAgentPrompt      EventType = "AGENT_PROMPT"
	EventTypeCadenceTightened EventType = "CADENCE_TIGHTENED"
)

// Event represents an immutable record of something that happened in a session.
type Event struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	ClockMs   int64       `json:"clock_ms"` // Session clock at emission
	Type      EventType   `json:"type"`
	MessageID int         `json:"message_id,omitempty"` // 0 when not message-scoped
	Payload   interface{} `json:"payload,omitempty"`
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event Event) error
}

// Log is the in-memory append-only log of session events.
// The write-through persister is optional; pass nil for a purely in-memory log.
type Log struct {
	mu        sync.RWMutex
	events    []Event
	persister Persister
}

// NewLog creates a new event log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		events:    make([]Event, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (l *Log) Append(event Event) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	if l.persister != nil {
		// Write-through off the caller's path; the engine loop must not
		// block on storage latency.
		go func(e Event) {
			_ = l.persister.Append(e)
		}(event)
	}
}

// Replay returns the full event history for recaps and broadcast catch-up.
func (l *Log) Replay() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns events appended after index from, together with the new length.
// The hub poller uses this to pick up only fresh events.
func (l *Log) Since(from int) ([]Event, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if from >= len(l.events) {
		return nil, len(l.events)
	}
	out := make([]Event, len(l.events)-from)
	copy(out, l.events[from:])
	return out, len(l.events)
}

// BySession returns all events belonging to one session, in append order.
func (l *Log) BySession(sessionID string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Event
	for _, e := range l.events {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
