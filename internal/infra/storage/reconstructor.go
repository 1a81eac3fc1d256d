package storage

import (
	"context"
	"fmt"
)

// Reconstructor rebuilds session results from the event ledger.
// This is the audit half of event sourcing: the summary row can always be
// recomputed as state = f(events), which makes score tampering and write
// bugs detectable after the fact.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new ledger reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RebuiltSession holds the counters recomputed from the ledger.
type RebuiltSession struct {
	SessionID string
	Score     int
	Processed int
	Mistakes  int
	Replies   int
	Arrivals  int
	Ended     bool
}

// RecapEvent is a simplified event for the post-game recap screen.
type RecapEvent struct {
	ClockMs   int64  `json:"clock_ms"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"`
	Impact    string `json:"impact"` // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// RebuildSession replays one session's ledger and recomputes its counters.
func (r *Reconstructor) RebuildSession(ctx context.Context, sessionID string) (*RebuiltSession, error) {
	events, err := r.eventRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for session: %w", err)
	}

	state := RebuiltSession{SessionID: sessionID}

	for _, e := range events {
		switch e.EventType {
		case "SCORE_CHANGED":
			if score, ok := e.Payload["new_score"].(float64); ok {
				state.Score = int(score)
			}
		case "MESSAGE_ARRIVED":
			state.Arrivals++
		case "MESSAGE_DELETED":
			state.Processed++
		case "REPLY_SENT":
			state.Replies++
		case "AGENT_MISTAKE":
			state.Mistakes++
		case "SESSION_ENDED":
			state.Ended = true
		}
	}

	return &state, nil
}

// GenerateRecap creates the post-game recap from a session's ledger.
func (r *Reconstructor) GenerateRecap(ctx context.Context, sessionID string) ([]RecapEvent, error) {
	events, err := r.eventRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var recap []RecapEvent
	for _, e := range events {
		entry := RecapEvent{ClockMs: e.ClockMs, EventType: e.EventType, Impact: "NEUTRAL"}

		switch e.EventType {
		case "REPLY_SENT":
			entry.Summary = "Reply sent"
			entry.Impact = "POSITIVE"
		case "SCORE_CHANGED":
			delta, _ := e.Payload["delta"].(float64)
			cause, _ := e.Payload["cause"].(string)
			entry.Summary = fmt.Sprintf("Score %+d (%s)", int(delta), cause)
			if delta < 0 {
				entry.Impact = "NEGATIVE"
			} else {
				entry.Impact = "POSITIVE"
			}
		case "AGENT_MISTAKE":
			subject, _ := e.Payload["subject"].(string)
			entry.Summary = "Autopilot deleted: " + subject
			entry.Impact = "NEGATIVE"
		case "ALERT_EXPIRED":
			entry.Summary = "Priority alert missed"
			entry.Impact = "NEGATIVE"
		case "SESSION_ENDED":
			entry.Summary = "Session over"
		default:
			continue
		}

		recap = append(recap, entry)
	}

	return recap, nil
}
