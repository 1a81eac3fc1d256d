package engine

import (
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/message"
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
)

// AlertSnapshot is the externally visible priority-alert state.
type AlertSnapshot struct {
	Active    bool    `json:"active"`
	Countdown float64 `json:"countdown"` // Remaining seconds
}

// AutopilotSnapshot is the externally visible agent state.
type AutopilotSnapshot struct {
	Enabled       bool `json:"enabled"`
	Mistakes      int  `json:"mistakes"`
	PromptPending bool `json:"prompt_pending"`
	PromptShown   bool `json:"prompt_shown"`
}

// Snapshot is a consistent read of the full session state for the
// presentation layer. Messages are copies; mutating them does nothing.
type Snapshot struct {
	SessionID       string            `json:"session_id"`
	State           State             `json:"state"`
	ClockMs         int64             `json:"clock_ms"`
	Focus           float64           `json:"focus"`
	Score           int               `json:"score"`
	Messages        []message.Message `json:"messages"`
	Alert           AlertSnapshot     `json:"alert"`
	Autopilot       AutopilotSnapshot `json:"autopilot"`
	Processed       int               `json:"processed"`
	EmailIntervalMs int64             `json:"email_interval_ms"`
	Notices         []Notice          `json:"notices"`
	Outcome         *rules.Outcome    `json:"outcome,omitempty"`
}

// Snapshot captures the current state under the session lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:       s.id,
		State:           s.state,
		ClockMs:         s.clockMs,
		Focus:           s.meters.focus,
		Score:           s.meters.score,
		Messages:        s.inbox.snapshotMessages(),
		Processed:       s.inbox.processed,
		EmailIntervalMs: s.generator.intervalMs,
		Notices:         s.notices.active(s.clockMs),
		Alert: AlertSnapshot{
			Active:    s.alert.active,
			Countdown: s.alert.countdown(),
		},
		Autopilot: AutopilotSnapshot{
			Enabled:       s.agent.enabled,
			Mistakes:      s.agent.mistakes,
			PromptPending: s.agent.promptPending,
			PromptShown:   s.agent.promptShown,
		},
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	return snap
}

// ID returns the current session identifier (empty before the first Start).
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}
