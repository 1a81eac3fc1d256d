package engine

import (
	"fmt"

	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

// Meters holds the two session resources: Focus, which only ever drains
// while the session runs, and Score, which moves on discrete events and is
// floor-clamped at zero.
type Meters struct {
	s     *Session
	focus float64
	score int
}

// ScoreChangePayload records a score adjustment for audit and display.
type ScoreChangePayload struct {
	Delta    int    `json:"delta"`
	NewScore int    `json:"new_score"`
	Cause    string `json:"cause"`
}

// FocusPenaltyPayload records a discrete focus hit. Passive decay is not
// evented; it would flood the log ten times a second.
type FocusPenaltyPayload struct {
	Amount   float64 `json:"amount"`
	NewFocus float64 `json:"new_focus"`
	Cause    string  `json:"cause"`
}

func newMeters(s *Session) *Meters {
	return &Meters{s: s, focus: rules.FocusMax}
}

func (m *Meters) reset() {
	m.focus = rules.FocusMax
	m.score = 0
}

// decayTick applies the passive focus drain. Runs every clock tick,
// independent of message and alert timers.
func (m *Meters) decayTick() {
	m.focus = rules.ClampFocus(m.focus - rules.FocusDecayPerTick)
}

// spendFocus applies a discrete focus penalty, already scaled by the caller
// where the action multiplier applies.
func (m *Meters) spendFocus(amount float64, cause string) {
	before := m.focus
	m.focus = rules.ClampFocus(m.focus - amount)
	if m.focus == before {
		return
	}
	m.s.emit(events.EventTypeFocusPenalty, 0, FocusPenaltyPayload{
		Amount:   amount,
		NewFocus: m.focus,
		Cause:    cause,
	})
}

// addScore applies a score delta, clamped at zero, and posts the transient
// score notice every change must surface.
func (m *Meters) addScore(delta int, cause string, messageID int) {
	m.score = rules.ClampScore(m.score + delta)
	payload := ScoreChangePayload{Delta: delta, NewScore: m.score, Cause: cause}
	m.s.emit(events.EventTypeScoreChanged, messageID, payload)
	m.s.notices.post(Notice{
		Kind:        NoticeScore,
		Amount:      delta,
		MessageID:   messageID,
		ExpiresAtMs: m.s.clockMs + m.s.cfg.NoticeScoreMs,
	})
	m.s.log.Event("SCORE", m.s.id, fmt.Sprintf("%+d (%s) -> %d", delta, cause, m.score))
}
