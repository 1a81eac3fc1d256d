package engine

import (
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

// Decision thresholds for the autopilot policy, evaluated in order against
// one uniform draw.
const (
	agentMistakeBelow = 0.4 // Critical message: below this, delete it by mistake
	agentWorkBelow    = 0.7 // Non-critical: below this, "work" it before deleting
)

// MistakePayload surfaces an autopilot blunder to the player.
type MistakePayload struct {
	Subject  string `json:"subject"`
	Mistakes int    `json:"mistakes"`
}

// Autopilot is the optional automated triage agent. Every cadence tick it
// picks one unread inbox message uniformly at random and acts on it with an
// imperfect policy; sometimes that help costs the player dearly.
type Autopilot struct {
	s             *Session
	enabled       bool
	mistakes      int
	promptShown   bool // One-shot per session, even if declined
	promptPending bool
}

func newAutopilot(s *Session) *Autopilot {
	return &Autopilot{s: s}
}

func (a *Autopilot) reset() {
	a.enabled = false
	a.mistakes = 0
	a.promptShown = false
	a.promptPending = false
}

// tick runs one autopilot decision. Disabled or empty-pool ticks do nothing.
func (a *Autopilot) tick() {
	if !a.enabled {
		return
	}
	pool := a.s.inbox.unreadInInbox()
	if len(pool) == 0 {
		return
	}

	m := pool[a.s.rng.Intn(len(pool))]
	decision := a.s.rng.Float64()

	switch {
	case m.IsCritical() && decision < agentMistakeBelow:
		// The one kind of help nobody asked for.
		a.mistakes++
		subject := m.Subject
		a.s.meters.addScore(-rules.ScorePenaltyAgentMistake, "autopilot deleted critical", m.ID)
		a.s.inbox.removeByAgent(m.ID, "autopilot mistake")
		a.s.notices.post(Notice{
			Kind:        NoticeMistake,
			Subject:     subject,
			MessageID:   m.ID,
			ExpiresAtMs: a.s.clockMs + a.s.cfg.NoticeMistakeMs,
		})
		a.s.emit(events.EventTypeAgentMistake, m.ID, MistakePayload{Subject: subject, Mistakes: a.mistakes})
		a.s.log.Warn("Autopilot deleted a critical message: " + subject)

	case !m.IsCritical() && decision < agentWorkBelow:
		// Skim it, then file it away once it has been "handled".
		m.Read = true
		a.s.meters.spendFocus(rules.FocusCostAgentTouch, "autopilot working")
		a.s.emit(events.EventTypeAgentAction, m.ID, "working")

		id := m.ID
		epoch := a.s.epoch
		a.s.sched.ScheduleOnce(a.s.ms(a.s.cfg.AgentWorkDelayMs), a.s.guarded(epoch, func() {
			a.s.inbox.removeByAgent(id, "autopilot finished")
		}))

	default:
		a.s.inbox.removeByAgent(m.ID, "autopilot cleanup")
		a.s.emit(events.EventTypeAgentAction, m.ID, "cleanup")
	}
}

// maybePrompt raises the opt-in prompt the first time the player is visibly
// drowning: processed > threshold and focus below threshold at the same
// moment. It never raises twice in a session.
func (a *Autopilot) maybePrompt() {
	if a.promptShown || a.enabled {
		return
	}
	if a.s.inbox.processed > a.s.cfg.PromptMinProcessed && a.s.meters.focus < a.s.cfg.PromptFocusBelow {
		a.promptShown = true
		a.promptPending = true
		a.s.emit(events.EventTypeAgentPrompt, 0, nil)
		a.s.log.Event("AUTOPILOT", a.s.id, "Opt-in prompt raised")
	}
}

func (a *Autopilot) setEnabled(enabled bool) {
	a.enabled = enabled
	if enabled {
		a.promptPending = false
	}
}

// dismissPrompt declines the offer. promptShown stays set, so the prompt
// never returns this session.
func (a *Autopilot) dismissPrompt() {
	a.promptPending = false
}
