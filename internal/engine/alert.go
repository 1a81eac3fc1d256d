package engine

import (
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

// Alert is the priority-alert mini state machine:
// Idle -> Active -> {Acknowledged | Expired} -> Idle. At most one alert is
// active at a time; the recurring trigger only raises from Idle.
type Alert struct {
	s              *Session
	active         bool
	countdownTicks int // Remaining 100ms ticks; 20 ticks = 2.0s
	tickHandle     Handle
}

func newAlert(s *Session) *Alert {
	return &Alert{s: s}
}

func (a *Alert) reset() {
	a.active = false
	a.countdownTicks = 0
	a.tickHandle = NoHandle
}

// Countdown returns the remaining time in seconds for display.
func (a *Alert) countdown() float64 {
	return float64(a.countdownTicks) * float64(a.s.cfg.AlertTickMs) / 1000.0
}

// maybeRaise fires on the recurring alert trigger. A raise while Active is
// swallowed: the state machine admits no other transition.
func (a *Alert) maybeRaise() {
	if a.active {
		return
	}
	a.active = true
	a.countdownTicks = a.s.cfg.AlertCountdownTicks

	epoch := a.s.epoch
	a.tickHandle = a.s.sched.ScheduleRepeating(a.s.ms(a.s.cfg.AlertTickMs), a.s.guarded(epoch, a.tick))

	a.s.emit(events.EventTypeAlertRaised, 0, nil)
	a.s.log.Event("ALERT", a.s.id, "Priority alert raised")
}

// tick decrements the countdown; reaching zero expires the alert, applying
// the score and focus penalties exactly once.
func (a *Alert) tick() {
	if !a.active {
		return
	}
	a.countdownTicks--
	if a.countdownTicks > 0 {
		return
	}

	a.stopTicking()
	a.active = false

	a.s.meters.addScore(-rules.ScorePenaltyAlertExpiry, "alert ignored", 0)
	a.s.meters.spendFocus(rules.FocusCostAlertExpiry, "alert ignored")
	a.s.emit(events.EventTypeAlertExpired, 0, nil)
	a.s.log.Event("ALERT", a.s.id, "Priority alert expired unacknowledged")
}

// acknowledge resolves the alert by player action. Acknowledging while Idle
// is a no-op.
func (a *Alert) acknowledge() {
	if !a.active {
		return
	}
	a.stopTicking()
	a.active = false

	a.s.meters.spendFocus(rules.FocusCostAlertAck, "alert acknowledged")
	a.s.emit(events.EventTypeAlertAcked, 0, nil)
}

func (a *Alert) stopTicking() {
	if a.tickHandle != NoHandle {
		a.s.sched.Cancel(a.tickHandle)
		a.tickHandle = NoHandle
	}
}
