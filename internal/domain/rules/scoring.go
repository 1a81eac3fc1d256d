// Package rules contains the pure calculation logic for the simulation mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

// Focus constants. Focus is a float in [0,100] that only ever decreases
// while a session is running.
const (
	FocusMax             = 100.0
	FocusDecayPerTick    = 0.12 // Passive drain applied every 100ms clock tick
	FocusCostMultiplier  = 1.2  // Engine-wide scaling for player action costs
	FocusCostSelect      = 2.0
	FocusCostCompose     = 3.0
	FocusCostReply       = 5.0
	FocusCostDelete      = 1.0
	FocusCostAlertAck    = 3.0  // Unscaled
	FocusCostAlertExpiry = 10.0 // Unscaled
	FocusCostAgentTouch  = 5.0  // Unscaled: autopilot reading a message on the player's behalf
)

// Score constants. Score is an int floor-clamped at 0.
const (
	ScorePenaltyOffTopicReply   = 3
	ScorePenaltyDrainTick       = 1
	ScorePenaltyAlertExpiry     = 5
	ScorePenaltyAgentMistake    = 10
	ScoreBonusReplyUnder10s     = 15
	ScoreBonusReplyUnder20s     = 10
	ScoreBonusReplyUnder40s     = 5
	ScoreBonusReplyLate         = 2
)

// Email cadence constants (simulated milliseconds).
const (
	EmailIntervalStartMs = 2500
	EmailIntervalFloorMs = 800
	emailIntervalRatchet = 0.9
)

// ActionFocusCost scales a base action cost by the engine-wide multiplier.
func ActionFocusCost(base float64) float64 {
	return base * FocusCostMultiplier
}

// ClampFocus keeps focus inside [0, FocusMax].
func ClampFocus(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > FocusMax {
		return FocusMax
	}
	return f
}

// ClampScore keeps score non-negative.
func ClampScore(s int) int {
	if s < 0 {
		return 0
	}
	return s
}

// ReplyBonus returns the response-time-tiered bonus for replying to a
// critical message, computed from the elapsed session time since arrival.
func ReplyBonus(elapsedMs int64) int {
	switch {
	case elapsedMs < 10_000:
		return ScoreBonusReplyUnder10s
	case elapsedMs < 20_000:
		return ScoreBonusReplyUnder20s
	case elapsedMs < 40_000:
		return ScoreBonusReplyUnder40s
	default:
		return ScoreBonusReplyLate
	}
}

// NextEmailInterval applies the one-way cadence ratchet triggered by a reply
// to a non-critical message. The interval only ever shrinks, floored at
// EmailIntervalFloorMs. Repeated penalties at the floor are a no-op.
func NextEmailInterval(currentMs int64) int64 {
	next := int64(float64(currentMs) * emailIntervalRatchet)
	if next < EmailIntervalFloorMs {
		return EmailIntervalFloorMs
	}
	return next
}
