package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyBonusTiers(t *testing.T) {
	cases := []struct {
		name      string
		elapsedMs int64
		want      int
	}{
		{"instant reply", 0, ScoreBonusReplyUnder10s},
		{"just under 10s", 9_999, ScoreBonusReplyUnder10s},
		{"exactly 10s falls to the next tier", 10_000, ScoreBonusReplyUnder20s},
		{"just under 20s", 19_999, ScoreBonusReplyUnder20s},
		{"exactly 20s", 20_000, ScoreBonusReplyUnder40s},
		{"just under 40s", 39_999, ScoreBonusReplyUnder40s},
		{"exactly 40s", 40_000, ScoreBonusReplyLate},
		{"four minutes late still pays something", 240_000, ScoreBonusReplyLate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReplyBonus(tc.elapsedMs))
		})
	}
}

func TestNextEmailIntervalRatchet(t *testing.T) {
	assert.Equal(t, int64(2250), NextEmailInterval(2500))
	assert.Equal(t, int64(2025), NextEmailInterval(2250))

	// Ratcheting from the start value must bottom out at the floor and
	// then stop moving.
	interval := int64(EmailIntervalStartMs)
	for i := 0; i < 50; i++ {
		interval = NextEmailInterval(interval)
	}
	assert.Equal(t, int64(EmailIntervalFloorMs), interval)
	assert.Equal(t, int64(EmailIntervalFloorMs), NextEmailInterval(interval))
}

func TestActionFocusCost(t *testing.T) {
	assert.InDelta(t, 2.4, ActionFocusCost(FocusCostSelect), 1e-9)
	assert.InDelta(t, 3.6, ActionFocusCost(FocusCostCompose), 1e-9)
	assert.InDelta(t, 6.0, ActionFocusCost(FocusCostReply), 1e-9)
	assert.InDelta(t, 1.2, ActionFocusCost(FocusCostDelete), 1e-9)
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 0.0, ClampFocus(-3.5))
	assert.Equal(t, FocusMax, ClampFocus(120))
	assert.Equal(t, 42.0, ClampFocus(42))

	assert.Equal(t, 0, ClampScore(-10))
	assert.Equal(t, 7, ClampScore(7))
}

func TestEvaluateOutcomeGrades(t *testing.T) {
	cases := []struct {
		name      string
		score     int
		focus     float64
		processed int
		mistakes  int
		want      OutcomeGrade
	}{
		{"high score with focus left", 80, 50, 20, 0, GradeExemplary},
		{"high score but drained", 80, 10, 20, 0, GradeSolid},
		{"mistakes drag an exemplary run down", 65, 50, 20, 2, GradeSolid},
		{"middling run", 35, 20, 10, 0, GradeSolid},
		{"no points and no attention", 0, 0, 3, 1, GradeBurnedOut},
		{"kept some attention but lost the inbox", 10, 30, 5, 0, GradeFrazzled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := EvaluateOutcome(tc.score, tc.focus, tc.processed, tc.mistakes)
			assert.Equal(t, tc.want, o.Grade)
			assert.Equal(t, tc.score, o.Score)
			assert.Equal(t, tc.mistakes, o.Mistakes)
			assert.NotEmpty(t, o.Summary)
		})
	}
}
