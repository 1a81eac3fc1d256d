package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

func TestAutopilotDisabledByDefault(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()

	sched.Advance(30 * time.Second)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAgentAction))
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAgentMistake))
	assert.False(t, s.Snapshot().Autopilot.Enabled)
}

func TestAutopilotMistakeOnCritical(t *testing.T) {
	// Generation draw 0.0 -> critical. Agent pick Intn(1)=0, then decision
	// draw 0.0 < 0.4 -> mistaken delete.
	rng := &scriptRand{floats: []float64{0.0}, ints: []int{0}}
	s, sched, evlog := newTestSession(t, singleBurstConfig(), rng)
	s.Start()

	s.mu.Lock()
	s.meters.addScore(20, "test setup", 0)
	s.mu.Unlock()

	s.SetAutopilotEnabled(true)
	sched.Advance(3100 * time.Millisecond) // Agent cadence tick at 3s

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Autopilot.Mistakes)
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 1, snap.Processed)
	assert.Empty(t, snap.Messages)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAgentMistake))

	// The blunder surfaces as a mistake notice.
	foundMistake := false
	for _, n := range snap.Notices {
		if n.Kind == NoticeMistake {
			foundMistake = true
		}
	}
	assert.True(t, foundMistake)
}

func TestAutopilotWorksNormalMessage(t *testing.T) {
	// Generation draw 0.9 -> normal. Decision draw 0.9... careful: floats
	// cycle, so script generation and decision separately.
	rng := &scriptRand{floats: []float64{0.9, 0.5}, ints: []int{0}}
	s, sched, evlog := newTestSession(t, singleBurstConfig(), rng)
	s.Start()
	s.SetAutopilotEnabled(true)

	// Agent tick at 3s: decision 0.5 < 0.7 -> mark read, charge focus,
	// schedule the finish 2s out.
	sched.Advance(3100 * time.Millisecond)

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.True(t, snap.Messages[0].Read)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAgentAction))

	// Focus: 31 decay ticks plus the unscaled 5-point agent touch.
	assert.InDelta(t, 100-31*0.12-5, snap.Focus, 1e-6)

	// The finish lands at 5s: message removed without further penalty.
	sched.Advance(2 * time.Second)
	snap = s.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 0, snap.Autopilot.Mistakes)
}

func TestAutopilotCleanupBranch(t *testing.T) {
	// Normal message, decision 0.8 >= 0.7 -> immediate cleanup.
	rng := &scriptRand{floats: []float64{0.9, 0.8}, ints: []int{0}}
	s, sched, evlog := newTestSession(t, singleBurstConfig(), rng)
	s.Start()
	s.SetAutopilotEnabled(true)

	sched.Advance(3100 * time.Millisecond)

	snap := s.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 0, snap.Autopilot.Mistakes)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAgentAction))
}

func TestAutopilotSparesCriticalAboveThreshold(t *testing.T) {
	// Critical message, decision 0.5: not a mistake, and the work branch
	// only applies to non-criticals, so the pick falls through to cleanup.
	rng := &scriptRand{floats: []float64{0.0, 0.5}, ints: []int{0}}
	s, sched, evlog := newTestSession(t, singleBurstConfig(), rng)
	s.Start()
	s.SetAutopilotEnabled(true)

	sched.Advance(3100 * time.Millisecond)

	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAgentMistake))
	assert.Equal(t, 0, s.Snapshot().Autopilot.Mistakes)
	assert.Empty(t, s.Snapshot().Messages)
}

func TestPromptRaisesOnceWhenDrowning(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	// Force the drowning condition directly: processed past the threshold
	// and focus below it.
	s.mu.Lock()
	s.inbox.processed = 9
	s.meters.focus = 30
	s.mu.Unlock()

	sched.Advance(100 * time.Millisecond) // One clock tick evaluates the gate
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAgentPrompt))
	assert.True(t, s.Snapshot().Autopilot.PromptPending)

	// Later ticks never re-raise, even while the condition persists.
	sched.Advance(10 * time.Second)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAgentPrompt))
}

func TestPromptNeedsBothConditions(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	s.mu.Lock()
	s.inbox.processed = 9
	s.meters.focus = 80 // Plenty of attention left
	s.mu.Unlock()

	sched.Advance(1 * time.Second)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAgentPrompt))

	s.mu.Lock()
	s.inbox.processed = 8 // Exactly at the threshold: not strictly past it
	s.meters.focus = 30
	s.mu.Unlock()

	sched.Advance(1 * time.Second)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAgentPrompt))
}

func TestDismissPromptDeclines(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	s.mu.Lock()
	s.inbox.processed = 9
	s.meters.focus = 30
	s.mu.Unlock()
	sched.Advance(100 * time.Millisecond)
	require.True(t, s.Snapshot().Autopilot.PromptPending)

	s.DismissAutopilotPrompt()

	snap := s.Snapshot()
	assert.False(t, snap.Autopilot.PromptPending)
	assert.False(t, snap.Autopilot.Enabled)

	// Declined means declined: the prompt never returns this session.
	sched.Advance(30 * time.Second)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAgentPrompt))
}

func TestEnableClearsPendingPrompt(t *testing.T) {
	s, sched, _ := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	s.mu.Lock()
	s.inbox.processed = 9
	s.meters.focus = 30
	s.mu.Unlock()
	sched.Advance(100 * time.Millisecond)
	require.True(t, s.Snapshot().Autopilot.PromptPending)

	s.SetAutopilotEnabled(true)

	snap := s.Snapshot()
	assert.True(t, snap.Autopilot.Enabled)
	assert.False(t, snap.Autopilot.PromptPending)
}
