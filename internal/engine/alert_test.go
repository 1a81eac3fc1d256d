package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

func TestAlertRaisesOnSchedule(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	sched.Advance(7999 * time.Millisecond)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAlertRaised))
	assert.False(t, s.Snapshot().Alert.Active)

	sched.Advance(1 * time.Millisecond)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAlertRaised))

	snap := s.Snapshot()
	assert.True(t, snap.Alert.Active)
	assert.InDelta(t, 2.0, snap.Alert.Countdown, 1e-9)
}

func TestAlertExpiresExactlyOnce(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	// Raised at 8s, 20 ticks of 100ms: expiry lands at exactly 10s.
	sched.Advance(9999 * time.Millisecond)
	require.True(t, s.Snapshot().Alert.Active)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAlertExpired))

	sched.Advance(1 * time.Millisecond)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAlertExpired))
	assert.False(t, s.Snapshot().Alert.Active)

	// The expiry penalty is unscaled: -10 focus on top of 100 decay ticks.
	assert.InDelta(t, 100-100*0.12-10, s.Snapshot().Focus, 1e-6)

	// No stray countdown tick fires later.
	sched.Advance(5 * time.Second)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAlertExpired))
}

func TestAlertAcknowledge(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	sched.Advance(8500 * time.Millisecond)
	require.True(t, s.Snapshot().Alert.Active)
	focusBefore := s.Snapshot().Focus

	s.AcknowledgeAlert()

	snap := s.Snapshot()
	assert.False(t, snap.Alert.Active)
	assert.InDelta(t, focusBefore-3, snap.Focus, 1e-6)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAlertAcked))

	// Acknowledged in time: no expiry ever lands for this alert.
	sched.Advance(5 * time.Second)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAlertExpired))
}

func TestAcknowledgeWhileIdleIsNoOp(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()
	sched.Advance(500 * time.Millisecond)

	focusBefore := s.Snapshot().Focus
	s.AcknowledgeAlert()

	assert.Equal(t, focusBefore, s.Snapshot().Focus)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeAlertAcked))
}

func TestOnlyOneAlertActiveAtATime(t *testing.T) {
	s, sched, evlog := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	// First alert raised at 8s, expires at 10s. The 16s trigger raises the
	// second; a trigger landing while one is active would be swallowed.
	sched.Advance(17 * time.Second)
	assert.Equal(t, 2, countEvents(evlog, s.ID(), events.EventTypeAlertRaised))
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeAlertExpired))
	assert.True(t, s.Snapshot().Alert.Active)
}

func TestAlertCountdownDisplay(t *testing.T) {
	s, sched, _ := newTestSession(t, quietConfig(), &scriptRand{})
	s.Start()

	sched.Advance(8 * time.Second)
	require.True(t, s.Snapshot().Alert.Active)

	// Ten countdown ticks later, half the window remains.
	sched.Advance(1 * time.Second)
	assert.InDelta(t, 1.0, s.Snapshot().Alert.Countdown, 1e-9)
}
