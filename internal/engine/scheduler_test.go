package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSchedulerFiresInDueOrder(t *testing.T) {
	s := NewManualScheduler()

	var order []string
	s.ScheduleOnce(30*time.Millisecond, func() { order = append(order, "c") })
	s.ScheduleOnce(10*time.Millisecond, func() { order = append(order, "a") })
	s.ScheduleOnce(20*time.Millisecond, func() { order = append(order, "b") })

	s.Advance(40 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualSchedulerTiesBreakByScheduleOrder(t *testing.T) {
	s := NewManualScheduler()

	var order []string
	s.ScheduleOnce(10*time.Millisecond, func() { order = append(order, "first") })
	s.ScheduleOnce(10*time.Millisecond, func() { order = append(order, "second") })

	s.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManualSchedulerRepeating(t *testing.T) {
	s := NewManualScheduler()

	fired := 0
	h := s.ScheduleRepeating(100*time.Millisecond, func() { fired++ })

	s.Advance(350 * time.Millisecond)
	assert.Equal(t, 3, fired)

	s.Cancel(h)
	s.Advance(500 * time.Millisecond)
	assert.Equal(t, 3, fired)
}

func TestManualSchedulerNestedScheduling(t *testing.T) {
	s := NewManualScheduler()

	var order []string
	s.ScheduleOnce(10*time.Millisecond, func() {
		order = append(order, "outer")
		// Falls inside the same Advance window, so it fires within this call.
		s.ScheduleOnce(5*time.Millisecond, func() { order = append(order, "inner") })
	})

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestManualSchedulerCancelBeforeDue(t *testing.T) {
	s := NewManualScheduler()

	fired := false
	h := s.ScheduleOnce(10*time.Millisecond, func() { fired = true })
	s.Cancel(h)

	s.Advance(time.Second)
	assert.False(t, fired)

	// Canceling garbage handles must be harmless.
	s.Cancel(NoHandle)
	s.Cancel(Handle(9999))
}

func TestManualSchedulerCancelAll(t *testing.T) {
	s := NewManualScheduler()

	fired := 0
	s.ScheduleOnce(10*time.Millisecond, func() { fired++ })
	s.ScheduleRepeating(20*time.Millisecond, func() { fired++ })
	s.CancelAll()

	s.Advance(time.Second)
	assert.Equal(t, 0, fired)
}

func TestManualSchedulerNow(t *testing.T) {
	s := NewManualScheduler()
	assert.Equal(t, time.Duration(0), s.Now())

	s.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, s.Now())
}

func TestWallSchedulerOnce(t *testing.T) {
	s := NewWallScheduler(1)
	defer s.CancelAll()

	done := make(chan struct{})
	s.ScheduleOnce(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot never fired")
	}
}

func TestWallSchedulerCancel(t *testing.T) {
	s := NewWallScheduler(1)
	defer s.CancelAll()

	fired := make(chan struct{}, 1)
	h := s.ScheduleOnce(50*time.Millisecond, func() { fired <- struct{}{} })
	s.Cancel(h)

	select {
	case <-fired:
		t.Fatal("canceled timer fired")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWallSchedulerSpeedValidation(t *testing.T) {
	// Construction is infallible; speed is clamped by config validation
	// upstream. A handle is still returned at any speed.
	s := NewWallScheduler(8)
	defer s.CancelAll()

	h := s.ScheduleRepeating(time.Hour, func() {})
	require.NotEqual(t, NoHandle, h)
	s.Cancel(h)
}
