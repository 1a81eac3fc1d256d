package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MTorresVidal/InboxOverload/server/internal/domain/message"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

// criticalOnly yields one critical template-0 message per generation.
func criticalOnly() *scriptRand {
	return &scriptRand{floats: []float64{0.0}, ints: []int{0}}
}

func singleBurstConfig() Config {
	cfg := DefaultConfig()
	cfg.BurstCount = 1
	cfg.EmailIntervalMs = cfg.SessionDurationMs
	cfg.AlertPeriodMs = cfg.SessionDurationMs // Keep alerts out of focus math
	return cfg
}

func TestDrainStartsAfterGrace(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()

	// Critical arrives at t=0; the grace window runs to t=10s.
	sched.Advance(9999 * time.Millisecond)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeDrainStarted))

	sched.Advance(1 * time.Millisecond)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeDrainStarted))

	// Five drain periods pass: five ticks, one point each (clamped at zero
	// here since nothing was earned).
	sched.Advance(5 * time.Second)
	assert.Equal(t, 5, countEvents(evlog, s.ID(), events.EventTypeDrainTick))
	assert.Equal(t, 0, s.Snapshot().Score)
}

func TestDrainBleedsEarnedPoints(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(100 * time.Millisecond)

	// Bank some points first so the drain has something to bite.
	s.mu.Lock()
	s.meters.addScore(10, "test setup", 0)
	s.mu.Unlock()

	sched.Advance(13 * time.Second) // Grace ends at 10s; ticks at 11,12,13s
	assert.Equal(t, 3, countEvents(evlog, s.ID(), events.EventTypeDrainTick))
	assert.Equal(t, 7, s.Snapshot().Score)
}

func TestReplyDuringGraceCancelsDrain(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(100 * time.Millisecond)

	id := s.Snapshot().Messages[0].ID
	s.SendReply(id, "handled")

	sched.Advance(30 * time.Second)
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeDrainStarted))
	assert.Equal(t, 0, countEvents(evlog, s.ID(), events.EventTypeDrainTick))
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeDrainStopped))
}

func TestTrashStopsActiveDrain(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(12 * time.Second) // Drain active, ticks at 11s and 12s
	require.Equal(t, 2, countEvents(evlog, s.ID(), events.EventTypeDrainTick))

	id := s.Snapshot().Messages[0].ID
	s.MoveMessage(id, message.FolderTrash)

	// The next would-be tick observes the trashed message and stops.
	sched.Advance(10 * time.Second)
	assert.Equal(t, 2, countEvents(evlog, s.ID(), events.EventTypeDrainTick))
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeDrainStopped))
}

func TestSelectMarksReadAndChargesFocus(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(100 * time.Millisecond)

	id := s.Snapshot().Messages[0].ID
	focusBefore := s.Snapshot().Focus
	s.SelectMessage(id)

	snap := s.Snapshot()
	assert.True(t, snap.Messages[0].Read)
	assert.InDelta(t, focusBefore-2.4, snap.Focus, 1e-6)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeMessageRead))

	// Selecting again charges focus but emits no second read event.
	s.SelectMessage(id)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeMessageRead))
}

func TestMoveIsIdempotentPerFolder(t *testing.T) {
	s, sched, evlog := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(100 * time.Millisecond)
	id := s.Snapshot().Messages[0].ID

	s.MoveMessage(id, message.FolderImportant)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeMessageMoved))

	// Same target folder again: silent.
	s.MoveMessage(id, message.FolderImportant)
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeMessageMoved))

	// Unknown folder: silent.
	s.MoveMessage(id, message.Folder("archive"))
	assert.Equal(t, 1, countEvents(evlog, s.ID(), events.EventTypeMessageMoved))

	assert.Equal(t, message.FolderImportant, s.Snapshot().Messages[0].Folder)
}

func TestStarToggles(t *testing.T) {
	s, sched, _ := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(100 * time.Millisecond)
	id := s.Snapshot().Messages[0].ID

	s.ToggleStar(id)
	assert.True(t, s.Snapshot().Messages[0].Starred)
	s.ToggleStar(id)
	assert.False(t, s.Snapshot().Messages[0].Starred)
}

func TestDraftRoundTrip(t *testing.T) {
	s, sched, _ := newTestSession(t, singleBurstConfig(), criticalOnly())
	s.Start()
	sched.Advance(100 * time.Millisecond)
	id := s.Snapshot().Messages[0].ID

	focusBefore := s.Snapshot().Focus
	s.OpenComposer(id)
	assert.InDelta(t, focusBefore-3.6, s.Snapshot().Focus, 1e-6)

	s.SaveDraft(id, "half-written thought")
	assert.Equal(t, "half-written thought", s.Snapshot().Messages[0].Draft)
}

func TestOffTopicReplyPenalty(t *testing.T) {
	// Normal message, some banked points.
	rng := &scriptRand{floats: []float64{0.9}, ints: []int{0}}
	s, sched, _ := newTestSession(t, singleBurstConfig(), rng)
	s.Start()
	sched.Advance(100 * time.Millisecond)

	s.mu.Lock()
	s.meters.addScore(10, "test setup", 0)
	s.mu.Unlock()

	id := s.Snapshot().Messages[0].ID
	s.SendReply(id, "sounds great")

	snap := s.Snapshot()
	assert.Equal(t, 7, snap.Score)
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, int64(2250), snap.EmailIntervalMs)
}

func TestProcessedCountsEachMessageOnce(t *testing.T) {
	cfg := singleBurstConfig()
	cfg.BurstCount = 3
	s, sched, _ := newTestSession(t, cfg, criticalOnly())
	s.Start()
	sched.Advance(2 * time.Second)

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 3)

	s.SendReply(snap.Messages[0].ID, "done")
	s.DeleteMessage(snap.Messages[1].ID)
	s.DeleteMessage(snap.Messages[1].ID) // Dead id, must not double-count

	assert.Equal(t, 2, s.Snapshot().Processed)
}
