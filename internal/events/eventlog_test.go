package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanPersister pushes persisted events onto a channel so the async
// write-through can be observed.
type chanPersister struct {
	ch chan Event
}

func (p *chanPersister) Append(event Event) error {
	p.ch <- event
	return nil
}

func TestAppendAndReplay(t *testing.T) {
	log := NewLog(nil)

	log.Append(Event{ID: "e1", SessionID: "s1", Type: EventTypeSessionStarted})
	log.Append(Event{ID: "e2", SessionID: "s1", Type: EventTypeMessageArrived, MessageID: 1})

	history := log.Replay()
	require.Len(t, history, 2)
	assert.Equal(t, "e1", history[0].ID)
	assert.Equal(t, "e2", history[1].ID)

	// Replay hands back a copy; mutating it must not touch the log.
	history[0].ID = "tampered"
	assert.Equal(t, "e1", log.Replay()[0].ID)
}

func TestSinceCursor(t *testing.T) {
	log := NewLog(nil)
	log.Append(Event{ID: "e1", Type: EventTypeSessionStarted})
	log.Append(Event{ID: "e2", Type: EventTypeMessageArrived})

	fresh, next := log.Since(0)
	require.Len(t, fresh, 2)
	assert.Equal(t, 2, next)

	// Nothing new: empty slice, cursor unchanged.
	fresh, next = log.Since(next)
	assert.Empty(t, fresh)
	assert.Equal(t, 2, next)

	log.Append(Event{ID: "e3", Type: EventTypeScoreChanged})
	fresh, next = log.Since(next)
	require.Len(t, fresh, 1)
	assert.Equal(t, "e3", fresh[0].ID)
	assert.Equal(t, 3, next)
}

func TestBySession(t *testing.T) {
	log := NewLog(nil)
	log.Append(Event{ID: "a1", SessionID: "s1", Type: EventTypeSessionStarted})
	log.Append(Event{ID: "b1", SessionID: "s2", Type: EventTypeSessionStarted})
	log.Append(Event{ID: "a2", SessionID: "s1", Type: EventTypeSessionEnded})

	s1 := log.BySession("s1")
	require.Len(t, s1, 2)
	assert.Equal(t, "a1", s1[0].ID)
	assert.Equal(t, "a2", s1[1].ID)

	assert.Len(t, log.BySession("s2"), 1)
	assert.Empty(t, log.BySession("unknown"))
}

func TestWriteThroughPersister(t *testing.T) {
	p := &chanPersister{ch: make(chan Event, 1)}
	log := NewLog(p)

	log.Append(Event{ID: "e1", SessionID: "s1", Type: EventTypeReplySent})

	select {
	case persisted := <-p.ch:
		assert.Equal(t, "e1", persisted.ID)
		assert.Equal(t, EventTypeReplySent, persisted.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("persister was never invoked")
	}
}

func TestGenerateEventID(t *testing.T) {
	a := GenerateEventID()
	b := GenerateEventID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
