package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MTorresVidal/InboxOverload/server/internal/events"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/logger"
)

// scriptRand replays scripted draws so a test controls every random
// decision. Sequences wrap around when exhausted.
type scriptRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ii%len(r.ints)]
	r.ii++
	return v % n
}

// newTestSession wires a session onto the manual scheduler with an
// in-memory event log.
func newTestSession(t *testing.T, cfg Config, rng Rand) (*Session, *ManualScheduler, *events.Log) {
	t.Helper()

	sched := NewManualScheduler()
	evlog := events.NewLog(nil)
	s, err := NewSession(cfg, logger.NewLogger(), evlog, sched, rng)
	require.NoError(t, err)
	return s, sched, evlog
}

// quietConfig returns the default tuning with the generator and autopilot
// pushed out of the way, for tests that want an empty, silent session.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.BurstCount = 0
	cfg.EmailIntervalMs = cfg.SessionDurationMs // One arrival at most, at the very end
	return cfg
}

// countEvents tallies events of one type for a session.
func countEvents(evlog *events.Log, sessionID string, et events.EventType) int {
	n := 0
	for _, e := range evlog.BySession(sessionID) {
		if e.Type == et {
			n++
		}
	}
	return n
}
