package engine

import (
	"sync"
	"time"
)

// Handle identifies one scheduled timer so it can be canceled individually.
type Handle int64

// NoHandle is the zero value; Cancel(NoHandle) is a no-op.
const NoHandle Handle = 0

// Scheduler owns every timed trigger in the simulation: interval ticks,
// one-shot delays and countdowns. All handles must be cancelable, and
// CancelAll must guarantee that no further callbacks fire afterwards.
//
// Delays are expressed in simulated time. The wall implementation maps them
// to real time through a speed divisor; the manual implementation advances
// simulated time explicitly and is fully deterministic.
type Scheduler interface {
	ScheduleOnce(delay time.Duration, fn func()) Handle
	ScheduleRepeating(period time.Duration, fn func()) Handle
	Cancel(h Handle)
	CancelAll()
}

// WallScheduler drives callbacks from real wall-clock timers.
// A speed of 2 runs the simulation at double speed, 0.5 at half speed.
type WallScheduler struct {
	mu      sync.Mutex
	speed   float64
	nextID  int64
	once    map[Handle]*time.Timer
	repeats map[Handle]chan struct{}
}

// NewWallScheduler creates a real-time scheduler. Non-positive speeds
// fall back to 1x.
func NewWallScheduler(speed float64) *WallScheduler {
	if speed <= 0 {
		speed = 1
	}
	return &WallScheduler{
		speed:   speed,
		once:    make(map[Handle]*time.Timer),
		repeats: make(map[Handle]chan struct{}),
	}
}

func (s *WallScheduler) scale(d time.Duration) time.Duration {
	return time.Duration(float64(d) / s.speed)
}

func (s *WallScheduler) allocate() Handle {
	s.nextID++
	return Handle(s.nextID)
}

// ScheduleOnce fires fn once after delay of simulated time.
func (s *WallScheduler) ScheduleOnce(delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.allocate()
	s.once[h] = time.AfterFunc(s.scale(delay), func() {
		s.mu.Lock()
		delete(s.once, h)
		s.mu.Unlock()
		fn()
	})
	return h
}

// ScheduleRepeating fires fn every period of simulated time until canceled.
func (s *WallScheduler) ScheduleRepeating(period time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.allocate()
	stop := make(chan struct{})
	s.repeats[h] = stop

	go func() {
		ticker := time.NewTicker(s.scale(period))
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return h
}

// Cancel stops a single timer. Unknown or already-fired handles are no-ops.
func (s *WallScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(h)
}

func (s *WallScheduler) cancelLocked(h Handle) {
	if t, ok := s.once[h]; ok {
		t.Stop()
		delete(s.once, h)
	}
	if stop, ok := s.repeats[h]; ok {
		close(stop)
		delete(s.repeats, h)
	}
}

// CancelAll invalidates every outstanding handle. Callbacks already racing
// through the timer boundary are neutralized by the session epoch guard.
func (s *WallScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h := range s.once {
		s.cancelLocked(h)
	}
	for h := range s.repeats {
		s.cancelLocked(h)
	}
}
