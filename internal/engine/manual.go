package engine

import (
	"container/heap"
	"time"
)

// ManualScheduler is a deterministic Scheduler driven by explicit Advance
// calls instead of wall-clock timers. Due callbacks fire in due-time order,
// ties broken by scheduling order, so a test (or a headless fast-forward run)
// observes one fixed interleaving.
//
// Not safe for concurrent use; it is meant to be driven from a single
// goroutine.
type ManualScheduler struct {
	now    int64 // simulated ms
	nextID int64
	seq    int64
	queue  entryQueue
	dead   map[Handle]bool
}

type manualEntry struct {
	handle Handle
	due    int64
	seq    int64
	period int64 // 0 for one-shots
	fn     func()
}

// NewManualScheduler creates a scheduler at simulated time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{dead: make(map[Handle]bool)}
}

// Now returns the current simulated time.
func (s *ManualScheduler) Now() time.Duration {
	return time.Duration(s.now) * time.Millisecond
}

func (s *ManualScheduler) push(due, period int64, fn func()) Handle {
	s.nextID++
	s.seq++
	h := Handle(s.nextID)
	heap.Push(&s.queue, &manualEntry{handle: h, due: due, seq: s.seq, period: period, fn: fn})
	return h
}

// ScheduleOnce fires fn once after delay of simulated time.
func (s *ManualScheduler) ScheduleOnce(delay time.Duration, fn func()) Handle {
	return s.push(s.now+delay.Milliseconds(), 0, fn)
}

// ScheduleRepeating fires fn every period of simulated time until canceled.
func (s *ManualScheduler) ScheduleRepeating(period time.Duration, fn func()) Handle {
	return s.push(s.now+period.Milliseconds(), period.Milliseconds(), fn)
}

// Cancel invalidates a handle. Entries are lazily discarded on pop.
func (s *ManualScheduler) Cancel(h Handle) {
	if h != NoHandle {
		s.dead[h] = true
	}
}

// CancelAll drops every outstanding entry.
func (s *ManualScheduler) CancelAll() {
	s.queue = nil
	s.dead = make(map[Handle]bool)
}

// Advance moves simulated time forward by d, firing every due callback in
// order. Callbacks may schedule further work; entries falling inside the
// same window fire within this Advance call.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d.Milliseconds()
	for len(s.queue) > 0 && s.queue[0].due <= target {
		e := heap.Pop(&s.queue).(*manualEntry)
		if s.dead[e.handle] {
			delete(s.dead, e.handle)
			continue
		}
		s.now = e.due
		if e.period > 0 {
			s.seq++
			heap.Push(&s.queue, &manualEntry{handle: e.handle, due: e.due + e.period, seq: s.seq, period: e.period, fn: e.fn})
		}
		e.fn()
	}
	s.now = target
}

// entryQueue is a min-heap ordered by (due, seq).
type entryQueue []*manualEntry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q entryQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *entryQueue) Push(x interface{}) { *q = append(*q, x.(*manualEntry)) }

func (q *entryQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}
