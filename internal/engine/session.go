package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MTorresVidal/InboxOverload/server/internal/domain/message"
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/logger"
)

// State is the session lifecycle phase.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateEnded      State = "ended"
)

// Session is the authoritative owner of one play-through: the clock, the
// meters, the inbox and every timed subsystem. All mutation happens behind
// its mutex, either from a player command or from a scheduler callback, so
// callbacks execute atomically with respect to each other.
type Session struct {
	mu    sync.Mutex
	cfg   Config
	log   *logger.Logger
	evlog *events.Log
	sched Scheduler
	rng   Rand

	id      string
	state   State
	epoch   uint64 // Bumped on every start/end; stale callbacks check it and bail
	clockMs int64

	meters    *Meters
	inbox     *Inbox
	generator *Generator
	alert     *Alert
	agent     *Autopilot
	notices   *Noticeboard
	outcome   *rules.Outcome
}

// NewSession wires the engine together. It fails fast on an invalid
// configuration and never errors afterwards.
func NewSession(cfg Config, log *logger.Logger, evlog *events.Log, sched Scheduler, rng Rand) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:   cfg,
		log:   log,
		evlog: evlog,
		sched: sched,
		rng:   rng,
		state: StateNotStarted,
	}
	s.meters = newMeters(s)
	s.inbox = newInbox(s)
	s.generator = newGenerator(s)
	s.alert = newAlert(s)
	s.agent = newAutopilot(s)
	s.notices = newNoticeboard()
	return s, nil
}

// Start resets every meter, counter and collection and transitions to
// Running. Calling it on a Running or Ended session restarts from a clean
// slate: all prior timer handles are invalidated first.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.CancelAll()
	s.epoch++
	epoch := s.epoch

	s.id = uuid.NewString()
	s.state = StateRunning
	s.clockMs = 0
	s.outcome = nil
	s.meters.reset()
	s.inbox.reset()
	s.generator.reset()
	s.alert.reset()
	s.agent.reset()
	s.notices.reset()

	s.emit(events.EventTypeSessionStarted, 0, nil)
	s.log.Event("SESSION_STARTED", s.id, "The inbox is open for business")

	// Session clock. Focus decay runs on its own handle at the same
	// granularity; the two ticks are independent registrations.
	s.sched.ScheduleRepeating(s.ms(s.cfg.ClockTickMs), s.guarded(epoch, s.onClockTick))
	s.sched.ScheduleRepeating(s.ms(s.cfg.ClockTickMs), s.guarded(epoch, s.meters.decayTick))

	// Opening burst, then the ratcheting generation cadence.
	for i := 0; i < s.cfg.BurstCount; i++ {
		s.sched.ScheduleOnce(s.ms(int64(i)*s.cfg.BurstStaggerMs), s.guarded(epoch, s.generator.generate))
	}
	s.armNextEmail(epoch)

	s.sched.ScheduleRepeating(s.ms(s.cfg.AlertPeriodMs), s.guarded(epoch, s.alert.maybeRaise))
	s.sched.ScheduleRepeating(s.ms(s.cfg.AgentPeriodMs), s.guarded(epoch, s.agent.tick))
}

// armNextEmail chains one-shot timers so cadence changes take effect on the
// very next generation instead of waiting out a fixed ticker period.
func (s *Session) armNextEmail(epoch uint64) {
	s.sched.ScheduleOnce(s.ms(s.generator.intervalMs), s.guarded(epoch, func() {
		s.generator.generate()
		s.armNextEmail(epoch)
	}))
}

// guarded wraps a timer callback with the session lock and the liveness
// guard: a callback from a previous epoch, or one that fires after the
// session ended, must cause no mutation at all.
func (s *Session) guarded(epoch uint64, fn func()) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch || s.state != StateRunning {
			return
		}
		fn()
	}
}

func (s *Session) ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// onClockTick advances the session clock, checks the autopilot prompt
// condition and terminates the session at the configured duration.
func (s *Session) onClockTick() {
	s.clockMs += s.cfg.ClockTickMs
	s.agent.maybePrompt()
	if s.clockMs >= s.cfg.SessionDurationMs {
		s.clockMs = s.cfg.SessionDurationMs
		s.end()
	}
}

// end freezes the session. Caller holds the lock.
func (s *Session) end() {
	s.state = StateEnded
	s.epoch++
	s.sched.CancelAll()

	o := rules.EvaluateOutcome(s.meters.score, s.meters.focus, s.inbox.processed, s.agent.mistakes)
	s.outcome = &o

	s.emit(events.EventTypeSessionEnded, 0, o)
	s.log.Event("SESSION_ENDED", s.id, "Grade: "+string(o.Grade))
}

// emit appends a session event stamped with the current clock.
func (s *Session) emit(t events.EventType, messageID int, payload interface{}) {
	s.evlog.Append(events.Event{
		ID:        events.GenerateEventID(),
		SessionID: s.id,
		Timestamp: time.Now(),
		ClockMs:   s.clockMs,
		Type:      t,
		MessageID: messageID,
		Payload:   payload,
	})
}

// running reports whether commands should act. Caller holds the lock.
func (s *Session) running() bool {
	return s.state == StateRunning
}

// ---- Player commands. Every command on a missing or deleted message id is a
// silent no-op: scheduled events race with player actions by design and the
// last valid mutation wins.

// SelectMessage marks a message read and applies the attention cost of
// context-switching to it.
func (s *Session) SelectMessage(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.selectMessage(id)
}

// ToggleStar flips the star on a message.
func (s *Session) ToggleStar(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.toggleStar(id)
}

// MoveMessage files a message into a folder. Moving to the current folder is
// an idempotent no-op, as is an invalid folder name.
func (s *Session) MoveMessage(id int, folder message.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.move(id, folder)
}

// DeleteMessage removes a message for good and cancels any point-drain tied
// to it.
func (s *Session) DeleteMessage(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.deleteByPlayer(id)
}

// OpenComposer charges the focus cost of opening a reply draft on a message.
func (s *Session) OpenComposer(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.openComposer(id)
}

// SaveDraft stashes pending reply text on a message.
func (s *Session) SaveDraft(id int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.saveDraft(id, text)
}

// SendReply sends a reply: tiered bonus and completion for critical messages,
// penalty and cadence ratchet for everything else. The message is removed
// either way.
func (s *Session) SendReply(id int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.inbox.sendReply(id, text)
}

// AcknowledgeAlert resolves the active priority alert. Acking while idle is a
// no-op.
func (s *Session) AcknowledgeAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.alert.acknowledge()
}

// SetAutopilotEnabled toggles the autopilot. Enabling it also settles any
// pending opt-in prompt.
func (s *Session) SetAutopilotEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.agent.setEnabled(enabled)
}

// DismissAutopilotPrompt declines the opt-in prompt. It never re-triggers
// within the session.
func (s *Session) DismissAutopilotPrompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() {
		return
	}
	s.agent.dismissPrompt()
}
