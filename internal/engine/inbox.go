package engine

import (
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/message"
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

// Inbox is the authoritative collection of message entities plus the
// per-message point-drain registry. Deletion is terminal removal: a deleted
// id silently no-ops every later operation that targets it.
type Inbox struct {
	s         *Session
	messages  map[int]*message.Message
	order     []int // Arrival order, for stable snapshots and uniform picks
	nextID    int
	processed int
	drains    map[int]Handle // id -> grace or active drain handle
}

// MovePayload records a folder change.
type MovePayload struct {
	From message.Folder `json:"from"`
	To   message.Folder `json:"to"`
}

// ReplyPayload records an outgoing reply and its scoring.
type ReplyPayload struct {
	Subject   string `json:"subject"`
	Critical  bool   `json:"critical"`
	Bonus     int    `json:"bonus"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

func newInbox(s *Session) *Inbox {
	return &Inbox{
		s:        s,
		messages: make(map[int]*message.Message),
		drains:   make(map[int]Handle),
	}
}

func (in *Inbox) reset() {
	in.messages = make(map[int]*message.Message)
	in.order = in.order[:0]
	in.nextID = 0
	in.processed = 0
	in.drains = make(map[int]Handle)
}

func (in *Inbox) allocateID() int {
	in.nextID++
	return in.nextID
}

func (in *Inbox) add(m *message.Message) {
	in.messages[m.ID] = m
	in.order = append(in.order, m.ID)
}

func (in *Inbox) get(id int) *message.Message {
	return in.messages[id]
}

// unreadInInbox returns live unread messages still sitting in the inbox
// folder, in arrival order. This is the autopilot's candidate pool.
func (in *Inbox) unreadInInbox() []*message.Message {
	var out []*message.Message
	for _, id := range in.order {
		m := in.messages[id]
		if m != nil && !m.Read && m.Folder == message.FolderInbox {
			out = append(out, m)
		}
	}
	return out
}

// snapshotMessages copies every live message in arrival order.
func (in *Inbox) snapshotMessages() []message.Message {
	out := make([]message.Message, 0, len(in.messages))
	for _, id := range in.order {
		if m := in.messages[id]; m != nil {
			out = append(out, *m)
		}
	}
	return out
}

// ---- Drain registry

// scheduleDrain arms the grace timer for a freshly arrived critical message.
// Always called under the lock, so the current epoch is the live one.
func (in *Inbox) scheduleDrain(id int) {
	epoch := in.s.epoch
	in.drains[id] = in.s.sched.ScheduleOnce(in.s.ms(in.s.cfg.DrainGraceMs), in.s.guarded(epoch, func() {
		in.startDrain(id)
	}))
}

// startDrain begins the 1-point-per-second bleed, unless the message was
// completed, trashed or deleted during the grace window.
func (in *Inbox) startDrain(id int) {
	epoch := in.s.epoch
	m := in.get(id)
	if m == nil || m.Completed || m.InTrash() {
		delete(in.drains, id)
		return
	}

	in.s.emit(events.EventTypeDrainStarted, id, nil)
	in.drains[id] = in.s.sched.ScheduleRepeating(in.s.ms(in.s.cfg.DrainPeriodMs), in.s.guarded(epoch, func() {
		in.drainTick(id)
	}))
}

// drainTick fires once per drain period. The guard at the top is the race
// policy from the concurrency model: whichever side observes completion or
// deletion first short-circuits.
func (in *Inbox) drainTick(id int) {
	m := in.get(id)
	if m == nil || m.Completed || m.InTrash() {
		in.cancelDrain(id)
		return
	}
	in.s.meters.addScore(-rules.ScorePenaltyDrainTick, "overdue critical", id)
	in.s.emit(events.EventTypeDrainTick, id, nil)
}

// cancelDrain stops any grace or active drain timer for the id. No late tick
// can fire afterwards: the handle is dead and the callback guard would bail
// on the missing registration anyway.
func (in *Inbox) cancelDrain(id int) {
	h, ok := in.drains[id]
	if !ok {
		return
	}
	in.s.sched.Cancel(h)
	delete(in.drains, id)
	in.s.emit(events.EventTypeDrainStopped, id, nil)
}

// ---- Operations. All of them no-op on unknown ids.

func (in *Inbox) selectMessage(id int) {
	m := in.get(id)
	if m == nil {
		return
	}
	if !m.Read {
		m.Read = true
		in.s.emit(events.EventTypeMessageRead, id, nil)
	}
	in.s.meters.spendFocus(rules.ActionFocusCost(rules.FocusCostSelect), "select")
}

func (in *Inbox) toggleStar(id int) {
	m := in.get(id)
	if m == nil {
		return
	}
	m.Starred = !m.Starred
	in.s.emit(events.EventTypeMessageStarred, id, m.Starred)
}

func (in *Inbox) move(id int, folder message.Folder) {
	m := in.get(id)
	if m == nil || !message.ValidFolder(folder) || m.Folder == folder {
		return
	}
	payload := MovePayload{From: m.Folder, To: folder}
	m.Folder = folder
	in.s.emit(events.EventTypeMessageMoved, id, payload)
}

func (in *Inbox) openComposer(id int) {
	if in.get(id) == nil {
		return
	}
	in.s.meters.spendFocus(rules.ActionFocusCost(rules.FocusCostCompose), "compose")
}

func (in *Inbox) saveDraft(id int, text string) {
	m := in.get(id)
	if m == nil {
		return
	}
	m.Draft = text
}

// deleteByPlayer is the player-command deletion: focus cost plus removal.
func (in *Inbox) deleteByPlayer(id int) {
	if in.get(id) == nil {
		return
	}
	in.s.meters.spendFocus(rules.ActionFocusCost(rules.FocusCostDelete), "delete")
	in.processed++
	in.remove(id, "player")
}

// removeByAgent is the autopilot's deletion path; focus is not charged.
func (in *Inbox) removeByAgent(id int, cause string) {
	if in.get(id) == nil {
		return
	}
	in.processed++
	in.remove(id, cause)
}

// sendReply scores the reply, completes critical messages and removes the
// message from the session.
func (in *Inbox) sendReply(id int, text string) {
	m := in.get(id)
	if m == nil {
		return
	}

	in.s.meters.spendFocus(rules.ActionFocusCost(rules.FocusCostReply), "reply")

	elapsed := in.s.clockMs - m.ReceivedAt
	payload := ReplyPayload{Subject: m.Subject, Critical: m.IsCritical(), ElapsedMs: elapsed}

	if m.IsCritical() {
		bonus := rules.ReplyBonus(elapsed)
		payload.Bonus = bonus
		m.Complete()
		in.s.meters.addScore(bonus, "critical reply", id)
	} else {
		// Answering noise invites more noise: penalty plus a permanently
		// tighter generation cadence.
		in.s.meters.addScore(-rules.ScorePenaltyOffTopicReply, "off-topic reply", id)
		in.s.generator.tighten()
	}

	_ = text // Reply body is not scored; it only matters to the player.

	in.s.emit(events.EventTypeReplySent, id, payload)
	in.processed++
	in.remove(id, "reply")
}

// remove is the single terminal-removal path. It cancels the drain, drops
// the entity and emits the deletion event. Ids are never reused.
func (in *Inbox) remove(id int, cause string) {
	m := in.get(id)
	if m == nil {
		return
	}
	in.cancelDrain(id)
	delete(in.messages, id)
	in.s.emit(events.EventTypeMessageDeleted, id, cause)
}
