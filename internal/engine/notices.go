package engine

import "github.com/google/uuid"

// NoticeKind labels a transient notification.
type NoticeKind string

const (
	NoticeScore   NoticeKind = "score"
	NoticeMistake NoticeKind = "mistake"
	NoticeArrival NoticeKind = "arrival"
)

// Notice is a fire-and-expire notification value. It is not persistent
// state: once its window passes it disappears from snapshots.
type Notice struct {
	ID          string     `json:"id"`
	Kind        NoticeKind `json:"kind"`
	Amount      int        `json:"amount,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	MessageID   int        `json:"message_id,omitempty"`
	ExpiresAtMs int64      `json:"expires_at_ms"`
}

// Noticeboard keeps the currently-live notices for snapshot consumers.
type Noticeboard struct {
	notices []Notice
}

func newNoticeboard() *Noticeboard {
	return &Noticeboard{}
}

func (b *Noticeboard) reset() {
	b.notices = b.notices[:0]
}

func (b *Noticeboard) post(n Notice) {
	n.ID = uuid.NewString()
	b.notices = append(b.notices, n)
}

// active prunes expired notices and returns the survivors.
func (b *Noticeboard) active(nowMs int64) []Notice {
	live := b.notices[:0]
	for _, n := range b.notices {
		if n.ExpiresAtMs > nowMs {
			live = append(live, n)
		}
	}
	b.notices = live

	out := make([]Notice, len(live))
	copy(out, live)
	return out
}
