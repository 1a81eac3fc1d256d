// Package message defines the core domain entity for inbox items.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package message

// Category classifies a message for triage purposes.
type Category string

const (
	CategoryCritical Category = "critical" // Demands a timed reply, subject to point-drain
	CategorySpam     Category = "spam"
	CategoryNormal   Category = "normal"
	CategoryCC       Category = "cc" // Folded into the normal pool at generation time
)

// Folder identifies where a message currently lives.
type Folder string

const (
	FolderInbox     Folder = "inbox"
	FolderImportant Folder = "important"
	FolderDrafts    Folder = "drafts"
	FolderTrash     Folder = "trash"
)

// Folders is the closed set of valid folders.
var Folders = []Folder{FolderInbox, FolderImportant, FolderDrafts, FolderTrash}

// ValidFolder reports whether f belongs to the closed folder set.
func ValidFolder(f Folder) bool {
	for _, known := range Folders {
		if f == known {
			return true
		}
	}
	return false
}

// Message represents the state of one inbox item for the session lifetime.
type Message struct {
	ID            int      `json:"id"` // Monotonically increasing, never reused in a session
	Sender        string   `json:"sender"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	Category      Category `json:"category"`
	RequiresReply bool     `json:"requires_reply"`
	Folder        Folder   `json:"folder"`
	Read          bool     `json:"read"`
	Starred       bool     `json:"starred"`
	Completed     bool     `json:"completed"`
	ReceivedAt    int64    `json:"received_at"` // Session clock ms at arrival
	Draft         string   `json:"draft,omitempty"`
}

// New creates a fresh message in the inbox, unread and unstarred.
func New(id int, sender, subject, body string, category Category, requiresReply bool, receivedAt int64) *Message {
	return &Message{
		ID:            id,
		Sender:        sender,
		Subject:       subject,
		Body:          body,
		Category:      category,
		RequiresReply: requiresReply,
		Folder:        FolderInbox,
		ReceivedAt:    receivedAt,
	}
}

// IsCritical reports whether the message belongs to the high-priority category.
func (m *Message) IsCritical() bool {
	return m.Category == CategoryCritical
}

// InTrash reports whether the message has been soft-filed to trash.
// Trashed messages are excluded from point-drain and autopilot consideration.
func (m *Message) InTrash() bool {
	return m.Folder == FolderTrash
}

// Complete flips the completed flag. The transition is one-way:
// a completed message can never become incomplete again.
func (m *Message) Complete() {
	m.Completed = true
}
