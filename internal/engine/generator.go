package engine

import (
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/message"
	"github.com/MTorresVidal/InboxOverload/server/internal/domain/rules"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
)

// followUpPrefix marks a critical template re-sent while every original is
// still sitting unread in the inbox.
const followUpPrefix = "Follow-up: "

// template is one synthetic email blueprint.
type template struct {
	sender        string
	subject       string
	body          string
	category      message.Category
	requiresReply bool
}

var criticalTemplates = []template{
	{
		sender:        "sarah.chen@company.com",
		subject:       "Project Update - Urgent",
		body:          "The quarterly report shows unusual patterns in department spending. I think you should look into this before the board meeting.",
		category:      message.CategoryCritical,
		requiresReply: true,
	},
	{
		sender:        "ceo@company.com",
		subject:       "Board Meeting Tomorrow",
		body:          "I need your assessment of the situation by end of day. The board is asking tough questions and I need to know where you stand.",
		category:      message.CategoryCritical,
		requiresReply: true,
	},
	{
		sender:        "hr@company.com",
		subject:       "Confidential: Employee Investigation",
		body:          "We've received anonymous reports about policy violations. Please review the attached guidelines and report any knowledge you have.",
		category:      message.CategoryCritical,
		requiresReply: true,
	},
	{
		sender:        "alex.kim@company.com",
		subject:       "Let's talk",
		body:          "Can we meet privately? I have information about what's really happening with the budget issues. I'm worried about retaliation.",
		category:      message.CategoryCritical,
		requiresReply: true,
	},
	{
		sender:   "legal@company.com",
		subject:  "Compliance deadline today",
		body:     "The regulatory filing window closes at 5 PM. Flagging this so it does not get buried.",
		category: message.CategoryCritical,
	},
}

var spamTemplates = []template{
	{
		sender:   "deals@superoffers.biz",
		subject:  "You've been SELECTED for exclusive savings!!!",
		body:     "Click now to claim your limited-time reward. This offer expires in minutes.",
		category: message.CategorySpam,
	},
	{
		sender:   "newsletter@techdigest.io",
		subject:  "10 productivity hacks you're ignoring",
		body:     "Our experts ranked the email habits of top performers. Number 7 will surprise you.",
		category: message.CategorySpam,
	},
	{
		sender:   "no-reply@webinarworld.com",
		subject:  "Last chance: free leadership webinar",
		body:     "Seats are filling fast for tomorrow's session on synergizing cross-functional alignment.",
		category: message.CategorySpam,
	},
	{
		sender:   "prince.advisor@intl-funds.net",
		subject:  "Urgent business proposal",
		body:     "I require a trustworthy partner for a confidential transfer of considerable value.",
		category: message.CategorySpam,
	},
}

var normalTemplates = []template{
	{
		sender:   "mike.torres@company.com",
		subject:  "Re: Budget Concerns",
		body:     "I've noticed the same thing Sarah mentioned. The numbers don't add up in the marketing department's expenses.",
		category: message.CategoryNormal,
	},
	{
		sender:   "facilities@company.com",
		subject:  "Parking garage maintenance",
		body:     "Level 2 of the garage will be closed Thursday for resurfacing. Please use street parking.",
		category: message.CategoryNormal,
	},
	{
		sender:   "team-events@company.com",
		subject:  "Quarterly offsite planning",
		body:     "Vote for your preferred venue by Friday. Current leader: the bowling alley, again.",
		category: message.CategoryNormal,
	},
	{
		sender:   "it-helpdesk@company.com",
		subject:  "Scheduled system maintenance",
		body:     "Email services will be briefly unavailable Saturday night during the upgrade window.",
		category: message.CategoryNormal,
	},
	// CC traffic rides in the normal pool; the category survives on the
	// message for display purposes.
	{
		sender:   "jordan.liu@company.com",
		subject:  "FYI: vendor contract renewal",
		body:     "Looping you in on the renewal thread. No action needed from your side.",
		category: message.CategoryCC,
	},
	{
		sender:   "dana.wright@company.com",
		subject:  "FYI: updated org chart",
		body:     "Copying you on the latest reporting structure ahead of Monday's announcement.",
		category: message.CategoryCC,
	},
}

// Generator produces synthetic inbox items from weighted categories and owns
// the mutable generation cadence.
type Generator struct {
	s          *Session
	intervalMs int64
}

func newGenerator(s *Session) *Generator {
	return &Generator{s: s, intervalMs: s.cfg.EmailIntervalMs}
}

func (g *Generator) reset() {
	g.intervalMs = g.s.cfg.EmailIntervalMs
}

// generate creates one message: independent category draw against the fixed
// cumulative weights (critical 30%, spam 30%, normal 40%), uniform template
// within the category.
func (g *Generator) generate() {
	var tpl template
	followUp := false

	switch draw := g.s.rng.Float64(); {
	case draw < 0.3:
		tpl, followUp = g.pickCritical()
	case draw < 0.6:
		tpl = spamTemplates[g.s.rng.Intn(len(spamTemplates))]
	default:
		tpl = normalTemplates[g.s.rng.Intn(len(normalTemplates))]
	}

	subject := tpl.subject
	if followUp {
		subject = followUpPrefix + subject
	}

	id := g.s.inbox.allocateID()
	m := message.New(id, tpl.sender, subject, tpl.body, tpl.category, tpl.requiresReply, g.s.clockMs)
	g.s.inbox.add(m)

	g.s.emit(events.EventTypeMessageArrived, id, *m)
	g.s.notices.post(Notice{
		Kind:        NoticeArrival,
		Subject:     m.Subject,
		MessageID:   id,
		ExpiresAtMs: g.s.clockMs + g.s.cfg.NoticeArrivalMs,
	})

	if m.IsCritical() {
		g.s.inbox.scheduleDrain(id)
	}
}

// pickCritical chooses a critical template. When every critical template is
// already represented by an unread copy in the inbox, the pick becomes a
// follow-up with a marked subject instead of a plain duplicate.
func (g *Generator) pickCritical() (template, bool) {
	tpl := criticalTemplates[g.s.rng.Intn(len(criticalTemplates))]
	return tpl, g.allCriticalUnread()
}

// allCriticalUnread reports whether each critical template has an unread,
// non-follow-up copy sitting in the inbox folder.
func (g *Generator) allCriticalUnread() bool {
	for _, tpl := range criticalTemplates {
		found := false
		for _, m := range g.s.inbox.unreadInInbox() {
			if m.IsCritical() && m.Subject == tpl.subject {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// tighten applies the one-way cadence ratchet. The next scheduled generation
// already uses the shorter interval.
func (g *Generator) tighten() {
	next := rules.NextEmailInterval(g.intervalMs)
	if next == g.intervalMs {
		return
	}
	g.intervalMs = next
	g.s.emit(events.EventTypeCadenceTightened, 0, next)
}
