package domain

import "time"

// Fixed actor labels written into the timeline.
const (
	ActorSystem      = "System"
	ActorAIAssistant = "AI Assistant"
	ActorAdmin       = "Admin"
	ActorUser        = "User"
)

// TimelineEntry is one immutable audit record on a ticket.
type TimelineEntry struct {
	Action    string    `json:"action"`
	ActionAr  string    `json:"actionAr"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
}

// BilingualLabel holds the English and Arabic text of a timeline action.
type BilingualLabel struct {
	En string
	Ar string
}

var (
	createdLabel    = BilingualLabel{En: "Ticket created", Ar: "تم إنشاء التذكرة"}
	aiAnalysisLabel = BilingualLabel{En: "AI analysis completed", Ar: "تم اكتمال التحليل الذكي"}
)

// statusLabels must hold an entry for every TicketStatus.
var statusLabels = map[TicketStatus]BilingualLabel{
	TicketStatusNew:                     {En: "Status changed to New", Ar: "تم تغيير الحالة إلى جديد"},
	TicketStatusInReview:                {En: "Status changed to In Review", Ar: "تم تغيير الحالة إلى قيد المراجعة"},
	TicketStatusResolved:                {En: "Status changed to Resolved", Ar: "تم تغيير الحالة إلى تم الحل"},
	TicketStatusRequiresOfficialContact: {En: "Status changed to Requires Official Contact", Ar: "تم تغيير الحالة إلى يتطلب التواصل الرسمي"},
}

// StatusLabel returns the timeline label for a status change.
func StatusLabel(status TicketStatus) (BilingualLabel, bool) {
	label, ok := statusLabels[status]
	return label, ok
}

func newEntry(label BilingualLabel, actor string, at time.Time) TimelineEntry {
	return TimelineEntry{Action: label.En, ActionAr: label.Ar, Timestamp: at.UTC(), Actor: actor}
}

// CreatedEntry is the first entry of every ticket.
func CreatedEntry(at time.Time) TimelineEntry {
	return newEntry(createdLabel, ActorSystem, at)
}

// StatusChangedEntry records a transition to status by actor.
func StatusChangedEntry(status TicketStatus, actor string, at time.Time) TimelineEntry {
	return newEntry(statusLabels[status], actor, at)
}

// AIAnalysisEntry records an attached AI solution.
func AIAnalysisEntry(at time.Time) TimelineEntry {
	return newEntry(aiAnalysisLabel, ActorAIAssistant, at)
}
