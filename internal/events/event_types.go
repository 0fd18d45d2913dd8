package events

import (
	"time"

	"github.com/dalleni/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketAISolutionAdded EventType = "ticket_ai_solution_attached"
	EventTicketAdminNotesSet   EventType = "ticket_admin_notes_updated"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventTicketDeleted         EventType = "ticket_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	Name    string             `json:"name"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	UserEmail    string      `json:"user_email"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ServiceType domain.ServiceType `json:"service_type"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAISolutionPayload payload.
type TicketAISolutionPayload struct {
	CanBeSolvedOnline bool `json:"can_be_solved_online"`
	RequiresBranch    bool `json:"requires_branch"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	AuthorName     string `json:"author_name"`
	IsAdminComment bool   `json:"is_admin_comment"`
	BodyPreview    string `json:"body_preview"`
}
