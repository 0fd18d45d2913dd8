package dto

import (
	"time"

	"github.com/dalleni/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UserID           *string            `json:"userId"`
	ServiceType      domain.ServiceType `json:"serviceType"`
	IssueDescription string             `json:"issueDescription"`
	UserEmail        string             `json:"userEmail"`
	UserPhone        *string            `json:"userPhone"`
	NationalID       *string            `json:"nationalId"`
	Attachments      []string           `json:"attachments"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// GenerateSolutionRequest payload. The body is optional.
type GenerateSolutionRequest struct {
	Language string `json:"language"`
}

// AdminNotesRequest payload.
type AdminNotesRequest struct {
	AdminNotes *string `json:"adminNotes"`
}

// TicketResponse is the client view of a ticket.
type TicketResponse struct {
	ID               string                 `json:"id"`
	TicketNumber     string                 `json:"ticketNumber"`
	UserID           *string                `json:"userId"`
	ServiceType      domain.ServiceType     `json:"serviceType"`
	IssueDescription string                 `json:"issueDescription"`
	UserEmail        string                 `json:"userEmail"`
	UserPhone        *string                `json:"userPhone"`
	NationalID       *string                `json:"nationalId"`
	Attachments      []string               `json:"attachments"`
	Status           domain.TicketStatus    `json:"status"`
	AISolution       *domain.AISolution     `json:"aiSolution"`
	AdminNotes       *string                `json:"adminNotes"`
	Timeline         []domain.TimelineEntry `json:"timeline"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// TicketStatsResponse summarizes the queue.
type TicketStatsResponse struct {
	Total    int                         `json:"total"`
	ByStatus map[domain.TicketStatus]int `json:"byStatus"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	timeline := t.Timeline
	if timeline == nil {
		timeline = []domain.TimelineEntry{}
	}
	return TicketResponse{
		ID:               t.ID,
		TicketNumber:     t.TicketNumber,
		UserID:           t.UserID,
		ServiceType:      t.ServiceType,
		IssueDescription: t.IssueDescription,
		UserEmail:        t.UserEmail,
		UserPhone:        t.UserPhone,
		NationalID:       t.NationalID,
		Attachments:      attachments,
		Status:           t.Status,
		AISolution:       t.AISolution,
		AdminNotes:       t.AdminNotes,
		Timeline:         timeline,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
