package domain

import "time"

// TicketComment is a conversation entry on a ticket, separate from the timeline.
type TicketComment struct {
	ID             string
	TicketID       string
	AuthorID       *string
	AuthorName     string
	Content        string
	IsAdminComment bool
	CreatedAt      time.Time
}

// DefaultAuthorName is the role label used when the caller gave no name.
func DefaultAuthorName(isAdmin bool) string {
	if isAdmin {
		return ActorAdmin
	}
	return ActorUser
}
