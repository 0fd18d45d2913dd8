package dto

import (
	"time"

	"github.com/dalleni/support-desk/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content        string `json:"content"`
	AuthorName     string `json:"authorName"`
	IsAdminComment bool   `json:"isAdminComment"`
}

// CommentResponse is the client view of a comment.
type CommentResponse struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticketId"`
	AuthorID       *string   `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	Content        string    `json:"content"`
	IsAdminComment bool      `json:"isAdminComment"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		TicketID:       c.TicketID,
		AuthorID:       c.AuthorID,
		AuthorName:     c.AuthorName,
		Content:        c.Content,
		IsAdminComment: c.IsAdminComment,
		CreatedAt:      c.CreatedAt,
	}
}
