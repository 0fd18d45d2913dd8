package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/events"
	"github.com/dalleni/support-desk/internal/repository"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

// CommentService manages the conversation thread on tickets.
type CommentService struct {
	tickets  repository.TicketRepository
	comments repository.TicketCommentRepository
	logger   *zap.Logger
	events   publisher
	now      Clock
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       Clock
}

// AddCommentInput describes a new comment.
type AddCommentInput struct {
	TicketID       string
	AuthorID       *string
	AuthorName     string
	Content        string
	IsAdminComment bool
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = systemClock
	}
	return &CommentService{
		tickets:  deps.TicketRepo,
		comments: deps.CommentRepo,
		logger:   logger,
		events:   publisher{dispatcher: deps.Dispatcher, logger: logger, now: clock},
		now:      clock,
	}
}

// AddComment appends a comment. The ticket's timeline and updatedAt stay as they were.
func (s *CommentService) AddComment(ctx context.Context, input AddCommentInput) (*domain.TicketComment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("invalid comment", map[string]any{"content": "is required"})
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": input.TicketID})
	}

	authorName := strings.TrimSpace(input.AuthorName)
	if authorName == "" {
		authorName = domain.DefaultAuthorName(input.IsAdminComment)
	}

	comment := &domain.TicketComment{
		ID:             uuid.NewString(),
		TicketID:       ticket.ID,
		AuthorID:       input.AuthorID,
		AuthorName:     authorName,
		Content:        content,
		IsAdminComment: input.IsAdminComment,
		CreatedAt:      s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": input.TicketID})
	}

	actor := userActor(authorName)
	if input.IsAdminComment {
		actor = staffActor(authorName)
	}
	s.events.publish(ctx, ticketEvent(events.EventTicketCommentAdded, ticket, actor, events.TicketCommentAddedPayload{
		CommentID:      comment.ID,
		AuthorName:     authorName,
		IsAdminComment: comment.IsAdminComment,
		BodyPreview:    stringPreview(content, 120),
	}))
	return comment, nil
}

// ListComments returns the thread oldest first. Unknown tickets have no comments.
func (s *CommentService) ListComments(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if comments == nil {
		comments = []domain.TicketComment{}
	}
	return comments, nil
}
