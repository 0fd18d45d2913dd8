package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dalleni/support-desk/internal/api/dto"
	"github.com/dalleni/support-desk/internal/auth"
	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/service"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

// CommentsHandler exposes the ticket comment thread.
type CommentsHandler struct {
	service      *service.CommentService
	requireStaff bool
}

// NewCommentsHandler constructs handler. With requireStaff set, only staff
// tokens may post admin comments.
func NewCommentsHandler(commentService *service.CommentService, requireStaff bool) *CommentsHandler {
	return &CommentsHandler{service: commentService, requireStaff: requireStaff}
}

// AddComment POST /api/tickets/:id/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.AddCommentInput{
		TicketID:       c.Params("id"),
		AuthorName:     req.AuthorName,
		Content:        req.Content,
		IsAdminComment: req.IsAdminComment,
	}
	principal, ok := auth.PrincipalFromContext(c)
	isStaff := ok && principal.SubjectType == domain.SubjectTypeStaff && principal.Staff != nil
	if req.IsAdminComment && h.requireStaff && !isStaff {
		return apperrors.NewForbidden("staff role required for admin comments")
	}
	if isStaff && req.IsAdminComment {
		input.AuthorID = &principal.Staff.ID
		if input.AuthorName == "" {
			input.AuthorName = principal.Staff.Name
		}
	}

	comment, err := h.service.AddComment(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// ListComments GET /api/tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.service.ListComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
