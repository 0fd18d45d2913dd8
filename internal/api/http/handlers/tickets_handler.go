package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dalleni/support-desk/internal/api/dto"
	"github.com/dalleni/support-desk/internal/auth"
	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/service"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

// TicketsHandler exposes ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		UserID:           req.UserID,
		ServiceType:      req.ServiceType,
		IssueDescription: req.IssueDescription,
		UserEmail:        req.UserEmail,
		UserPhone:        req.UserPhone,
		NationalID:       req.NationalID,
		Attachments:      req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{Search: c.Query("search")}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.TicketStatus(strings.ToUpper(raw))
		filter.Status = &status
	}

	tickets, err := h.service.ListAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketStatsResponse{Total: stats.Total, ByStatus: stats.ByStatus}})
}

// ListByEmail GET /api/tickets/user/:email.
func (h *TicketsHandler) ListByEmail(c *fiber.Ctx) error {
	tickets, err := h.service.ListByEmail(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// GetByNumber GET /api/tickets/:ticketNumber.
func (h *TicketsHandler) GetByNumber(c *fiber.Ctx) error {
	ticket, err := h.service.GetByNumber(c.UserContext(), c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetByID GET /api/tickets/id/:id.
func (h *TicketsHandler) GetByID(c *fiber.Ctx) error {
	ticket, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateStatus PUT /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, auth.ActorName(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GenerateSolution PUT /api/tickets/:id/ai-solution.
func (h *TicketsHandler) GenerateSolution(c *fiber.Ctx) error {
	var req dto.GenerateSolutionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	ticket, err := h.service.GenerateSolution(c.UserContext(), c.Params("id"), req.Language)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// SetAdminNotes PUT /api/tickets/:id/admin-notes.
func (h *TicketsHandler) SetAdminNotes(c *fiber.Ctx) error {
	var req dto.AdminNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AdminNotes == nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"adminNotes": "is required"})
	}

	ticket, err := h.service.SetAdminNotes(c.UserContext(), c.Params("id"), *req.AdminNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
