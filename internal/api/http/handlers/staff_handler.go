package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dalleni/support-desk/internal/api/dto"
	"github.com/dalleni/support-desk/internal/service"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

// StaffHandler exposes staff auth endpoints.
type StaffHandler struct {
	authService *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService) *StaffHandler {
	return &StaffHandler{authService: authService}
}

// Login handles POST /api/auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, token, exp, err := h.authService.LoginStaff(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.StaffLoginResponse{
			AccessToken: token,
			ExpiresAt:   exp,
			Staff: dto.StaffProfile{
				ID:    staff.ID,
				Name:  staff.Name,
				Email: staff.Email,
				Role:  staff.Role,
			},
		},
	})
}
