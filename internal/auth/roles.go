package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dalleni/support-desk/internal/domain"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

// RequireStaffRole ensures the staff principal has one of the allowed roles.
// When enforce is false the gate is open.
func RequireStaffRole(enforce bool, allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if !enforce {
			return c.Next()
		}
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("staff token required")
		}
		if principal.SubjectType != domain.SubjectTypeStaff || principal.Staff == nil {
			return apperrors.NewForbidden("staff role required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Staff.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
