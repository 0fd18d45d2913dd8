package service

import (
	"context"
	"strings"
	"time"

	"github.com/dalleni/support-desk/internal/auth"
	"github.com/dalleni/support-desk/internal/config"
	"github.com/dalleni/support-desk/internal/domain"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

const adminStaffID = "admin"

// AuthService signs in the configured admin.
type AuthService struct {
	admin    *domain.StaffMember
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service. Without an admin email and password hash, login is disabled.
func NewAuthService(cfg config.AuthConfig, tokens *auth.TokenManager) *AuthService {
	s := &AuthService{tokenMgr: tokens}
	if cfg.AdminEmail != "" && cfg.AdminPasswordHash != "" {
		s.admin = &domain.StaffMember{
			ID:           adminStaffID,
			Name:         cfg.AdminName,
			Email:        domain.NormalizeEmail(cfg.AdminEmail),
			Role:         domain.StaffRoleAdmin,
			PasswordHash: cfg.AdminPasswordHash,
		}
	}
	return s
}

// LoginStaff authenticates staff and returns a token.
func (s *AuthService) LoginStaff(_ context.Context, email, password string) (*domain.StaffMember, string, time.Time, error) {
	if s.admin == nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("staff login is not configured")
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid credentials", map[string]any{
			"email":    "is required",
			"password": "is required",
		})
	}
	if domain.NormalizeEmail(email) != s.admin.Email {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(s.admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(s.admin)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	staff := *s.admin
	staff.PasswordHash = ""
	return &staff, token, exp, nil
}
