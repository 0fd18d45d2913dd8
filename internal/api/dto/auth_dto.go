package dto

import (
	"time"

	"github.com/dalleni/support-desk/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffProfile is the public view of a staff member.
type StaffProfile struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Role  domain.StaffRole `json:"role"`
}

// StaffLoginResponse carries the issued token.
type StaffLoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	Staff       StaffProfile `json:"staff"`
}
