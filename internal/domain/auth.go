package domain

// SubjectType differentiates citizen vs staff tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeStaff SubjectType = "STAFF"
)

// StaffRole enumerates staff permissions.
type StaffRole string

const (
	StaffRoleAdmin StaffRole = "ADMIN"
	StaffRoleAgent StaffRole = "AGENT"
)

// StaffMember is the configured staff identity allowed to sign in.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	Role         StaffRole
	PasswordHash string
}
