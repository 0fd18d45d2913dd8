package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew                     TicketStatus = "NEW"
	TicketStatusInReview                TicketStatus = "IN_REVIEW"
	TicketStatusResolved                TicketStatus = "RESOLVED"
	TicketStatusRequiresOfficialContact TicketStatus = "REQUIRES_OFFICIAL_CONTACT"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInReview,
	TicketStatusResolved,
	TicketStatusRequiresOfficialContact,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ServiceType identifies the government service a ticket concerns.
type ServiceType string

const (
	ServiceIqama           ServiceType = "iqama"
	ServiceVehicleTransfer ServiceType = "vehicle_transfer"
	ServiceVehicleRenewal  ServiceType = "vehicle_renewal"
	ServiceReports         ServiceType = "reports"
	ServiceAppointments    ServiceType = "appointments"
	ServiceBaladi          ServiceType = "baladi"
	ServiceTraffic         ServiceType = "traffic"
	ServiceOther           ServiceType = "other"
)

// ServiceTypes lists every supported service type.
var ServiceTypes = []ServiceType{
	ServiceIqama,
	ServiceVehicleTransfer,
	ServiceVehicleRenewal,
	ServiceReports,
	ServiceAppointments,
	ServiceBaladi,
	ServiceTraffic,
	ServiceOther,
}

// Valid reports whether s is a known service type.
func (s ServiceType) Valid() bool {
	for _, candidate := range ServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for citizen support requests.
type Ticket struct {
	ID               string
	TicketNumber     string
	UserID           *string
	ServiceType      ServiceType
	IssueDescription string
	UserEmail        string
	UserPhone        *string
	NationalID       *string
	Attachments      []string
	Status           TicketStatus
	AISolution       *AISolution
	AdminNotes       *string
	Timeline         []TimelineEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Attachments = append([]string(nil), t.Attachments...)
	cp.Timeline = append([]TimelineEntry(nil), t.Timeline...)
	if t.AISolution != nil {
		cp.AISolution = t.AISolution.Clone()
	}
	if t.AdminNotes != nil {
		notes := *t.AdminNotes
		cp.AdminNotes = &notes
	}
	return &cp
}

// TicketStats counts tickets per status.
type TicketStats struct {
	Total    int
	ByStatus map[TicketStatus]int
}
