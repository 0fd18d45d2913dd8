package service

import (
	"context"
	"errors"
	"math/rand"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalleni/support-desk/internal/ai"
	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/events"
	"github.com/dalleni/support-desk/internal/observability"
	"github.com/dalleni/support-desk/internal/repository"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

const ticketNumberPrefix = "DLN-"

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	tickets         repository.TicketRepository
	generator       ai.Generator
	metrics         *observability.Metrics
	logger          *zap.Logger
	events          publisher
	now             Clock
	genTimeout      time.Duration
	defaultLanguage ai.Language
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo        repository.TicketRepository
	Generator         ai.Generator
	Dispatcher        events.Dispatcher
	Metrics           *observability.Metrics
	Logger            *zap.Logger
	Clock             Clock
	GenerationTimeout time.Duration
	DefaultLanguage   ai.Language
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	UserID           *string
	ServiceType      domain.ServiceType
	IssueDescription string
	UserEmail        string
	UserPhone        *string
	NationalID       *string
	Attachments      []string
}

// TicketListFilter narrows the admin listing.
type TicketListFilter struct {
	Status *domain.TicketStatus
	Search string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = systemClock
	}
	timeout := deps.GenerationTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &TicketService{
		tickets:         deps.TicketRepo,
		generator:       deps.Generator,
		metrics:         deps.Metrics,
		logger:          logger,
		events:          publisher{dispatcher: deps.Dispatcher, logger: logger, now: clock},
		now:             clock,
		genTimeout:      timeout,
		defaultLanguage: ai.ParseLanguage(string(deps.DefaultLanguage), ai.LanguageArabic),
	}
}

// CreateTicket validates input and persists a NEW ticket with its creation entry.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	description := strings.TrimSpace(input.IssueDescription)
	email := domain.NormalizeEmail(input.UserEmail)

	details := map[string]any{}
	if !input.ServiceType.Valid() {
		details["serviceType"] = "must be one of iqama, vehicle_transfer, vehicle_renewal, reports, appointments, baladi, traffic, other"
	}
	if description == "" {
		details["issueDescription"] = "is required"
	}
	if !validEmail(email) {
		details["userEmail"] = "must be a valid email address"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", details)
	}

	now := s.now()
	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	ticket := &domain.Ticket{
		ID:               uuid.NewString(),
		TicketNumber:     generateTicketNumber(now),
		UserID:           input.UserID,
		ServiceType:      input.ServiceType,
		IssueDescription: description,
		UserEmail:        email,
		UserPhone:        trimmedOrNil(input.UserPhone),
		NationalID:       trimmedOrNil(input.NationalID),
		Attachments:      attachments,
		Status:           domain.TicketStatusNew,
		Timeline:         []domain.TimelineEntry{domain.CreatedEntry(now)},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("create ticket failed", zap.String("ticket_number", ticket.TicketNumber), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("service_type", string(ticket.ServiceType)))
	s.events.publish(ctx, ticketEvent(events.EventTicketCreated, ticket, systemActor(),
		events.TicketCreatedPayload{ServiceType: ticket.ServiceType}))
	return ticket, nil
}

// UpdateStatus sets the status and appends its bilingual timeline entry.
// Any status may follow any other.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, actor string) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status": "must be one of NEW, IN_REVIEW, RESOLVED, REQUIRES_OFFICIAL_CONTACT",
		})
	}
	if strings.TrimSpace(actor) == "" {
		actor = domain.ActorAdmin
	}

	now := s.now()
	ticket, err := s.tickets.UpdateStatus(ctx, id, status, domain.StatusChangedEntry(status, actor, now), now)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": id})
	}

	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("status", string(status)),
		zap.String("actor", actor))
	s.events.publish(ctx, ticketEvent(events.EventTicketStatusChanged, ticket, staffActor(actor),
		events.TicketStatusChangedPayload{NewStatus: status}))
	return ticket, nil
}

// AttachAISolution replaces the solution and appends the analysis entry.
func (s *TicketService) AttachAISolution(ctx context.Context, id string, solution *domain.AISolution) (*domain.Ticket, error) {
	if solution == nil {
		return nil, apperrors.NewValidationError("invalid ai solution", map[string]any{"aiSolution": "is required"})
	}

	now := s.now()
	ticket, err := s.tickets.SetAISolution(ctx, id, solution, domain.AIAnalysisEntry(now), now)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": id})
	}

	s.events.publish(ctx, ticketEvent(events.EventTicketAISolutionAdded, ticket,
		events.Actor{Type: domain.SubjectTypeStaff, Name: domain.ActorAIAssistant},
		events.TicketAISolutionPayload{
			CanBeSolvedOnline: solution.CanBeSolvedOnline,
			RequiresBranch:    solution.RequiresBranch,
		}))
	return ticket, nil
}

// GenerateSolution asks the generator for a solution and attaches it. A failed
// or timed out generation leaves the ticket untouched.
func (s *TicketService) GenerateSolution(ctx context.Context, id, language string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": id})
	}
	if s.generator == nil {
		return nil, apperrors.NewGenerationError(ai.ErrNotConfigured)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	started := time.Now()
	solution, err := s.generator.Generate(genCtx, ai.Request{
		ServiceType:      ticket.ServiceType,
		IssueDescription: ticket.IssueDescription,
		Language:         ai.ParseLanguage(language, s.defaultLanguage),
	})
	s.metrics.RecordGeneration(string(ticket.ServiceType), err == nil, time.Since(started))
	if err != nil {
		fields := []zap.Field{zap.String("ticket_id", ticket.ID), zap.Error(err)}
		if errors.Is(err, context.DeadlineExceeded) {
			fields = append(fields, zap.Duration("timeout", s.genTimeout))
		}
		s.logger.Warn("ai solution generation failed", fields...)
		return nil, apperrors.NewGenerationError(err)
	}

	return s.AttachAISolution(ctx, id, solution)
}

// SetAdminNotes overwrites the internal notes. The timeline is not touched.
func (s *TicketService) SetAdminNotes(ctx context.Context, id, notes string) (*domain.Ticket, error) {
	ticket, err := s.tickets.SetAdminNotes(ctx, id, notes, s.now())
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": id})
	}
	s.events.publish(ctx, ticketEvent(events.EventTicketAdminNotesSet, ticket, staffActor(domain.ActorAdmin), nil))
	return ticket, nil
}

// DeleteTicket removes a ticket and its comments.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return storeError(err, "ticket", map[string]any{"id": id})
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", id))
	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Actor:    staffActor(domain.ActorAdmin),
	})
	return nil
}

// ListAll returns every ticket, newest first.
func (s *TicketService) ListAll(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": "unknown status"})
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		Status: filter.Status,
		Search: strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return tickets, nil
}

// ListByEmail returns the tickets filed under an email, newest first.
func (s *TicketService) ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": "is required"})
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Email: normalized})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return tickets, nil
}

// GetByNumber fetches a ticket by its public number.
func (s *TicketService) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticketNumber": number})
	}
	return ticket, nil
}

// GetByID fetches a ticket by id.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

// Stats counts tickets per status. Every status is present in the result.
func (s *TicketService) Stats(ctx context.Context) (*domain.TicketStats, error) {
	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	stats := &domain.TicketStats{ByStatus: make(map[domain.TicketStatus]int, len(domain.TicketStatuses))}
	for _, status := range domain.TicketStatuses {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

// generateTicketNumber formats DLN-<base36 millis>-<4 random base36 chars>.
func generateTicketNumber(now time.Time) string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return ticketNumberPrefix + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)) + "-" + string(suffix)
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domainPart := email[strings.LastIndex(email, "@")+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
