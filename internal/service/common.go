package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/events"
	"github.com/dalleni/support-desk/internal/repository"
	apperrors "github.com/dalleni/support-desk/pkg/util"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// storeError maps repository errors onto domain errors for the given resource.
func storeError(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.NewPersistenceError(err)
}

type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func ticketEvent(eventType events.EventType, ticket *domain.Ticket, actor events.Actor, payload any) events.Event {
	return events.Event{
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		UserEmail:    ticket.UserEmail,
		Actor:        actor,
		Payload:      payload,
	}
}

func systemActor() events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, Name: domain.ActorSystem}
}

func staffActor(name string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, Name: name}
}

func userActor(name string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeUser, Name: name}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
