package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dalleni/support-desk/internal/config"
	"github.com/dalleni/support-desk/internal/events"
)

// NotificationService decides which lifecycle events warrant telling the citizen.
// Delivery is not implemented; decisions are logged.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// ShouldNotify reports whether the citizen should hear about event.
func (n *NotificationService) ShouldNotify(event events.Event) bool {
	switch event.Type {
	case events.EventTicketCreated:
		return true
	case events.EventTicketStatusChanged:
		return n.cfg.NotifyOnStatusChange
	case events.EventTicketAISolutionAdded:
		return n.cfg.NotifyOnAISolution
	case events.EventTicketCommentAdded:
		payload, ok := event.Payload.(events.TicketCommentAddedPayload)
		return ok && payload.IsAdminComment && n.cfg.NotifyOnAdminComment
	default:
		return false
	}
}

// Handle logs the notification decision for one event.
func (n *NotificationService) Handle(_ context.Context, event events.Event) error {
	if !n.ShouldNotify(event) {
		n.logger.Debug("notification skipped",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
		return nil
	}
	n.logger.Info("citizen notification due",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("ticket_number", event.TicketNumber),
		zap.Any("payload", event.Payload))
	return nil
}
