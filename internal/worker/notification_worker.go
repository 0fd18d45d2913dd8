package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dalleni/support-desk/internal/events"
)

// EventHandler processes one event off the queue.
type EventHandler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification decisions off the request path.
type NotificationWorker struct {
	handler EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(handler EventHandler, logger *zap.Logger, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, buffer),
	}
}

// Subscribe registers the worker for the given event types.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher, types ...events.EventType) {
	if dispatcher == nil {
		return
	}
	for _, t := range types {
		dispatcher.Subscribe(t, w.enqueue)
	}
}

// enqueue drops the event when the queue is full or the worker has stopped.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

// Start runs the consumer until Stop is called.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			if err := w.handler.Handle(ctx, event); err != nil {
				w.logger.Warn("notification handler failed",
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for queued events to drain.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
