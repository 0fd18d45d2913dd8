package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalleni/support-desk/internal/domain"
)

// MemoryStore keeps tickets and comments in process. One mutex serializes every
// read-modify-write so timeline appends are atomic, matching the Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	tickets  map[string]*domain.Ticket
	numbers  map[string]string
	comments map[string][]domain.TicketComment
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:  make(map[string]*domain.Ticket),
		numbers:  make(map[string]string),
		comments: make(map[string][]domain.TicketComment),
	}
}

// Tickets returns the ticket view of the store.
func (s *MemoryStore) Tickets() TicketRepository {
	return memoryTickets{s}
}

// Comments returns the comment view of the store.
func (s *MemoryStore) Comments() TicketCommentRepository {
	return memoryComments{s}
}

type memoryTickets struct{ s *MemoryStore }

func (m memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.tickets[ticket.ID]; exists {
		return ErrConflict
	}
	if _, exists := m.s.numbers[ticket.TicketNumber]; exists {
		return ErrConflict
	}
	m.s.tickets[ticket.ID] = ticket.Clone()
	m.s.numbers[ticket.TicketNumber] = ticket.ID
	return nil
}

func (m memoryTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	ticket, ok := m.s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

func (m memoryTickets) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	m.s.mu.RLock()
	id, ok := m.s.numbers[number]
	m.s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m memoryTickets) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	email := domain.NormalizeEmail(filter.Email)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	m.s.mu.RLock()
	result := make([]domain.Ticket, 0, len(m.s.tickets))
	for _, ticket := range m.s.tickets {
		if email != "" && ticket.UserEmail != email {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if search != "" && !matchesSearch(ticket, search) {
			continue
		}
		result = append(result, *ticket.Clone())
	}
	m.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].TicketNumber > result[j].TicketNumber
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func matchesSearch(ticket *domain.Ticket, search string) bool {
	return strings.Contains(strings.ToLower(ticket.TicketNumber), search) ||
		strings.Contains(strings.ToLower(ticket.IssueDescription), search) ||
		strings.Contains(ticket.UserEmail, search)
}

func (m memoryTickets) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	counts := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	for _, ticket := range m.s.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func (m memoryTickets) mutate(id string, fn func(*domain.Ticket)) (*domain.Ticket, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ticket, ok := m.s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(ticket)
	return ticket.Clone(), nil
}

func (m memoryTickets) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, entry domain.TimelineEntry, at time.Time) (*domain.Ticket, error) {
	return m.mutate(id, func(t *domain.Ticket) {
		t.Status = status
		t.Timeline = append(t.Timeline, entry)
		t.UpdatedAt = at
	})
}

func (m memoryTickets) SetAISolution(_ context.Context, id string, solution *domain.AISolution, entry domain.TimelineEntry, at time.Time) (*domain.Ticket, error) {
	return m.mutate(id, func(t *domain.Ticket) {
		t.AISolution = solution.Clone()
		t.Timeline = append(t.Timeline, entry)
		t.UpdatedAt = at
	})
}

func (m memoryTickets) SetAdminNotes(_ context.Context, id string, notes string, at time.Time) (*domain.Ticket, error) {
	return m.mutate(id, func(t *domain.Ticket) {
		t.AdminNotes = &notes
		t.UpdatedAt = at
	})
}

func (m memoryTickets) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ticket, ok := m.s.tickets[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.s.numbers, ticket.TicketNumber)
	delete(m.s.tickets, id)
	delete(m.s.comments, id)
	return nil
}

type memoryComments struct{ s *MemoryStore }

func (m memoryComments) Create(_ context.Context, comment *domain.TicketComment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.tickets[comment.TicketID]; !ok {
		return ErrNotFound
	}
	m.s.comments[comment.TicketID] = append(m.s.comments[comment.TicketID], *comment)
	return nil
}

func (m memoryComments) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	m.s.mu.RLock()
	result := append([]domain.TicketComment{}, m.s.comments[ticketID]...)
	m.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
