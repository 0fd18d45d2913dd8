package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dalleni/support-desk/internal/domain"
)

// TicketFilter captures list parameters. Zero values mean no restriction.
type TicketFilter struct {
	Email  string
	Status *domain.TicketStatus
	Search string
}

// TicketRepository encapsulates ticket persistence. Mutations affecting the timeline append atomically.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, entry domain.TimelineEntry, at time.Time) (*domain.Ticket, error)
	SetAISolution(ctx context.Context, id string, solution *domain.AISolution, entry domain.TimelineEntry, at time.Time) (*domain.Ticket, error)
	SetAdminNotes(ctx context.Context, id string, notes string, at time.Time) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, user_id, service_type, issue_description, user_email, user_phone,
               national_id, attachments, status, ai_solution, admin_notes, timeline, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	attachments, err := json.Marshal(nonNil(ticket.Attachments))
	if err != nil {
		return err
	}
	timeline, err := json.Marshal(ticket.Timeline)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO support_tickets (id, ticket_number, user_id, service_type, issue_description, user_email,
            user_phone, national_id, attachments, status, timeline, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb,$10,$11::jsonb,$12,$13)`
	_, err = r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.TicketNumber,
		ticket.UserID,
		ticket.ServiceType,
		ticket.IssueDescription,
		ticket.UserEmail,
		ticket.UserPhone,
		ticket.NationalID,
		string(attachments),
		ticket.Status,
		string(timeline),
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return translatePgError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translatePgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Email != "" {
		args = append(args, domain.NormalizeEmail(filter.Email))
		clauses = append(clauses, fmt.Sprintf("user_email=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(ticket_number) LIKE %s OR LOWER(issue_description) LIKE %s OR user_email LIKE %s)", p, p, p))
	}

	query := fmt.Sprintf(`SELECT %s FROM support_tickets WHERE %s ORDER BY created_at DESC, ticket_number DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM support_tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	for rows.Next() {
		var status domain.TicketStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, entry domain.TimelineEntry, at time.Time) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	appended, err := json.Marshal([]domain.TimelineEntry{entry})
	if err != nil {
		return nil, err
	}
	query := `
        UPDATE support_tickets SET status=$2, timeline = timeline || $3::jsonb, updated_at=$4
        WHERE id=$1 RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, id, status, string(appended), at)
}

func (r *ticketRepository) SetAISolution(ctx context.Context, id string, solution *domain.AISolution, entry domain.TimelineEntry, at time.Time) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	payload, err := json.Marshal(solution)
	if err != nil {
		return nil, err
	}
	appended, err := json.Marshal([]domain.TimelineEntry{entry})
	if err != nil {
		return nil, err
	}
	query := `
        UPDATE support_tickets SET ai_solution=$2::jsonb, timeline = timeline || $3::jsonb, updated_at=$4
        WHERE id=$1 RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, id, string(payload), string(appended), at)
}

func (r *ticketRepository) SetAdminNotes(ctx context.Context, id string, notes string, at time.Time) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `UPDATE support_tickets SET admin_notes=$2, updated_at=$3 WHERE id=$1 RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, id, notes, at)
}

// Delete removes the ticket; ticket_comments rows go with it through ON DELETE CASCADE.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM support_tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket      domain.Ticket
		attachments []byte
		solution    []byte
		timeline    []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.UserID,
		&ticket.ServiceType,
		&ticket.IssueDescription,
		&ticket.UserEmail,
		&ticket.UserPhone,
		&ticket.NationalID,
		&attachments,
		&ticket.Status,
		&solution,
		&ticket.AdminNotes,
		&timeline,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attachments, &ticket.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	if err := json.Unmarshal(timeline, &ticket.Timeline); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	if len(solution) > 0 {
		ticket.AISolution = &domain.AISolution{}
		if err := json.Unmarshal(solution, ticket.AISolution); err != nil {
			return nil, fmt.Errorf("decode ai_solution: %w", err)
		}
	}
	return &ticket, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
