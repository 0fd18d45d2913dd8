package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dalleni/support-desk/internal/domain"
)

// TicketCommentRepository manages ticket conversation threads.
type TicketCommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error)
}

type ticketCommentRepository struct {
	pool *pgxpool.Pool
}

// NewTicketCommentRepository builds repository.
func NewTicketCommentRepository(pool *pgxpool.Pool) TicketCommentRepository {
	return &ticketCommentRepository{pool: pool}
}

func (r *ticketCommentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	if !validID(comment.TicketID) {
		return ErrNotFound
	}
	const query = `
        INSERT INTO ticket_comments (id, ticket_id, author_id, author_name, content, is_admin_comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.AuthorID,
		comment.AuthorName,
		comment.Content,
		comment.IsAdminComment,
		comment.CreatedAt,
	)
	return translatePgError(err)
}

func (r *ticketCommentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	result := []domain.TicketComment{}
	if !validID(ticketID) {
		return result, nil
	}
	const query = `
        SELECT id, ticket_id, author_id, author_name, content, is_admin_comment, created_at
        FROM ticket_comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var comment domain.TicketComment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Content,
			&comment.IsAdminComment,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
