package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// CommentRepository manages append-only ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, user_id, comment_text)
        VALUES ($1,$2,$3)
        RETURNING comment_id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
}

// ListByTicket returns comments oldest first; the id tiebreak keeps
// insertion order for identical timestamps.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT cm.comment_id, cm.ticket_id, cm.user_id, cm.comment_text, cm.created_at,
               u.first_name, u.last_name
        FROM comments cm
        JOIN users u ON u.user_id = cm.user_id
        WHERE cm.ticket_id=$1
        ORDER BY cm.created_at ASC, cm.comment_id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.UserID,
			&comment.Text,
			&comment.CreatedAt,
			&comment.AuthorFirstName,
			&comment.AuthorLastName,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
