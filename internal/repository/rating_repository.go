package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// RatingRepository manages the one-per-ticket satisfaction rating.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *domain.Rating) error
	GetByTicket(ctx context.Context, ticketID int64) (*domain.Rating, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository builds repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

// Upsert relies on the unique constraint on ticket_id so a re-rating
// overwrites in place without a read-modify-write race.
func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	const query = `
        INSERT INTO ratings (ticket_id, rating_value, feedback)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id) DO UPDATE SET rating_value=EXCLUDED.rating_value, feedback=EXCLUDED.feedback
        RETURNING rating_id, created_at`
	return r.pool.QueryRow(ctx, query,
		rating.TicketID,
		rating.Value,
		rating.Feedback,
	).Scan(&rating.ID, &rating.CreatedAt)
}

// GetByTicket returns nil without error when no rating exists yet.
func (r *ratingRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.Rating, error) {
	const query = `
        SELECT rating_id, ticket_id, rating_value, feedback, created_at
        FROM ratings WHERE ticket_id=$1`
	var rating domain.Rating
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&rating.ID,
		&rating.TicketID,
		&rating.Value,
		&rating.Feedback,
		&rating.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}
