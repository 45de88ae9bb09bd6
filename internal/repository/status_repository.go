package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// StatusRepository reads the ticket_status reference table.
type StatusRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Status, error)
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository builds the repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*domain.Status, error) {
	const query = `
        SELECT status_id, status_name, COALESCE(description, '')
        FROM ticket_status WHERE status_name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	const query = `
        SELECT status_id, status_name, COALESCE(description, '')
        FROM ticket_status WHERE status_id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *statusRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Status, error) {
	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&status.ID,
		&status.Name,
		&status.Description,
	); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	const query = `
        SELECT status_id, status_name, COALESCE(description, '')
        FROM ticket_status ORDER BY status_id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(&status.ID, &status.Name, &status.Description); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}
