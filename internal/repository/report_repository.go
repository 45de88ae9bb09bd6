package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// ReportRepository serves aggregate queries and the report audit log.
type ReportRepository interface {
	ResolvedPerTechnician(ctx context.Context, resolvedStatusID int64) ([]domain.TechnicianResolvedCount, error)
	TicketsPerCategory(ctx context.Context) ([]domain.CategoryTicketCount, error)
	CreateReportLog(ctx context.Context, log *domain.ReportLog) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository builds repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) ResolvedPerTechnician(ctx context.Context, resolvedStatusID int64) ([]domain.TechnicianResolvedCount, error) {
	const query = `
        SELECT t.technician_id, u.first_name || ' ' || u.last_name, COUNT(t.ticket_id)
        FROM tickets t
        JOIN users u ON u.user_id = t.technician_id
        WHERE t.status_id=$1 AND t.technician_id IS NOT NULL
        GROUP BY t.technician_id, u.first_name, u.last_name
        ORDER BY COUNT(t.ticket_id) DESC, t.technician_id ASC`
	rows, err := r.pool.Query(ctx, query, resolvedStatusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TechnicianResolvedCount
	for rows.Next() {
		var row domain.TechnicianResolvedCount
		if err := rows.Scan(&row.TechnicianID, &row.TechnicianName, &row.ResolvedCount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TicketsPerCategory counts every ticket; uncategorized tickets land in
// their own bucket.
func (r *reportRepository) TicketsPerCategory(ctx context.Context) ([]domain.CategoryTicketCount, error) {
	const query = `
        SELECT t.category_id, COALESCE(c.category_name, 'Uncategorized'), COUNT(t.ticket_id)
        FROM tickets t
        LEFT JOIN categories c ON c.category_id = t.category_id
        GROUP BY t.category_id, c.category_name
        ORDER BY COUNT(t.ticket_id) DESC, COALESCE(c.category_name, 'Uncategorized') ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryTicketCount
	for rows.Next() {
		var row domain.CategoryTicketCount
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.TicketCount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepository) CreateReportLog(ctx context.Context, log *domain.ReportLog) error {
	const query = `
        INSERT INTO report_logs (manager_id, report_type)
        VALUES ($1,$2)
        RETURNING report_id, generated_at`
	return r.pool.QueryRow(ctx, query,
		log.ManagerID,
		log.ReportType,
	).Scan(&log.ID, &log.GeneratedAt)
}
