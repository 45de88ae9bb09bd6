package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// Sort keys accepted by ListWithFilter.
const (
	SortCreatedDesc = "created_desc"
	SortCreatedAsc  = "created_asc"
	SortStatus      = "status"
	SortCategory    = "category"
)

// TicketFilter captures dashboard search parameters. Scope fields
// (requester, technician, unassigned) are set by the service according
// to the caller's role, never from request input.
type TicketFilter struct {
	RequesterID  *int64
	TechnicianID *int64
	Unassigned   bool
	StatusID     *int64
	Keyword      *string
	CategoryID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Sort         string
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence. Reads return tickets
// with status, category and participant names eagerly joined.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID, statusID int64) error
	Assign(ctx context.Context, ticketID, technicianID, fromStatusID, toStatusID int64) error
	CountWithFilter(ctx context.Context, filter TicketFilter) (int, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        t.ticket_id, t.title, t.description, t.location, t.category_id, t.status_id,
        t.requester_id, t.technician_id, t.created_at, t.updated_at,
        s.status_name, c.category_name, ru.first_name, ru.last_name, tu.first_name, tu.last_name`

const ticketJoins = `
        FROM tickets t
        JOIN ticket_status s ON s.status_id = t.status_id
        LEFT JOIN categories c ON c.category_id = t.category_id
        JOIN users ru ON ru.user_id = t.requester_id
        LEFT JOIN users tu ON tu.user_id = t.technician_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, location, category_id, status_id, requester_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING ticket_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Location,
		ticket.CategoryID,
		ticket.StatusID,
		ticket.RequesterID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + ` WHERE t.ticket_id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID, statusID int64) error {
	const query = `
        UPDATE tickets SET status_id=$1, updated_at=NOW()
        WHERE ticket_id=$2`
	cmd, err := r.pool.Exec(ctx, query, statusID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Assign sets the technician and bumps the status in one statement so the
// read-modify-write on status cannot race: the bump applies only when the
// row still holds fromStatusID.
func (r *ticketRepository) Assign(ctx context.Context, ticketID, technicianID, fromStatusID, toStatusID int64) error {
	const query = `
        UPDATE tickets SET technician_id=$1,
            status_id = CASE WHEN status_id=$2 THEN $3 ELSE status_id END,
            updated_at=NOW()
        WHERE ticket_id=$4`
	cmd, err := r.pool.Exec(ctx, query, technicianID, fromStatusID, toStatusID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int, error) {
	clauses, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, strings.Join(clauses, " AND "))
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := filterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, ticketJoins, strings.Join(clauses, " AND "), orderClause(filter.Sort), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func filterClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("t.requester_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("t.technician_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "t.technician_id IS NULL")
	}
	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("t.status_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("t.category_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.Keyword != nil && strings.TrimSpace(*filter.Keyword) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Keyword)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.title) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}
	return clauses, args
}

func orderClause(sort string) string {
	switch sort {
	case SortCreatedAsc:
		return "t.created_at ASC"
	case SortStatus:
		return "s.status_name ASC, t.created_at DESC"
	case SortCategory:
		return "c.category_name ASC NULLS LAST, t.created_at DESC"
	default:
		return "t.created_at DESC"
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Location,
			&ticket.CategoryID,
			&ticket.StatusID,
			&ticket.RequesterID,
			&ticket.TechnicianID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.StatusName,
			&ticket.CategoryName,
			&ticket.RequesterFirstName,
			&ticket.RequesterLastName,
			&ticket.TechnicianFirstName,
			&ticket.TechnicianLastName,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
