package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// PageSize is the fixed dashboard and report page size.
const PageSize = 10

// TicketService coordinates ticket creation, dashboards and the status
// workflow.
type TicketService struct {
	tickets    repository.TicketRepository
	statuses   repository.StatusRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	ratings    repository.RatingRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	StatusRepo   repository.StatusRepository
	CategoryRepo repository.CategoryRepository
	CommentRepo  repository.CommentRepository
	RatingRepo   repository.RatingRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Location    string
	CategoryID  *int64
}

// DashboardQuery captures the optional dashboard filters. All fields are
// AND-combined; zero values mean "no filter". Role scoping is applied by
// the service, not the caller.
type DashboardQuery struct {
	Status      string
	Keyword     string
	CategoryID  *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Unassigned  bool
	Sort        string
	Page        int
}

// TicketDetail bundles a ticket with its comments and rating for the
// detail view.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Comments []domain.Comment
	Rating   *domain.Rating
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		statuses:   deps.StatusRepo,
		categories: deps.CategoryRepo,
		comments:   deps.CommentRepo,
		ratings:    deps.RatingRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListCategories returns the shared category reference data for any
// authenticated caller.
func (s *TicketService) ListCategories(ctx context.Context, actor *domain.User) ([]domain.Category, error) {
	if actor == nil {
		return nil, util.NewUnauthorized("authentication required")
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return categories, nil
}

// CreateTicket files a new ticket for the requester. Tickets always start
// Pending with no technician.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.RoleRequester); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	location := strings.TrimSpace(input.Location)
	if title == "" || description == "" || location == "" {
		return nil, util.NewValidationError("title, description, location required", nil)
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, util.NewValidationError("unknown category", map[string]any{"category_id": *input.CategoryID})
			}
			return nil, util.MapError(err)
		}
	}

	pending, err := s.statuses.GetByName(ctx, domain.StatusPending)
	if err != nil {
		return nil, util.MapError(err)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Location:    location,
		CategoryID:  input.CategoryID,
		StatusID:    pending.ID,
		RequesterID: actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}
	ticket.StatusName = pending.Name

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			Location:   ticket.Location,
			CategoryID: ticket.CategoryID,
		},
	})
	return ticket, nil
}

// GetTicketDetail fetches a ticket with comments and rating, enforcing
// the visibility predicate.
func (s *TicketService) GetTicketDetail(ctx context.Context, actor *domain.User, ticketID int64) (*TicketDetail, error) {
	if actor == nil {
		return nil, util.NewUnauthorized("authentication required")
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessTicket(actor, ticket) {
		return nil, util.NewForbidden("not authorized to view this ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	rating, err := s.ratings.GetByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, Comments: comments, Rating: rating}, nil
}

// ListRequesterTickets is the requester dashboard: always scoped to the
// caller's own tickets.
func (s *TicketService) ListRequesterTickets(ctx context.Context, actor *domain.User, query DashboardQuery) (util.Page[domain.Ticket], error) {
	if err := auth.Authorize(actor, domain.RoleRequester); err != nil {
		return util.Page[domain.Ticket]{}, err
	}
	query.Unassigned = false
	return s.listScoped(ctx, repository.TicketFilter{RequesterID: &actor.ID}, query)
}

// ListTechnicianTickets is the technician dashboard: always scoped to
// tickets assigned to the caller.
func (s *TicketService) ListTechnicianTickets(ctx context.Context, actor *domain.User, query DashboardQuery) (util.Page[domain.Ticket], error) {
	if err := auth.Authorize(actor, domain.RoleTechnician); err != nil {
		return util.Page[domain.Ticket]{}, err
	}
	query.Unassigned = false
	return s.listScoped(ctx, repository.TicketFilter{TechnicianID: &actor.ID}, query)
}

// ListManagerTickets is the unrestricted manager dashboard with the
// unassigned-only toggle.
func (s *TicketService) ListManagerTickets(ctx context.Context, actor *domain.User, query DashboardQuery) (util.Page[domain.Ticket], error) {
	if err := auth.Authorize(actor, domain.RoleManager); err != nil {
		return util.Page[domain.Ticket]{}, err
	}
	return s.listScoped(ctx, repository.TicketFilter{}, query)
}

// UpdateStatus advances a ticket along the lifecycle. Only the assigned
// technician may call it; every other caller is rejected before the
// transition is even examined.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID int64, statusName string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.RoleTechnician); err != nil {
		return nil, err
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.TechnicianID == nil || *ticket.TechnicianID != actor.ID {
		return nil, util.NewForbidden("only the assigned technician can update this ticket")
	}

	status, err := s.statuses.GetByName(ctx, statusName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewValidationError("invalid status", map[string]any{"status": statusName})
		}
		return nil, util.MapError(err)
	}

	if err := domain.CheckTransition(ticket.StatusName, status.Name); err != nil {
		if errors.Is(err, domain.ErrUnknownStatus) {
			return nil, util.NewValidationError("invalid status", map[string]any{"status": statusName})
		}
		return nil, util.NewWorkflowViolation("cannot skip steps or move backward", map[string]any{
			"current":   ticket.StatusName,
			"requested": status.Name,
		})
	}

	oldStatus := ticket.StatusName
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status.ID); err != nil {
		return nil, util.MapError(err)
	}
	ticket.StatusID = status.ID
	ticket.StatusName = status.Name

	if oldStatus != status.Name {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  actor.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: status.Name,
			},
		})
	}
	return ticket, nil
}

// buildTicketFilter merges the optional dashboard filters into an
// already-scoped base filter. Unknown status names drop the filter
// instead of erroring, same as malformed dates at the edge.
func buildTicketFilter(ctx context.Context, statuses repository.StatusRepository, base repository.TicketFilter, query DashboardQuery) (repository.TicketFilter, error) {
	if query.Status != "" {
		status, err := statuses.GetByName(ctx, query.Status)
		if err == nil {
			base.StatusID = &status.ID
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return base, util.MapError(err)
		}
	}
	if strings.TrimSpace(query.Keyword) != "" {
		keyword := query.Keyword
		base.Keyword = &keyword
	}
	base.CategoryID = query.CategoryID
	base.CreatedFrom = query.CreatedFrom
	base.CreatedTo = query.CreatedTo
	base.Unassigned = query.Unassigned
	base.Sort = query.Sort
	return base, nil
}

func (s *TicketService) listScoped(ctx context.Context, base repository.TicketFilter, query DashboardQuery) (util.Page[domain.Ticket], error) {
	var empty util.Page[domain.Ticket]

	filter, err := buildTicketFilter(ctx, s.statuses, base, query)
	if err != nil {
		return empty, err
	}

	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return empty, util.MapError(err)
	}

	pages := util.TotalPages(total, PageSize)
	page := util.ClampPage(query.Page, pages)
	filter.Limit = PageSize
	filter.Offset = (page - 1) * PageSize

	items, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return empty, util.MapError(err)
	}
	return util.NewPage(items, page, PageSize, total), nil
}

func (s *TicketService) fetchTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
