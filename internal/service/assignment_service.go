package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// AssignmentService handles manager-driven technician assignment.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	statuses   repository.StatusRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	StatusRepo repository.StatusRepository
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		statuses:   deps.StatusRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign sets the technician on a ticket. A Pending ticket advances to
// In Progress as a side effect; a ticket already past Pending keeps its
// status. Reassigning the same technician is harmless.
//
// The assignee's role is deliberately not checked, only existence and
// the active flag; the caller picks from the technician list.
func (s *AssignmentService) Assign(ctx context.Context, actor *domain.User, ticketID, technicianID int64) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, domain.RoleManager); err != nil {
		return nil, err
	}

	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, util.MapError(err)
	}
	if !technician.IsActive {
		return nil, util.NewConflict("technician inactive", map[string]any{"technician_id": technicianID})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	oldStatus := ticket.StatusName

	pending, err := s.statuses.GetByName(ctx, domain.StatusPending)
	if err != nil {
		return nil, util.MapError(err)
	}
	inProgress, err := s.statuses.GetByName(ctx, domain.StatusInProgress)
	if err != nil {
		return nil, util.MapError(err)
	}

	if err := s.tickets.Assign(ctx, ticket.ID, technician.ID, pending.ID, inProgress.ID); err != nil {
		return nil, util.MapError(err)
	}

	ticket, err = s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publishAssigned(ctx, actor.ID, ticket, technician.ID, oldStatus)
	return ticket, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actorID int64, ticket *domain.Ticket, technicianID int64, oldStatus string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			TechnicianID: technicianID,
			OldStatus:    oldStatus,
			NewStatus:    ticket.StatusName,
		},
	})
}
