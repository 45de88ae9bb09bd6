package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// RatingService records the one-per-ticket satisfaction rating.
type RatingService struct {
	tickets    repository.TicketRepository
	ratings    repository.RatingRepository
	dispatcher events.Dispatcher
}

// NewRatingService creates the service.
func NewRatingService(tickets repository.TicketRepository, ratings repository.RatingRepository, dispatcher events.Dispatcher) *RatingService {
	return &RatingService{tickets: tickets, ratings: ratings, dispatcher: dispatcher}
}

// Rate upserts the ticket's rating. Only the ticket's requester may rate,
// and only while the ticket sits exactly in Resolved; a Closed ticket can
// no longer be rated. Rating again overwrites the previous value.
// The value range is a caller contract and is not validated here.
func (s *RatingService) Rate(ctx context.Context, actor *domain.User, ticketID int64, value int, feedback *string) (*domain.Rating, error) {
	if actor == nil {
		return nil, util.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	if ticket.RequesterID != actor.ID {
		return nil, util.NewForbidden("only the requester can rate the ticket")
	}
	if ticket.StatusName != domain.StatusResolved {
		return nil, util.NewForbidden("only resolved tickets can be rated")
	}

	existing, err := s.ratings.GetByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, util.MapError(err)
	}

	rating := &domain.Rating{
		TicketID: ticket.ID,
		Value:    value,
		Feedback: feedback,
	}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, util.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketRated,
			TicketID:  ticket.ID,
			ActorID:   actor.ID,
			Timestamp: time.Now(),
			Payload: events.TicketRatedPayload{
				Value:   value,
				Updated: existing != nil,
			},
		})
	}
	return rating, nil
}
