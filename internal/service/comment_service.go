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

// CommentService appends annotations to tickets.
type CommentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
}

// NewCommentService creates the service.
func NewCommentService(tickets repository.TicketRepository, comments repository.CommentRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{tickets: tickets, comments: comments, dispatcher: dispatcher}
}

// Add appends an immutable comment. The author must pass the ticket
// visibility predicate: requester on their own ticket, the assigned
// technician, or any manager.
func (s *CommentService) Add(ctx context.Context, actor *domain.User, ticketID int64, text string) (*domain.Comment, error) {
	if actor == nil {
		return nil, util.NewUnauthorized("authentication required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.NewValidationError("comment text required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	if !auth.CanAccessTicket(actor, ticket) {
		return nil, util.NewForbidden("not authorized to comment on this ticket")
	}

	comment := &domain.Comment{
		TicketID:        ticket.ID,
		UserID:          actor.ID,
		Text:            text,
		AuthorFirstName: actor.FirstName,
		AuthorLastName:  actor.LastName,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, util.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommentAdded,
			TicketID:  ticket.ID,
			ActorID:   actor.ID,
			Timestamp: time.Now(),
			Payload: events.CommentAddedPayload{
				CommentID:   comment.ID,
				BodyPreview: preview(comment.Text, 120),
			},
		})
	}
	return comment, nil
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
