package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/service"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// TicketsHandler manages ticket creation, detail and per-ticket actions.
type TicketsHandler struct {
	tickets  *service.TicketService
	comments *service.CommentService
	ratings  *service.RatingService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, comments *service.CommentService, ratings *service.RatingService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, comments: comments, ratings: ratings}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), principal, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.tickets.GetTicketDetail(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetailResponse(detail.Ticket, detail.Comments, detail.Rating)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	comment, err := h.comments.Add(c.Context(), principal, ticketID, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// RateTicket POST /tickets/:id/rating.
func (h *TicketsHandler) RateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.RateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Value < 1 || req.Value > 5 {
		return util.NewValidationError("rating value must be between 1 and 5", map[string]any{"value": req.Value})
	}

	rating, err := h.ratings.Rate(c.Context(), principal, ticketID, req.Value, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRatingResponse(rating)})
}

// ListCategories GET /categories.
func (h *TicketsHandler) ListCategories(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	categories, err := h.tickets.ListCategories(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(categories))
	for _, cat := range categories {
		items = append(items, fiber.Map{
			"id":          cat.ID,
			"name":        cat.Name,
			"description": cat.Description,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}
