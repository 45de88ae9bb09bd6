package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/service"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// DashboardHandler serves the three role dashboards and their workflow
// actions.
type DashboardHandler struct {
	tickets    *service.TicketService
	assignment *service.AssignmentService
	accounts   *service.AuthService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(tickets *service.TicketService, assignment *service.AssignmentService, accounts *service.AuthService) *DashboardHandler {
	return &DashboardHandler{tickets: tickets, assignment: assignment, accounts: accounts}
}

// RequesterDashboard GET /dashboard/requester.
func (h *DashboardHandler) RequesterDashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	page, err := h.tickets.ListRequesterTickets(c.Context(), principal, parseDashboardQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketPage(page)})
}

// TechnicianDashboard GET /dashboard/technician.
func (h *DashboardHandler) TechnicianDashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	page, err := h.tickets.ListTechnicianTickets(c.Context(), principal, parseDashboardQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketPage(page)})
}

// UpdateStatus PATCH /dashboard/technician/tickets/:id/status.
func (h *DashboardHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Status) == "" {
		return util.NewValidationError("status required", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), principal, ticketID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ManagerDashboard GET /dashboard/manager.
func (h *DashboardHandler) ManagerDashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	page, err := h.tickets.ListManagerTickets(c.Context(), principal, parseDashboardQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketPage(page)})
}

// AssignTicket POST /dashboard/manager/tickets/:id/assign.
func (h *DashboardHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID <= 0 {
		return util.NewValidationError("technician_id required", nil)
	}

	ticket, err := h.assignment.Assign(c.Context(), principal, ticketID, req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ListTechnicians GET /dashboard/manager/technicians.
func (h *DashboardHandler) ListTechnicians(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	technicians, err := h.accounts.ListTechnicians(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.NewUserResponse(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// parseDashboardQuery reads the optional dashboard filters. Malformed
// values are dropped rather than rejected so a stale bookmark still
// renders a dashboard.
func parseDashboardQuery(c *fiber.Ctx) service.DashboardQuery {
	query := service.DashboardQuery{
		Status:  strings.TrimSpace(c.Query("status")),
		Keyword: strings.TrimSpace(c.Query("q")),
		Sort:    strings.TrimSpace(c.Query("sort")),
		Page:    parsePositiveInt(c.Query("page"), 1),
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			query.CategoryID = &id
		}
	}
	query.CreatedFrom = parseDate(c.Query("created_from"))
	query.CreatedTo = parseDate(c.Query("created_to"))
	query.Unassigned = parseBoolQuery(c, "unassigned")
	return query
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}
	return nil
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolQuery(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
