package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/service"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// ReportsHandler serves the manager reporting surface.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// ResolvedPerTechnician GET /reports/resolved-per-technician.
func (h *ReportsHandler) ResolvedPerTechnician(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	page, err := h.reports.ResolvedPerTechnician(c.Context(), principal, parsePositiveInt(c.Query("page"), 1))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianResolvedPage(page)})
}

// TicketsPerCategory GET /reports/tickets-per-category.
func (h *ReportsHandler) TicketsPerCategory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	page, err := h.reports.TicketsPerCategory(c.Context(), principal, parsePositiveInt(c.Query("page"), 1))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryCountPage(page)})
}

// ExportCSV GET /reports/export.csv. Accepts the same filter query as
// the manager dashboard and streams the matching tickets as CSV.
func (h *ReportsHandler) ExportCSV(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	export, err := h.reports.ExportCSV(c.Context(), principal, parseDashboardQuery(c))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Send(export.Content)
}
