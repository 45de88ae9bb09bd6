package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/categories", cfg.Tickets.ListCategories)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	requester := protected.Group("", auth.RequireRole(domain.RoleRequester))
	requester.Post("/tickets", cfg.Tickets.CreateTicket)
	requester.Post("/tickets/:id/rating", cfg.Tickets.RateTicket)
	requester.Get("/dashboard/requester", cfg.Dashboard.RequesterDashboard)

	technician := protected.Group("", auth.RequireRole(domain.RoleTechnician))
	technician.Get("/dashboard/technician", cfg.Dashboard.TechnicianDashboard)
	technician.Patch("/dashboard/technician/tickets/:id/status", cfg.Dashboard.UpdateStatus)

	manager := protected.Group("", auth.RequireRole(domain.RoleManager))
	manager.Get("/dashboard/manager", cfg.Dashboard.ManagerDashboard)
	manager.Post("/dashboard/manager/tickets/:id/assign", cfg.Dashboard.AssignTicket)
	manager.Get("/dashboard/manager/technicians", cfg.Dashboard.ListTechnicians)
	manager.Get("/reports/resolved-per-technician", cfg.Reports.ResolvedPerTechnician)
	manager.Get("/reports/tickets-per-category", cfg.Reports.TicketsPerCategory)
	manager.Get("/reports/export.csv", cfg.Reports.ExportCSV)
}
