package auth

import (
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// Authorize is the single role gate used at the top of every service
// operation. It fails closed: a missing identity is Unauthorized, a
// present identity with the wrong role is Forbidden.
func Authorize(user *domain.User, allowed ...domain.Role) error {
	if user == nil {
		return util.NewUnauthorized("authentication required")
	}
	for _, role := range allowed {
		switch role {
		case domain.RoleRequester, domain.RoleTechnician, domain.RoleManager:
			if user.Role == role {
				return nil
			}
		}
	}
	return util.NewForbidden("insufficient role")
}

// CanAccessTicket is the ticket-level visibility predicate: the ticket's
// requester, its assigned technician, or any manager.
func CanAccessTicket(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if user.ID == ticket.RequesterID {
		return true
	}
	if ticket.TechnicianID != nil && user.ID == *ticket.TechnicianID {
		return true
	}
	return user.Role == domain.RoleManager
}
