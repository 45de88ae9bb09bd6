package domain

import "time"

// Ticket is the aggregate for helpdesk requests. Requester is set at
// creation and never changes; technician stays nil until a manager
// assigns one.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Location     string
	CategoryID   *int64
	StatusID     int64
	RequesterID  int64
	TechnicianID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Reference data joined eagerly by the repository; never lazily
	// resolved downstream.
	StatusName          string
	CategoryName        *string
	RequesterFirstName  string
	RequesterLastName   string
	TechnicianFirstName *string
	TechnicianLastName  *string
}

// RequesterName composes the requester display name.
func (t *Ticket) RequesterName() string {
	return t.RequesterFirstName + " " + t.RequesterLastName
}

// TechnicianName composes the technician display name, empty when
// unassigned.
func (t *Ticket) TechnicianName() string {
	if t.TechnicianFirstName == nil {
		return ""
	}
	name := *t.TechnicianFirstName
	if t.TechnicianLastName != nil {
		name += " " + *t.TechnicianLastName
	}
	return name
}
