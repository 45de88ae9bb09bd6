package domain

import "time"

// Rating is the one-per-ticket satisfaction score. Re-rating overwrites
// the existing row in place.
type Rating struct {
	ID        int64
	TicketID  int64
	Value     int
	Feedback  *string
	CreatedAt time.Time
}
