package domain

import "time"

// Comment is an append-only annotation on a ticket. There is no edit or
// delete operation.
type Comment struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Text      string
	CreatedAt time.Time

	// Joined for display.
	AuthorFirstName string
	AuthorLastName  string
}
