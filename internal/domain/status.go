package domain

import "errors"

// Canonical lifecycle status names, in workflow order.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// statusOrder is the fixed linear lifecycle. Closed is terminal.
var statusOrder = []string{StatusPending, StatusInProgress, StatusResolved, StatusClosed}

// Status mirrors a row of the ticket_status reference table.
type Status struct {
	ID          int64
	Name        string
	Description string
}

var (
	// ErrUnknownStatus marks a status name outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrIllegalTransition marks a backward or skipping transition.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// StatusIndex returns the position of a status name in the lifecycle.
func StatusIndex(name string) (int, bool) {
	for i, s := range statusOrder {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// LifecycleStatuses returns the ordered status names.
func LifecycleStatuses() []string {
	out := make([]string, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// CheckTransition validates a technician-requested status change.
// Staying put or advancing exactly one step is legal; anything else is
// rejected. Both names must belong to the lifecycle.
func CheckTransition(current, next string) error {
	cur, ok := StatusIndex(current)
	if !ok {
		return ErrUnknownStatus
	}
	nxt, ok := StatusIndex(next)
	if !ok {
		return ErrUnknownStatus
	}
	if nxt < cur || nxt > cur+1 {
		return ErrIllegalTransition
	}
	return nil
}
