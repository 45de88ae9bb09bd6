package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventCommentAdded        EventType = "comment_added"
	EventTicketRated         EventType = "ticket_rated"
	EventReportGenerated     EventType = "report_generated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string `json:"title"`
	Location   string `json:"location"`
	CategoryID *int64 `json:"category_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID int64  `json:"technician_id"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   int64  `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Value   int  `json:"value"`
	Updated bool `json:"updated"`
}

// ReportGeneratedPayload payload.
type ReportGeneratedPayload struct {
	ReportType string `json:"report_type"`
	RowCount   int    `json:"row_count"`
}
