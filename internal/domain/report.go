package domain

import "time"

// ReportLog is an immutable audit row recorded whenever a manager
// generates an export. Never updated or deleted.
type ReportLog struct {
	ID          int64
	ManagerID   int64
	ReportType  string
	GeneratedAt time.Time
}

// TechnicianResolvedCount is an aggregate row: resolved tickets per
// technician.
type TechnicianResolvedCount struct {
	TechnicianID   int64
	TechnicianName string
	ResolvedCount  int
}

// CategoryTicketCount is an aggregate row: tickets per category, with a
// bucket for uncategorized tickets (nil CategoryID).
type CategoryTicketCount struct {
	CategoryID   *int64
	CategoryName string
	TicketCount  int
}
