package dto

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CategoryID  *int64 `json:"category_id"`
}

// UpdateStatusRequest payload for the assigned technician.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignTicketRequest payload for managers.
type AssignTicketRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// RateTicketRequest payload.
type RateTicketRequest struct {
	Value    int     `json:"value"`
	Feedback *string `json:"feedback"`
}

// TicketSummary is the dashboard row view.
type TicketSummary struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Category   *string   `json:"category"`
	Requester  string    `json:"requester"`
	Technician *string   `json:"technician"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TicketDetailResponse is the full ticket view with comments and rating.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Comments    []CommentResponse `json:"comments"`
	Rating      *RatingResponse   `json:"rating"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingResponse is the ticket's satisfaction score.
type RatingResponse struct {
	Value     int       `json:"value"`
	Feedback  *string   `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketSummary maps a ticket onto the dashboard row view.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	summary := TicketSummary{
		ID:        t.ID,
		Title:     t.Title,
		Status:    t.StatusName,
		Category:  t.CategoryName,
		Requester: t.RequesterName(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if name := t.TechnicianName(); name != "" {
		summary.Technician = &name
	}
	return summary
}

// NewTicketPage maps a page of tickets onto dashboard rows.
func NewTicketPage(page util.Page[domain.Ticket]) util.Page[TicketSummary] {
	items := make([]TicketSummary, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewTicketSummary(&page.Items[i]))
	}
	return util.Page[TicketSummary]{
		Items:   items,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
		Pages:   page.Pages,
		HasPrev: page.HasPrev,
		HasNext: page.HasNext,
	}
}

// NewTicketDetailResponse maps the detail bundle.
func NewTicketDetailResponse(ticket *domain.Ticket, comments []domain.Comment, rating *domain.Rating) TicketDetailResponse {
	resp := TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		Location:      ticket.Location,
		Comments:      make([]CommentResponse, 0, len(comments)),
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&comments[i]))
	}
	if rating != nil {
		r := NewRatingResponse(rating)
		resp.Rating = &r
	}
	return resp
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Author:    c.AuthorFirstName + " " + c.AuthorLastName,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

// NewRatingResponse maps a rating.
func NewRatingResponse(r *domain.Rating) RatingResponse {
	return RatingResponse{
		Value:     r.Value,
		Feedback:  r.Feedback,
		CreatedAt: r.CreatedAt,
	}
}
