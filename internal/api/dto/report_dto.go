package dto

import (
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// TechnicianResolvedRow is one row of the resolved-per-technician report.
type TechnicianResolvedRow struct {
	TechnicianID   int64  `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	ResolvedCount  int    `json:"resolved_count"`
}

// CategoryCountRow is one row of the tickets-per-category report.
type CategoryCountRow struct {
	CategoryID   *int64 `json:"category_id"`
	CategoryName string `json:"category_name"`
	TicketCount  int    `json:"ticket_count"`
}

// NewTechnicianResolvedPage maps the aggregate page.
func NewTechnicianResolvedPage(page util.Page[domain.TechnicianResolvedCount]) util.Page[TechnicianResolvedRow] {
	items := make([]TechnicianResolvedRow, 0, len(page.Items))
	for _, row := range page.Items {
		items = append(items, TechnicianResolvedRow{
			TechnicianID:   row.TechnicianID,
			TechnicianName: row.TechnicianName,
			ResolvedCount:  row.ResolvedCount,
		})
	}
	return util.Page[TechnicianResolvedRow]{
		Items:   items,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
		Pages:   page.Pages,
		HasPrev: page.HasPrev,
		HasNext: page.HasNext,
	}
}

// NewCategoryCountPage maps the aggregate page.
func NewCategoryCountPage(page util.Page[domain.CategoryTicketCount]) util.Page[CategoryCountRow] {
	items := make([]CategoryCountRow, 0, len(page.Items))
	for _, row := range page.Items {
		items = append(items, CategoryCountRow{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			TicketCount:  row.TicketCount,
		})
	}
	return util.Page[CategoryCountRow]{
		Items:   items,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
		Pages:   page.Pages,
		HasPrev: page.HasPrev,
		HasNext: page.HasNext,
	}
}
