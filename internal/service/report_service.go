package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/persistence"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// Report type names recorded in the audit log.
const (
	ReportTypeResolvedPerTechnician = "resolved_per_technician"
	ReportTypeTicketsPerCategory    = "tickets_per_category"
	ReportTypeCSVExport             = "csv"
)

const (
	cacheKeyResolvedPerTechnician = "report:resolved_per_technician"
	cacheKeyTicketsPerCategory    = "report:tickets_per_category"
)

// CSVExport is a rendered export ready to stream to the caller.
type CSVExport struct {
	Filename string
	Content  []byte
	RowCount int
}

// ReportService serves the manager-only reporting surface: paginated
// aggregates and the filtered CSV export. Aggregates are cached in
// Redis for a short TTL; a missing or failing cache falls through to
// Postgres.
type ReportService struct {
	reports    repository.ReportRepository
	tickets    repository.TicketRepository
	statuses   repository.StatusRepository
	redis      *persistence.Redis
	cfg        config.ReportConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	TicketRepo repository.TicketRepository
	StatusRepo repository.StatusRepository
	Redis      *persistence.Redis
	Config     config.ReportConfig
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:    deps.ReportRepo,
		tickets:    deps.TicketRepo,
		statuses:   deps.StatusRepo,
		redis:      deps.Redis,
		cfg:        deps.Config,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ResolvedPerTechnician returns one page of the resolved-ticket counts,
// ordered by count descending.
func (s *ReportService) ResolvedPerTechnician(ctx context.Context, actor *domain.User, page int) (util.Page[domain.TechnicianResolvedCount], error) {
	var empty util.Page[domain.TechnicianResolvedCount]
	if err := auth.Authorize(actor, domain.RoleManager); err != nil {
		return empty, err
	}

	var rows []domain.TechnicianResolvedCount
	if s.cacheGet(ctx, cacheKeyResolvedPerTechnician, &rows) {
		return util.PaginateSlice(rows, page, PageSize), nil
	}

	resolved, err := s.statuses.GetByName(ctx, domain.StatusResolved)
	if err != nil {
		return empty, util.MapError(err)
	}
	rows, err = s.reports.ResolvedPerTechnician(ctx, resolved.ID)
	if err != nil {
		return empty, util.MapError(err)
	}
	s.cacheSet(ctx, cacheKeyResolvedPerTechnician, rows)
	return util.PaginateSlice(rows, page, PageSize), nil
}

// TicketsPerCategory returns one page of the per-category ticket counts.
func (s *ReportService) TicketsPerCategory(ctx context.Context, actor *domain.User, page int) (util.Page[domain.CategoryTicketCount], error) {
	var empty util.Page[domain.CategoryTicketCount]
	if err := auth.Authorize(actor, domain.RoleManager); err != nil {
		return empty, err
	}

	var rows []domain.CategoryTicketCount
	if s.cacheGet(ctx, cacheKeyTicketsPerCategory, &rows) {
		return util.PaginateSlice(rows, page, PageSize), nil
	}

	rows, err := s.reports.TicketsPerCategory(ctx)
	if err != nil {
		return empty, util.MapError(err)
	}
	s.cacheSet(ctx, cacheKeyTicketsPerCategory, rows)
	return util.PaginateSlice(rows, page, PageSize), nil
}

// ExportCSV renders every ticket matching the manager's current filters
// as a CSV document. The audit row is written before the export is
// produced, so the log records the attempt even if rendering fails.
func (s *ReportService) ExportCSV(ctx context.Context, actor *domain.User, query DashboardQuery) (*CSVExport, error) {
	if err := auth.Authorize(actor, domain.RoleManager); err != nil {
		return nil, err
	}

	if err := s.reports.CreateReportLog(ctx, &domain.ReportLog{
		ManagerID:  actor.ID,
		ReportType: ReportTypeCSVExport,
	}); err != nil {
		// Audit writes must not block the export itself.
		s.logger.Warn("report log write failed",
			zap.Int64("manager_id", actor.ID),
			zap.Error(err))
	}

	filter, err := buildTicketFilter(ctx, s.statuses, repository.TicketFilter{}, query)
	if err != nil {
		return nil, err
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	filter.Limit = total
	filter.Offset = 0

	var tickets []domain.Ticket
	if total > 0 {
		tickets, err = s.tickets.ListWithFilter(ctx, filter)
		if err != nil {
			return nil, util.MapError(err)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ID", "Title", "Status", "Category", "Requester", "Technician", "Created"})
	for i := range tickets {
		t := &tickets[i]
		category := ""
		if t.CategoryName != nil {
			category = *t.CategoryName
		}
		technician := ""
		if t.TechnicianFirstName != nil {
			technician = *t.TechnicianFirstName
		}
		_ = w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.StatusName,
			category,
			t.RequesterFirstName,
			technician,
			t.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, util.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReportGenerated,
			ActorID:   actor.ID,
			Timestamp: time.Now(),
			Payload: events.ReportGeneratedPayload{
				ReportType: ReportTypeCSVExport,
				RowCount:   len(tickets),
			},
		})
	}
	return &CSVExport{Filename: "tickets.csv", Content: buf.Bytes(), RowCount: len(tickets)}, nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.redis == nil || s.redis.Client == nil {
		return false
	}
	raw, err := s.redis.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("dropping corrupt report cache entry", zap.String("key", key), zap.Error(err))
		_ = s.redis.Client.Del(ctx, key).Err()
		return false
	}
	return true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Client.Set(ctx, key, raw, s.cfg.CacheTTL()).Err(); err != nil {
		s.logger.Warn("unable to cache report", zap.String("key", key), zap.Error(err))
	}
}
