package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/internal/repository"
)

// fakeStore is a shared in-memory backend for the repository fakes so a
// scenario can span several services over the same data.
type fakeStore struct {
	users      map[int64]*domain.User
	categories map[int64]*domain.Category
	tickets    map[int64]*domain.Ticket
	comments   []domain.Comment
	ratings    map[int64]*domain.Rating
	reportLogs []domain.ReportLog

	nextUserID    int64
	nextTicketID  int64
	nextCommentID int64
	nextRatingID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[int64]*domain.User{},
		categories: map[int64]*domain.Category{},
		tickets:    map[int64]*domain.Ticket{},
		ratings:    map[int64]*domain.Rating{},
	}
}

var fakeStatuses = []domain.Status{
	{ID: 1, Name: domain.StatusPending},
	{ID: 2, Name: domain.StatusInProgress},
	{ID: 3, Name: domain.StatusResolved},
	{ID: 4, Name: domain.StatusClosed},
}

func statusByID(id int64) *domain.Status {
	for i := range fakeStatuses {
		if fakeStatuses[i].ID == id {
			return &fakeStatuses[i]
		}
	}
	return nil
}

func (s *fakeStore) addUser(user domain.User) *domain.User {
	u := user
	s.users[u.ID] = &u
	return &u
}

func (s *fakeStore) addCategory(category domain.Category) *domain.Category {
	c := category
	s.categories[c.ID] = &c
	return &c
}

// hydrate fills the joined display fields the SQL repository returns
// with every ticket read.
func (s *fakeStore) hydrate(t *domain.Ticket) *domain.Ticket {
	out := *t
	if status := statusByID(out.StatusID); status != nil {
		out.StatusName = status.Name
	}
	out.CategoryName = nil
	if out.CategoryID != nil {
		if cat, ok := s.categories[*out.CategoryID]; ok {
			name := cat.Name
			out.CategoryName = &name
		}
	}
	if requester, ok := s.users[out.RequesterID]; ok {
		out.RequesterFirstName = requester.FirstName
		out.RequesterLastName = requester.LastName
	}
	out.TechnicianFirstName = nil
	out.TechnicianLastName = nil
	if out.TechnicianID != nil {
		if tech, ok := s.users[*out.TechnicianID]; ok {
			first, last := tech.FirstName, tech.LastName
			out.TechnicianFirstName = &first
			out.TechnicianLastName = &last
		}
	}
	return &out
}

type fakeTicketRepo struct {
	store *fakeStore

	lastFilter *repository.TicketFilter
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.store.nextTicketID++
	ticket.ID = r.store.nextTicketID
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.store.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.store.hydrate(ticket), nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, ticketID, statusID int64) error {
	ticket, ok := r.store.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.StatusID = statusID
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) Assign(_ context.Context, ticketID, technicianID, fromStatusID, toStatusID int64) error {
	ticket, ok := r.store.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.TechnicianID = &technicianID
	if ticket.StatusID == fromStatusID {
		ticket.StatusID = toStatusID
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) CountWithFilter(_ context.Context, filter repository.TicketFilter) (int, error) {
	captured := filter
	r.lastFilter = &captured
	return len(r.matching(filter)), nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	captured := filter
	r.lastFilter = &captured

	matched := r.matching(filter)
	r.sortTickets(matched, filter.Sort)

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]domain.Ticket, 0, end-offset)
	for _, t := range matched[offset:end] {
		out = append(out, *r.store.hydrate(t))
	}
	return out, nil
}

func (r *fakeTicketRepo) matching(filter repository.TicketFilter) []*domain.Ticket {
	var matched []*domain.Ticket
	for _, t := range r.store.tickets {
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.TechnicianID != nil && (t.TechnicianID == nil || *t.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.Unassigned && t.TechnicianID != nil {
			continue
		}
		if filter.StatusID != nil && t.StatusID != *filter.StatusID {
			continue
		}
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Keyword != nil {
			kw := strings.ToLower(*filter.Keyword)
			if !strings.Contains(strings.ToLower(t.Title), kw) && !strings.Contains(strings.ToLower(t.Description), kw) {
				continue
			}
		}
		if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && t.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

func (r *fakeTicketRepo) sortTickets(tickets []*domain.Ticket, key string) {
	switch key {
	case repository.SortCreatedAsc:
		sort.SliceStable(tickets, func(i, j int) bool {
			return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
		})
	case repository.SortStatus:
		sort.SliceStable(tickets, func(i, j int) bool {
			a, b := statusByID(tickets[i].StatusID), statusByID(tickets[j].StatusID)
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		})
	case repository.SortCategory:
		sort.SliceStable(tickets, func(i, j int) bool {
			a, aOK := r.categoryName(tickets[i])
			b, bOK := r.categoryName(tickets[j])
			if aOK != bOK {
				return aOK
			}
			if a != b {
				return a < b
			}
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		})
	default:
		sort.SliceStable(tickets, func(i, j int) bool {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		})
	}
}

// categoryName mirrors the NULLS LAST ordering of the SQL repository:
// uncategorized tickets report ok=false and sort after named categories.
func (r *fakeTicketRepo) categoryName(t *domain.Ticket) (string, bool) {
	if t.CategoryID == nil {
		return "", false
	}
	cat, ok := r.store.categories[*t.CategoryID]
	if !ok {
		return "", false
	}
	return cat.Name, true
}

type fakeStatusRepo struct{}

func (fakeStatusRepo) GetByName(_ context.Context, name string) (*domain.Status, error) {
	for i := range fakeStatuses {
		if fakeStatuses[i].Name == name {
			return &fakeStatuses[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (fakeStatusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	if status := statusByID(id); status != nil {
		return status, nil
	}
	return nil, pgx.ErrNoRows
}

func (fakeStatusRepo) List(_ context.Context) ([]domain.Status, error) {
	return append([]domain.Status(nil), fakeStatuses...), nil
}

type fakeCategoryRepo struct {
	store *fakeStore
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.store.addCategory(*category)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	category, ok := r.store.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return category, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeCommentRepo struct {
	store *fakeStore
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.store.nextCommentID++
	comment.ID = r.store.nextCommentID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	r.store.comments = append(r.store.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.store.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeRatingRepo struct {
	store *fakeStore
}

func (r *fakeRatingRepo) Upsert(_ context.Context, rating *domain.Rating) error {
	if existing, ok := r.store.ratings[rating.TicketID]; ok {
		existing.Value = rating.Value
		existing.Feedback = rating.Feedback
		rating.ID = existing.ID
		rating.CreatedAt = existing.CreatedAt
		return nil
	}
	r.store.nextRatingID++
	rating.ID = r.store.nextRatingID
	rating.CreatedAt = time.Now()
	stored := *rating
	r.store.ratings[rating.TicketID] = &stored
	return nil
}

func (r *fakeRatingRepo) GetByTicket(_ context.Context, ticketID int64) (*domain.Rating, error) {
	rating, ok := r.store.ratings[ticketID]
	if !ok {
		return nil, nil
	}
	out := *rating
	return &out, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == 0 {
		r.store.nextUserID++
		user.ID = r.store.nextUserID + 1000
	}
	r.store.addUser(*user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.addUser(*user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListActiveByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.store.users {
		if user.Role == role && user.IsActive {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstName < out[j].FirstName })
	return out, nil
}

type fakePasswordResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
}

func newFakePasswordResetRepo() *fakePasswordResetRepo {
	return &fakePasswordResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakePasswordResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = int64(len(r.tokens) + 1)
	token.CreatedAt = time.Now()
	stored := *token
	r.tokens[token.Token] = &stored
	return nil
}

func (r *fakePasswordResetRepo) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	stored, ok := r.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *stored
	return &out, nil
}

func (r *fakePasswordResetRepo) MarkUsed(_ context.Context, id int64) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

// fakeReportRepo computes the aggregates straight off the store.
type fakeReportRepo struct {
	store    *fakeStore
	auditErr error
}

func (r *fakeReportRepo) ResolvedPerTechnician(_ context.Context, resolvedStatusID int64) ([]domain.TechnicianResolvedCount, error) {
	counts := map[int64]int{}
	for _, t := range r.store.tickets {
		if t.StatusID == resolvedStatusID && t.TechnicianID != nil {
			counts[*t.TechnicianID]++
		}
	}
	var out []domain.TechnicianResolvedCount
	for techID, count := range counts {
		name := ""
		if user, ok := r.store.users[techID]; ok {
			name = user.FullName()
		}
		out = append(out, domain.TechnicianResolvedCount{TechnicianID: techID, TechnicianName: name, ResolvedCount: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResolvedCount != out[j].ResolvedCount {
			return out[i].ResolvedCount > out[j].ResolvedCount
		}
		return out[i].TechnicianID < out[j].TechnicianID
	})
	return out, nil
}

func (r *fakeReportRepo) TicketsPerCategory(_ context.Context) ([]domain.CategoryTicketCount, error) {
	type bucket struct {
		id    *int64
		name  string
		count int
	}
	buckets := map[string]*bucket{}
	for _, t := range r.store.tickets {
		name := "Uncategorized"
		var id *int64
		if t.CategoryID != nil {
			if cat, ok := r.store.categories[*t.CategoryID]; ok {
				name = cat.Name
			}
			id = t.CategoryID
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{id: id, name: name}
			buckets[name] = b
		}
		b.count++
	}
	var out []domain.CategoryTicketCount
	for _, b := range buckets {
		out = append(out, domain.CategoryTicketCount{CategoryID: b.id, CategoryName: b.name, TicketCount: b.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TicketCount != out[j].TicketCount {
			return out[i].TicketCount > out[j].TicketCount
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func (r *fakeReportRepo) CreateReportLog(_ context.Context, log *domain.ReportLog) error {
	if r.auditErr != nil {
		return r.auditErr
	}
	log.ID = int64(len(r.store.reportLogs) + 1)
	log.GeneratedAt = time.Now()
	r.store.reportLogs = append(r.store.reportLogs, *log)
	return nil
}

// recordingDispatcher keeps every published event for assertions.
type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires every service over one shared fake store.
type testEnv struct {
	store      *fakeStore
	ticketRepo *fakeTicketRepo
	userRepo   *fakeUserRepo
	reportRepo *fakeReportRepo
	dispatcher *recordingDispatcher

	tickets    *TicketService
	assignment *AssignmentService
	comments   *CommentService
	ratings    *RatingService
	reports    *ReportService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	ticketRepo := &fakeTicketRepo{store: store}
	userRepo := &fakeUserRepo{store: store}
	commentRepo := &fakeCommentRepo{store: store}
	ratingRepo := &fakeRatingRepo{store: store}
	categoryRepo := &fakeCategoryRepo{store: store}
	reportRepo := &fakeReportRepo{store: store}
	statusRepo := fakeStatusRepo{}
	dispatcher := &recordingDispatcher{}

	env := &testEnv{
		store:      store,
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		reportRepo: reportRepo,
		dispatcher: dispatcher,
	}
	env.tickets = NewTicketService(TicketDependencies{
		TicketRepo:   ticketRepo,
		StatusRepo:   statusRepo,
		CategoryRepo: categoryRepo,
		CommentRepo:  commentRepo,
		RatingRepo:   ratingRepo,
		Dispatcher:   dispatcher,
	})
	env.assignment = NewAssignmentService(AssignmentDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		StatusRepo: statusRepo,
		Dispatcher: dispatcher,
	})
	env.comments = NewCommentService(ticketRepo, commentRepo, dispatcher)
	env.ratings = NewRatingService(ticketRepo, ratingRepo, dispatcher)
	env.reports = NewReportService(ReportDependencies{
		ReportRepo: reportRepo,
		TicketRepo: ticketRepo,
		StatusRepo: statusRepo,
		Dispatcher: dispatcher,
	})
	return env
}

func (e *testEnv) requester(id int64, first string) *domain.User {
	return e.store.addUser(domain.User{ID: id, Email: first + "@example.com", Role: domain.RoleRequester, FirstName: first, LastName: "Requester", IsActive: true})
}

func (e *testEnv) technician(id int64, first string) *domain.User {
	return e.store.addUser(domain.User{ID: id, Email: first + "@example.com", Role: domain.RoleTechnician, FirstName: first, LastName: "Technician", IsActive: true})
}

func (e *testEnv) manager(id int64, first string) *domain.User {
	return e.store.addUser(domain.User{ID: id, Email: first + "@example.com", Role: domain.RoleManager, FirstName: first, LastName: "Manager", IsActive: true})
}

// seedTicket inserts a ticket directly into the store, bypassing the
// workflow, for tests that need a specific starting state.
func (e *testEnv) seedTicket(t domain.Ticket) *domain.Ticket {
	e.store.nextTicketID++
	t.ID = e.store.nextTicketID
	if t.StatusID == 0 {
		t.StatusID = 1
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.UpdatedAt = t.CreatedAt
	stored := t
	e.store.tickets[t.ID] = &stored
	return &stored
}
