package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/events"
	"github.com/opsdesk/helpdesk/pkg/util"
)

// TestTicketWorkflow walks one ticket through its whole life across all
// services sharing a single store.
func TestTicketWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	rita := env.requester(1, "Rita")
	tara := env.technician(2, "Tara")
	mona := env.manager(3, "Mona")

	// Requester files the ticket.
	ticket, err := env.tickets.CreateTicket(ctx, rita, TicketCreateInput{
		Title:       "Printer jam",
		Description: "Third floor printer keeps jamming",
		Location:    "Floor 3",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, ticket.StatusName)

	// The technician cannot touch it before being assigned.
	_, err = env.tickets.UpdateStatus(ctx, tara, ticket.ID, domain.StatusInProgress)
	assert.True(t, util.IsCode(err, "FORBIDDEN"))

	// Rating before resolution is rejected.
	_, err = env.ratings.Rate(ctx, rita, ticket.ID, 5, nil)
	assert.True(t, util.IsCode(err, "FORBIDDEN"))

	// Manager assigns; the pending ticket moves to In Progress.
	assigned, err := env.assignment.Assign(ctx, mona, ticket.ID, tara.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, assigned.StatusName)

	// Both sides talk on the ticket.
	_, err = env.comments.Add(ctx, tara, ticket.ID, "Looking at it now")
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, rita, ticket.ID, "Thanks, it jammed again this morning")
	require.NoError(t, err)

	// Technician resolves.
	resolved, err := env.tickets.UpdateStatus(ctx, tara, ticket.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, resolved.StatusName)

	// Requester rates the resolved ticket, then changes their mind.
	_, err = env.ratings.Rate(ctx, rita, ticket.ID, 3, nil)
	require.NoError(t, err)
	feedback := "actually very fast"
	_, err = env.ratings.Rate(ctx, rita, ticket.ID, 5, &feedback)
	require.NoError(t, err)

	// Technician closes; the lifecycle is over.
	closed, err := env.tickets.UpdateStatus(ctx, tara, ticket.ID, domain.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, closed.StatusName)

	_, err = env.ratings.Rate(ctx, rita, ticket.ID, 1, nil)
	assert.True(t, util.IsCode(err, "FORBIDDEN"), "closed tickets keep their rating")

	_, err = env.tickets.UpdateStatus(ctx, tara, ticket.ID, domain.StatusInProgress)
	assert.True(t, util.IsCode(err, "WORKFLOW_VIOLATION"))

	// The detail view carries the full record.
	detail, err := env.tickets.GetTicketDetail(ctx, mona, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 2)
	require.NotNil(t, detail.Rating)
	assert.Equal(t, 5, detail.Rating.Value)

	// Every step left its event.
	assert.Len(t, env.dispatcher.byType(events.EventTicketCreated), 1)
	assert.Len(t, env.dispatcher.byType(events.EventTicketAssigned), 1)
	assert.Len(t, env.dispatcher.byType(events.EventTicketStatusChanged), 2)
	assert.Len(t, env.dispatcher.byType(events.EventCommentAdded), 2)
	assert.Len(t, env.dispatcher.byType(events.EventTicketRated), 2)

	// And the manager's report reflects the resolved-then-closed work.
	export, err := env.reports.ExportCSV(ctx, mona, DashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, export.RowCount)
	require.Len(t, env.store.reportLogs, 1)
}
