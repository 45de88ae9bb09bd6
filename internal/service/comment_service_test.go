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

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	setup := func() (*testEnv, *domain.Ticket) {
		env := newTestEnv()
		env.requester(1, "Rita")
		tech := env.technician(2, "Tara")
		techID := tech.ID
		ticket := env.seedTicket(domain.Ticket{Title: "t", Description: "d", Location: "HQ", RequesterID: 1, TechnicianID: &techID, StatusID: 2})
		return env, ticket
	}

	t.Run("every participant can comment", func(t *testing.T) {
		env, ticket := setup()
		rita := env.store.users[1]
		tara := env.store.users[2]
		mona := env.manager(3, "Mona")

		for _, actor := range []*domain.User{rita, tara, mona} {
			comment, err := env.comments.Add(ctx, actor, ticket.ID, "note from "+actor.FirstName)
			require.NoError(t, err)
			assert.Equal(t, actor.ID, comment.UserID)
			assert.Equal(t, actor.FirstName, comment.AuthorFirstName)
		}

		listed, err := env.comments.comments.ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 3)

		added := env.dispatcher.byType(events.EventCommentAdded)
		assert.Len(t, added, 3)
	})

	t.Run("outsiders are forbidden", func(t *testing.T) {
		env, ticket := setup()
		stranger := env.requester(5, "Sam")
		_, err := env.comments.Add(ctx, stranger, ticket.ID, "drive-by")
		assert.True(t, util.IsCode(err, "FORBIDDEN"))

		otherTech := env.technician(6, "Omar")
		_, err = env.comments.Add(ctx, otherTech, ticket.ID, "drive-by")
		assert.True(t, util.IsCode(err, "FORBIDDEN"))
	})

	t.Run("blank text rejected", func(t *testing.T) {
		env, ticket := setup()
		rita := env.store.users[1]
		_, err := env.comments.Add(ctx, rita, ticket.ID, "   \n\t ")
		assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("missing ticket", func(t *testing.T) {
		env, _ := setup()
		rita := env.store.users[1]
		_, err := env.comments.Add(ctx, rita, 404, "hello")
		assert.True(t, util.IsCode(err, "NOT_FOUND"))
	})
}
