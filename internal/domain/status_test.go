package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{"pending to in progress", StatusPending, StatusInProgress, nil},
		{"in progress to resolved", StatusInProgress, StatusResolved, nil},
		{"resolved to closed", StatusResolved, StatusClosed, nil},
		{"stay put", StatusInProgress, StatusInProgress, nil},
		{"skip one step", StatusPending, StatusResolved, ErrIllegalTransition},
		{"skip to closed", StatusPending, StatusClosed, ErrIllegalTransition},
		{"backward one step", StatusResolved, StatusInProgress, ErrIllegalTransition},
		{"reopen closed", StatusClosed, StatusResolved, ErrIllegalTransition},
		{"closed back to pending", StatusClosed, StatusPending, ErrIllegalTransition},
		{"unknown current", "Archived", StatusPending, ErrUnknownStatus},
		{"unknown next", StatusPending, "Archived", ErrUnknownStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.current, tc.next)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestStatusIndexFollowsLifecycleOrder(t *testing.T) {
	order := LifecycleStatuses()
	require.Equal(t, []string{StatusPending, StatusInProgress, StatusResolved, StatusClosed}, order)

	for i, name := range order {
		idx, ok := StatusIndex(name)
		require.True(t, ok, name)
		assert.Equal(t, i, idx)
	}

	_, ok := StatusIndex("pending")
	assert.False(t, ok, "status names are case sensitive")
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleRequester.Valid())
	assert.True(t, RoleTechnician.Valid())
	assert.True(t, RoleManager.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
