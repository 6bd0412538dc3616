package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{NotFound("event", "abc"), ErrNotFound},
		{AlreadyExists("duplicate"), ErrAlreadyExists},
		{InvalidTransition("approved", "pending"), ErrInvalidTransition},
		{SelfApplication(), ErrSelfApplication},
		{ProfileMissing("abc"), ErrProfileMissing},
		{EventInactive("abc"), ErrEventInactive},
		{MalformedRecord("profile", "abc", errors.New("bad json")), ErrMalformedRecord},
		{Validation("name required"), ErrValidation},
		{Forbidden("not yours"), ErrForbidden},
		{Unavailable(errors.New("connection refused")), ErrUnavailable},
	}
	for _, tc := range cases {
		require.ErrorIs(t, tc.err, tc.kind)
		require.NotErrorIs(t, tc.err, errors.New("unrelated"))
	}
}

func TestMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("apply: %w", AlreadyExists("an application for this event already exists"))
	require.ErrorIs(t, wrapped, ErrAlreadyExists)
	require.NotErrorIs(t, wrapped, ErrNotFound)
}

func TestMessages(t *testing.T) {
	require.Equal(t, "event abc not found", NotFound("event", "abc").Error())
	require.Equal(t, "cannot transition application from approved to pending",
		InvalidTransition("approved", "pending").Error())
	require.Equal(t, "organizers cannot apply to their own events", SelfApplication().Error())
}
