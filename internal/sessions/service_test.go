package sessions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*SessionService, *Session) {
	t.Helper()

	svc := NewSessionService(NewInMemoryStore())
	session, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
		UserID: uuid.New(),
		CaseID: uuid.New(),
	})
	require.NoError(t, err)
	return svc, session
}

func TestCreateSession(t *testing.T) {
	svc, session := newTestService(t)

	assert.Equal(t, StatusActive, session.Status)
	assert.Nil(t, session.EndedAt)
	assert.False(t, session.CreatedAt.IsZero())

	loaded, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, StatusActive, loaded.Status)
}

func TestCreateSessionValidation(t *testing.T) {
	svc := NewSessionService(NewInMemoryStore())

	_, err := svc.CreateSession(context.Background(), &CreateSessionRequest{CaseID: uuid.New()})
	assert.Error(t, err)

	_, err = svc.CreateSession(context.Background(), &CreateSessionRequest{UserID: uuid.New()})
	assert.Error(t, err)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := NewSessionService(NewInMemoryStore())

	_, err := svc.GetSession(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestPauseIfActive(t *testing.T) {
	ctx := context.Background()

	t.Run("ActiveBecomesPaused", func(t *testing.T) {
		svc, session := newTestService(t)

		require.NoError(t, svc.PauseIfActive(ctx, session.ID))

		loaded, err := svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPaused, loaded.Status)
		assert.Nil(t, loaded.EndedAt)
	})

	t.Run("PausedStaysPaused", func(t *testing.T) {
		svc, session := newTestService(t)

		require.NoError(t, svc.PauseIfActive(ctx, session.ID))
		require.NoError(t, svc.PauseIfActive(ctx, session.ID))

		loaded, err := svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPaused, loaded.Status)
	})

	t.Run("EndedStaysEnded", func(t *testing.T) {
		svc, session := newTestService(t)

		_, err := svc.EndSession(ctx, session.ID)
		require.NoError(t, err)

		require.NoError(t, svc.PauseIfActive(ctx, session.ID))

		loaded, err := svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusEnded, loaded.Status)
		assert.NotNil(t, loaded.EndedAt)
	})
}

func TestTouchActiveResumesPausedSession(t *testing.T) {
	ctx := context.Background()
	svc, session := newTestService(t)

	require.NoError(t, svc.PauseIfActive(ctx, session.ID))
	require.NoError(t, svc.TouchActive(ctx, session.ID))

	loaded, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, loaded.Status)
	assert.Nil(t, loaded.EndedAt)
}

func TestTouchActiveRejectedAfterEnd(t *testing.T) {
	ctx := context.Background()
	svc, session := newTestService(t)

	_, err := svc.EndSession(ctx, session.ID)
	require.NoError(t, err)

	err = svc.TouchActive(ctx, session.ID)
	require.Error(t, err)

	var se *SessionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SessionErrorTypeInvalidTransition, se.Type)
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("FromActive", func(t *testing.T) {
		svc, session := newTestService(t)

		ended, err := svc.EndSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusEnded, ended.Status)
		require.NotNil(t, ended.EndedAt)
	})

	t.Run("FromPaused", func(t *testing.T) {
		svc, session := newTestService(t)

		require.NoError(t, svc.PauseIfActive(ctx, session.ID))

		ended, err := svc.EndSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusEnded, ended.Status)
		require.NotNil(t, ended.EndedAt)
	})

	t.Run("AlreadyEnded", func(t *testing.T) {
		svc, session := newTestService(t)

		first, err := svc.EndSession(ctx, session.ID)
		require.NoError(t, err)

		_, err = svc.EndSession(ctx, session.ID)
		require.Error(t, err)

		// The original ended timestamp is preserved.
		loaded, err := svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded.EndedAt)
		assert.Equal(t, first.EndedAt.Unix(), loaded.EndedAt.Unix())
	})
}

func TestStatusTransitionTable(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusEnded, true},
		{StatusActive, StatusActive, true},
		{StatusPaused, StatusActive, true},
		{StatusPaused, StatusEnded, true},
		{StatusPaused, StatusPaused, false},
		{StatusEnded, StatusActive, false},
		{StatusEnded, StatusPaused, false},
		{StatusEnded, StatusEnded, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
