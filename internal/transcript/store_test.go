package transcript

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendExchange(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sessionID := uuid.New()

	userIdx, assistantIdx, err := store.AppendExchange(ctx, sessionID, "I have a question", "R")
	require.NoError(t, err)
	assert.Equal(t, 0, userIdx)
	assert.Equal(t, 1, assistantIdx)

	count, err := store.CountTurns(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	turns, err := store.ListTurns(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "I have a question", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "R", turns[1].Content)
}

func TestTurnIndicesAreContiguous(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sessionID := uuid.New()

	for i := 0; i < 5; i++ {
		userIdx, assistantIdx, err := store.AppendExchange(ctx, sessionID,
			fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
		assert.Equal(t, 2*i, userIdx)
		assert.Equal(t, 2*i+1, assistantIdx)
	}

	turns, err := store.ListTurns(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 10)
	for i, turn := range turns {
		assert.Equal(t, i, turn.TurnIndex)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a := uuid.New()
	b := uuid.New()

	_, _, err := store.AppendExchange(ctx, a, "q", "r")
	require.NoError(t, err)

	count, err := store.CountTurns(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The second session starts its own sequence at 0.
	userIdx, assistantIdx, err := store.AppendExchange(ctx, b, "q", "r")
	require.NoError(t, err)
	assert.Equal(t, 0, userIdx)
	assert.Equal(t, 1, assistantIdx)
}

func TestConcurrentAppendsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	const sessionCount = 8
	const exchangesPerSession = 20

	ids := make([]uuid.UUID, sessionCount)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(sessionID uuid.UUID) {
			defer wg.Done()
			for i := 0; i < exchangesPerSession; i++ {
				_, _, err := store.AppendExchange(ctx, sessionID, "q", "r")
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		turns, err := store.ListTurns(ctx, id)
		require.NoError(t, err)
		require.Len(t, turns, 2*exchangesPerSession)
		for i, turn := range turns {
			assert.Equal(t, i, turn.TurnIndex)
		}
	}
}

func TestListTurnsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sessionID := uuid.New()

	_, _, err := store.AppendExchange(ctx, sessionID, "q", "r")
	require.NoError(t, err)

	turns, err := store.ListTurns(ctx, sessionID)
	require.NoError(t, err)
	turns[0].Content = "mutated"

	fresh, err := store.ListTurns(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "q", fresh[0].Content)
}
