package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserCreatesPlaceholder(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	id := uuid.New()

	user, err := svc.EnsureUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Contains(t, user.Email, id.String())
}

func TestEnsureUserReturnsExisting(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)
	id := uuid.New()

	require.NoError(t, store.CreateUser(context.Background(), &User{
		ID:    id,
		Email: "alex@example.com",
		Name:  "Alex",
	}))

	user, err := svc.EnsureUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.Equal(t, "Alex", user.Name)
}

func TestEnsureUserRejectsNilID(t *testing.T) {
	svc := NewService(NewInMemoryStore())

	_, err := svc.EnsureUser(context.Background(), uuid.Nil)
	assert.Error(t, err)
}
