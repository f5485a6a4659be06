package repository

import (
	"context"
	"testing"

	"starboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        "ada@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "ada@example.com", byID.Email)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		ID: uuid.NewString(), Email: "dup@example.com", PasswordHash: "a",
	}))

	err := repo.Create(ctx, &models.User{
		ID: uuid.NewString(), Email: "dup@example.com", PasswordHash: "b",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_GetByEmail_Missing(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}
