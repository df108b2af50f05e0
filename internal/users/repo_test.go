package users

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "  Ada@Example.COM ", PasswordHash: "hash", Name: " Ada "})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "Ada", created.Name)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFromModelOmitsPassword(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	user, err := repo.Create(context.Background(), CreateUserDTO{Email: "a@b.c", PasswordHash: "secret", Name: "A"})
	require.NoError(t, err)

	dto := FromModel(user)
	assert.Equal(t, user.ID, dto.ID)
	assert.Nil(t, FromModel(nil))
}
