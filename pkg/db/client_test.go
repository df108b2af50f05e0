package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(email string) *models.User {
	return &models.User{Email: email, PasswordHash: "hash", Name: "Ada"}
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := Wrap(dbtest.Open(t))
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(newUser("committed@example.com")).Error
	}))

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(newUser("rolled@example.com")).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	require.NoError(t, client.DB().Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := Wrap(dbtest.Open(t))

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(newUser("panic@example.com")).Error; err != nil {
				return err
			}
			panic("kaboom")
		})
	})

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPing(t *testing.T) {
	client := Wrap(dbtest.Open(t))
	require.NoError(t, client.Ping(context.Background()))
}

func TestIsUniqueViolation(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Create(newUser("dup@example.com")).Error)
	err := conn.Create(newUser("dup@example.com")).Error
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "email"))
	assert.False(t, IsUniqueViolation(err, "quote_number"))

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_quotes_quote_number"}
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), "quote_number"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))

	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(errors.New("connection reset"), ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	conn := dbtest.Open(t)
	err := conn.Create(&models.Client{UserID: uuid.New(), Name: "Orphan", Email: "o@example.com"}).Error
	require.Error(t, err)

	assert.True(t, IsForeignKeyViolation(err))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(nil))
}
