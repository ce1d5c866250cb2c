package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-gaming/passwordless/internal/domain"
)

func TestIdentityCreate_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newIdentityRepository(db)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	identity := &domain.Identity{
		ID:            uuid.New(),
		Email:         "ada@example.com",
		Name:          "Ada",
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec(`INSERT INTO identity`).
		WithArgs(identity.ID, identity.Email, identity.Name, true, now, now).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	assert.ErrorIs(t, repo.Create(context.Background(), identity), domain.ErrDuplicateEntry)
}

func TestIdentityGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newIdentityRepository(db)

	id := uuid.New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "email", "name", "email_verified", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM identity WHERE email = \?`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(id[:], "ada@example.com", "Ada", true, now, now))
	mock.ExpectQuery(`FROM identity WHERE email = \?`).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows(columns))

	identity, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, identity.ID)
	assert.True(t, identity.EmailVerified)

	_, err = repo.GetByEmail(context.Background(), "new@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
