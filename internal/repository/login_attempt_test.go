package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-gaming/passwordless/internal/domain"
)

func TestLoginAttemptCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newLoginAttemptRepository(db)

	attempt := &domain.LoginAttempt{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		Success:   false,
		IPAddress: sql.NullString{String: "10.0.0.1", Valid: true},
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO login_attempt`).
		WithArgs(attempt.ID, attempt.Email, false, "10.0.0.1", nil, attempt.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), attempt))
}

func TestLoginAttemptCountFailedSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newLoginAttemptRepository(db)

	since := time.Date(2026, 1, 1, 11, 45, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM login_attempt WHERE email = \? AND success = FALSE AND created_at >= \?`).
		WithArgs("ada@example.com", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountFailedSince(context.Background(), "ada@example.com", since)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestLoginAttemptDeleteOlderThan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newLoginAttemptRepository(db)

	before := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM login_attempt WHERE created_at < \?`).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.DeleteOlderThan(context.Background(), before)
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
}
