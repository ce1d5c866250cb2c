package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-gaming/passwordless/internal/domain"
)

var codeColumns = []string{"id", "email", "code", "purpose", "expires_at", "used", "used_at", "created_at"}

func TestVerificationCodeCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newVerificationCodeRepository(db)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	code := &domain.VerificationCode{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		Code:      "012345",
		Purpose:   domain.CodePurposeLogin,
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO verification_code`).
		WithArgs(code.ID, code.Email, code.Code, code.Purpose, code.ExpiresAt, false, code.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), code))
}

func TestVerificationCodeGetLatestByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newVerificationCodeRepository(db)

	id := uuid.New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .* FROM verification_code\s+WHERE email = \?\s+ORDER BY created_at DESC, id DESC\s+LIMIT 1`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(codeColumns).
			AddRow(id[:], "ada@example.com", "012345", "login", now.Add(10*time.Minute), false, nil, now))

	got, err := repo.GetLatestByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "012345", got.Code)
	assert.Equal(t, domain.CodePurposeLogin, got.Purpose)
	assert.False(t, got.Used)
	assert.Nil(t, got.UsedAt)
}

func TestVerificationCodeGetLatestByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newVerificationCodeRepository(db)

	mock.ExpectQuery(`FROM verification_code`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(codeColumns))

	_, err := repo.GetLatestByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerificationCodeMarkUsed(t *testing.T) {
	id := uuid.New()
	usedAt := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)

	t.Run("first caller wins", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := newVerificationCodeRepository(db)

		mock.ExpectExec(`UPDATE verification_code\s+SET used = TRUE, used_at = \?\s+WHERE id = uuid_to_bin\(\?\) AND used = FALSE`).
			WithArgs(usedAt, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkUsed(context.Background(), id, usedAt))
	})

	t.Run("already used", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := newVerificationCodeRepository(db)

		mock.ExpectExec(`UPDATE verification_code`).
			WithArgs(usedAt, id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkUsed(context.Background(), id, usedAt), domain.ErrNoRowsAffected)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := newVerificationCodeRepository(db)

		mock.ExpectExec(`UPDATE verification_code`).
			WithArgs(usedAt, id).
			WillReturnError(errors.New("db down"))

		err := repo.MarkUsed(context.Background(), id, usedAt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "repository.verificationCode.MarkUsed")
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestVerificationCodeHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newVerificationCodeRepository(db)

	since := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
	latest := time.Date(2026, 1, 1, 11, 59, 30, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM verification_code WHERE email = \? AND created_at >= \?`).
		WithArgs("ada@example.com", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT MAX\(created_at\) FROM verification_code`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(latest))
	mock.ExpectQuery(`SELECT MAX\(created_at\) FROM verification_code`).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	count, err := repo.CountCreatedSince(context.Background(), "ada@example.com", since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := repo.GetLatestCreatedAt(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, latest, got)

	_, err = repo.GetLatestCreatedAt(context.Background(), "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerificationCodeDeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newVerificationCodeRepository(db)

	before := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM verification_code WHERE expires_at < \?`).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), before)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}
