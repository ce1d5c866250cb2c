package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vibe-gaming/passwordless/internal/domain"
)

type loginAttemptRepository struct {
	db *sqlx.DB
}

func newLoginAttemptRepository(db *sqlx.DB) *loginAttemptRepository {
	return &loginAttemptRepository{
		db: db,
	}
}

func (r *loginAttemptRepository) Create(ctx context.Context, attempt *domain.LoginAttempt) error {
	const op = "repository.loginAttempt.Create"

	const query = `
    INSERT INTO login_attempt (id, email, success, ip_address, user_agent, created_at)
    VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query, attempt.ID, attempt.Email, attempt.Success, attempt.IPAddress, attempt.UserAgent, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: insert login attempt failed: %w", op, err)
	}

	return nil
}

func (r *loginAttemptRepository) CountFailedSince(ctx context.Context, email string, since time.Time) (int, error) {
	const op = "repository.loginAttempt.CountFailedSince"

	const query = `SELECT COUNT(*) FROM login_attempt WHERE email = ? AND success = FALSE AND created_at >= ?`

	var count int
	if err := r.db.GetContext(ctx, &count, query, email, since); err != nil {
		return 0, fmt.Errorf("%s: count failed attempts failed: %w", op, err)
	}

	return count, nil
}

func (r *loginAttemptRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	const op = "repository.loginAttempt.DeleteOlderThan"

	const query = `DELETE FROM login_attempt WHERE created_at < ?`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: delete login attempts failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}
