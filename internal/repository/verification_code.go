package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vibe-gaming/passwordless/internal/domain"
)

type verificationCodeRepository struct {
	db *sqlx.DB
}

func newVerificationCodeRepository(db *sqlx.DB) *verificationCodeRepository {
	return &verificationCodeRepository{
		db: db,
	}
}

func (r *verificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	const op = "repository.verificationCode.Create"

	const query = `
    INSERT INTO verification_code (id, email, code, purpose, expires_at, used, created_at)
    VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, ?)
    `

	res, err := r.db.ExecContext(ctx, query, code.ID, code.Email, code.Code, code.Purpose, code.ExpiresAt, code.Used, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: insert verification code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *verificationCodeRepository) GetLatestByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	const op = "repository.verificationCode.GetLatestByEmail"

	const query = `
    SELECT id, email, code, purpose, expires_at, used, used_at, created_at
    FROM verification_code
    WHERE email = ?
    ORDER BY created_at DESC, id DESC
    LIMIT 1
    `

	var code domain.VerificationCode
	if err := r.db.GetContext(ctx, &code, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verification code failed: %w", op, err)
	}

	return &code, nil
}

func (r *verificationCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	const op = "repository.verificationCode.MarkUsed"

	const query = `
    UPDATE verification_code
    SET used = TRUE, used_at = ?
    WHERE id = uuid_to_bin(?) AND used = FALSE
    `

	res, err := r.db.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return fmt.Errorf("%s: update verification code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *verificationCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.verificationCode.Delete"

	const query = `DELETE FROM verification_code WHERE id = uuid_to_bin(?)`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: delete verification code failed: %w", op, err)
	}

	return nil
}

func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const op = "repository.verificationCode.DeleteExpired"

	const query = `DELETE FROM verification_code WHERE expires_at < ?`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: delete expired verification codes failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}

func (r *verificationCodeRepository) CountCreatedSince(ctx context.Context, email string, since time.Time) (int, error) {
	const op = "repository.verificationCode.CountCreatedSince"

	const query = `SELECT COUNT(*) FROM verification_code WHERE email = ? AND created_at >= ?`

	var count int
	if err := r.db.GetContext(ctx, &count, query, email, since); err != nil {
		return 0, fmt.Errorf("%s: count verification codes failed: %w", op, err)
	}

	return count, nil
}

func (r *verificationCodeRepository) GetLatestCreatedAt(ctx context.Context, email string) (time.Time, error) {
	const op = "repository.verificationCode.GetLatestCreatedAt"

	const query = `SELECT MAX(created_at) FROM verification_code WHERE email = ?`

	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, query, email); err != nil {
		return time.Time{}, fmt.Errorf("%s: select latest verification code failed: %w", op, err)
	}

	if !latest.Valid {
		return time.Time{}, domain.ErrNotFound
	}

	return latest.Time, nil
}
