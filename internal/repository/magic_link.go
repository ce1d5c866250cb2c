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

type magicLinkRepository struct {
	db *sqlx.DB
}

func newMagicLinkRepository(db *sqlx.DB) *magicLinkRepository {
	return &magicLinkRepository{
		db: db,
	}
}

func (r *magicLinkRepository) Create(ctx context.Context, link *domain.MagicLink) error {
	const op = "repository.magicLink.Create"

	const query = `
    INSERT INTO magic_link (id, email, token_hash, expires_at, used, created_at)
    VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?)
    `

	res, err := r.db.ExecContext(ctx, query, link.ID, link.Email, link.TokenHash, link.ExpiresAt, link.Used, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: insert magic link failed: %w", op, err)
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

func (r *magicLinkRepository) GetUnusedByTokenHash(ctx context.Context, tokenHash string, email string) (*domain.MagicLink, error) {
	const op = "repository.magicLink.GetUnusedByTokenHash"

	const query = `
    SELECT id, email, token_hash, expires_at, used, used_at, created_at
    FROM magic_link
    WHERE token_hash = ? AND email = ? AND used = FALSE
    `

	var link domain.MagicLink
	if err := r.db.GetContext(ctx, &link, query, tokenHash, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select magic link failed: %w", op, err)
	}

	return &link, nil
}

func (r *magicLinkRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	const op = "repository.magicLink.MarkUsed"

	const query = `
    UPDATE magic_link
    SET used = TRUE, used_at = ?
    WHERE id = uuid_to_bin(?) AND used = FALSE
    `

	res, err := r.db.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return fmt.Errorf("%s: update magic link failed: %w", op, err)
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

func (r *magicLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.magicLink.Delete"

	const query = `DELETE FROM magic_link WHERE id = uuid_to_bin(?)`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: delete magic link failed: %w", op, err)
	}

	return nil
}

func (r *magicLinkRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const op = "repository.magicLink.DeleteExpired"

	const query = `DELETE FROM magic_link WHERE expires_at < ?`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: delete expired magic links failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}

func (r *magicLinkRepository) CountCreatedSince(ctx context.Context, email string, since time.Time) (int, error) {
	const op = "repository.magicLink.CountCreatedSince"

	const query = `SELECT COUNT(*) FROM magic_link WHERE email = ? AND created_at >= ?`

	var count int
	if err := r.db.GetContext(ctx, &count, query, email, since); err != nil {
		return 0, fmt.Errorf("%s: count magic links failed: %w", op, err)
	}

	return count, nil
}

func (r *magicLinkRepository) GetLatestCreatedAt(ctx context.Context, email string) (time.Time, error) {
	const op = "repository.magicLink.GetLatestCreatedAt"

	const query = `SELECT MAX(created_at) FROM magic_link WHERE email = ?`

	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, query, email); err != nil {
		return time.Time{}, fmt.Errorf("%s: select latest magic link failed: %w", op, err)
	}

	if !latest.Valid {
		return time.Time{}, domain.ErrNotFound
	}

	return latest.Time, nil
}
